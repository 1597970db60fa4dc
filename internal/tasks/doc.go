// Package tasks tracks new releases for followed artists and turns them into playlists, with real-time
// progress reporting.
//
// # Core Operations
//
// [CatalogEngine] implements two interfaces:
//
//  1. [SyncEngine.LoadArtist] : baseline an artist
//     - Fetches the artist page and upserts the artist
//     - Stores every listed release as unverified, in one transaction
//
//  2. [SyncEngine.SyncAll] : check every stored artist
//     - Diffs catalog release ids against stored ids (candidates)
//     - Stores candidates, then fetches each one's tracks
//     - Releases with tracks are verified, releases without are kept unverified and marked checked
//     - Previously checked releases are checked again and revived when the catalog has fixed them
//     - Failures end only the affected artist; the run fails only when every artist failed
//
//  3. [PlaylistBuilder.GeneratePlaylist] : publish confirmed tracks
//     - Selects tracks of verified releases created at or after the latest playlist
//     - Creates the catalog playlist, then records it locally
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Concurrency
//
// SyncAll fans out across artists with an errgroup bounded by [Options.Workers]. Each artist is handled
// by a single goroutine from diff to verification, and outcomes are stored by artist index so the
// report keeps artist-id order.
package tasks

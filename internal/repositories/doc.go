// Package repositories implements SQLite persistence for the catalog entities.
//
// Release and track ids come from the catalog and are insert-or-ignore keys: the first row written wins and
// later renames are not applied. Artists are the exception and are upserted so display names stay current.
//
// Key Implementations:
//   - [ArtistRepository] : followed artists and their release associations
//   - [ReleaseRepository] : releases with verification state and check timestamps
//   - [TrackRepository] : tracks, release membership, and playlist track selection
//   - [PlaylistRepository] : generated playlists and the low-water mark
//   - [Store] : aggregate over all four used by the task engines
//
// Multi-row writes run in a single transaction. The database is opened with one connection, so nothing
// inside a transaction may issue a query through the pool.
package repositories

// Package models defines the catalog entities tracked by qbx.
//
// The package contains two categories of types:
//
// 1. Catalog views: what the remote catalog returns for one request
//   - [ArtistPage] : an artist's display name and discography, flattened across release groups
//   - [ReleaseSummary] : one release as listed on an artist page
//
// 2. Persistent entities: rows in the local store
//   - [Artist] : a followed artist, unique by catalog id
//   - [Release] : a release with its verification state
//   - [Track] : a playable track of a release
//   - [Playlist] : a generated playlist and the time it was created
//
// [ReleaseKind] carries a two-way codec: camelCase names on the wire and PascalCase names in storage.
package models

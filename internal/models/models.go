package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Model is implemented by every persisted entity that can check its own fields before a write.
type Model interface {
	Validate() error
}

// Artist is a followed artist. The id is assigned by the catalog and never changes.
type Artist struct {
	ID   int64
	Name string
}

// Validate reports missing fields.
func (a Artist) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Name, validation.Required),
	)
}

// Release is one stored release.
//
// CreatedAt is local insertion time, not the catalog's publication date. CheckedAt is the
// time of the last track check that did not confirm the release and is nil for rows that
// were never checked.
type Release struct {
	ID        string
	Title     string
	Kind      ReleaseKind
	CreatedAt time.Time
	Verified  bool
	CheckedAt *time.Time
}

// Validate reports missing fields and unknown kinds.
func (r Release) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

// Pending reports whether the release was checked and found without tracks.
func (r Release) Pending() bool {
	return !r.Verified && r.CheckedAt != nil
}

// Track is a playable track. Ids are catalog-assigned.
type Track struct {
	ID    int64
	Title string
}

// Playlist is a playlist created on the catalog by qbx.
type Playlist struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// ReleaseSummary is a release as listed on an artist page.
type ReleaseSummary struct {
	ID    string
	Title string
	Kind  ReleaseKind
}

// ArtistPage is the catalog's view of one artist.
//
// Releases are flattened across the catalog's kind groups and keep the catalog's order.
type ArtistPage struct {
	ID       int64
	Name     string
	Releases []ReleaseSummary
}

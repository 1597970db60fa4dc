package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/qbx/internal/shared"
)

// ReleaseKind is the category the catalog groups a release under.
type ReleaseKind int

const (
	KindAlbum ReleaseKind = iota + 1
	KindCompilation
	KindDownload
	KindEpSingle
	KindLive
	KindOther
	KindAwardedReleases
)

var kindNames = map[ReleaseKind]struct{ wire, storage string }{
	KindAlbum:           {"album", "Album"},
	KindCompilation:     {"compilation", "Compilation"},
	KindDownload:        {"download", "Download"},
	KindEpSingle:        {"epSingle", "EpSingle"},
	KindLive:            {"live", "Live"},
	KindOther:           {"other", "Other"},
	KindAwardedReleases: {"awardedReleases", "AwardedReleases"},
}

// ReleaseKinds lists every kind in declaration order.
func ReleaseKinds() []ReleaseKind {
	return []ReleaseKind{
		KindAlbum, KindCompilation, KindDownload, KindEpSingle, KindLive, KindOther, KindAwardedReleases,
	}
}

// ParseWireKind decodes the catalog's camelCase name.
func ParseWireKind(s string) (ReleaseKind, error) {
	for k, n := range kindNames {
		if n.wire == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", shared.ErrUnknownReleaseKind, s)
}

// ParseStorageKind decodes the PascalCase name stored in release_type.
func ParseStorageKind(s string) (ReleaseKind, error) {
	for k, n := range kindNames {
		if n.storage == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", shared.ErrUnknownReleaseKind, s)
}

// Validate reports [shared.ErrUnknownReleaseKind] for values outside the enum.
func (k ReleaseKind) Validate() error {
	if _, ok := kindNames[k]; !ok {
		return fmt.Errorf("%w: %d", shared.ErrUnknownReleaseKind, int(k))
	}
	return nil
}

// Wire returns the catalog name, or "" for an unknown kind.
func (k ReleaseKind) Wire() string {
	return kindNames[k].wire
}

// String returns the storage name.
func (k ReleaseKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n.storage
	}
	return fmt.Sprintf("ReleaseKind(%d)", int(k))
}

// MarshalJSON encodes the wire name.
func (k ReleaseKind) MarshalJSON() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(k.Wire())
}

// UnmarshalJSON decodes the wire name.
func (k *ReleaseKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: release kind must be a string", shared.ErrUnknownReleaseKind)
	}
	parsed, err := ParseWireKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value implements [driver.Valuer] with the storage name.
func (k ReleaseKind) Value() (driver.Value, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k.String(), nil
}

// Scan implements [sql.Scanner] for the storage name.
func (k *ReleaseKind) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", shared.ErrUnknownReleaseKind, src)
	}
	parsed, err := ParseStorageKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

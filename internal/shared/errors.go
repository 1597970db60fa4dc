package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrDecode     = fmt.Errorf("failed to decode response")
	ErrTimeout    = fmt.Errorf("operation timed out")

	// Store errors
	ErrArtistNotFound     = fmt.Errorf("artist not found")
	ErrUnknownReleaseKind = fmt.Errorf("unknown release kind")
	ErrLocked             = fmt.Errorf("another qbx process holds the database lock")

	// Task errors
	ErrSyncFailed = fmt.Errorf("no artist could be checked")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// Package services defines the [Catalog] interface for the remote music catalog and implements it for Qobuz.
//
// # Catalog Interface
//
// The reconciliation engine and playlist builder only see [Catalog], so tests swap in fakes and
// httptest servers without touching the engine.
//
// # Qobuz Implementation
//
// [QobuzService] talks to the Qobuz JSON API:
//   - GET artist/page : artist name and releases grouped by kind
//   - GET album/get : first page (50) of a release's tracks, 404 is an empty release
//   - POST playlist/create then POST playlist/addTracks : form-encoded playlist writes
//
// Requests are paced by a [rate.Limiter] and bounded by the client timeout. GET requests that time out
// are retried up to the configured limit. Writes are never retried.
//
// # Authentication
//
// [HeaderTransport] reads the user token from an [oauth2.TokenSource] and sends it as X-User-Auth-Token
// together with X-App-Id and the User-Agent. No login flow is performed: the token is obtained elsewhere.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrTimeout] : client timeout after retries
//   - [shared.ErrDecode] : malformed JSON or an unknown release kind
//   - [shared.ErrArtistNotFound] : artist/page returned 404
package services

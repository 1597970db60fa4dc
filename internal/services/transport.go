package services

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// HeaderTransport is an [http.RoundTripper] that stamps catalog credentials onto every request.
//
// The user token comes from an [oauth2.TokenSource] so a refreshing source can replace the static one
// without touching the client. The catalog reads the token from X-User-Auth-Token, not Authorization.
type HeaderTransport struct {
	Source    oauth2.TokenSource
	AppID     string
	UserAgent string
	Base      http.RoundTripper
}

// NewHeaderTransport returns a transport using a static token.
func NewHeaderTransport(token, appID, userAgent string, base http.RoundTripper) *HeaderTransport {
	src := oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return &HeaderTransport{Source: src, AppID: appID, UserAgent: userAgent, Base: base}
}

// RoundTrip clones the request, sets the credential headers, and delegates to Base.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}

	r := req.Clone(req.Context())
	if t.UserAgent != "" {
		r.Header.Set("User-Agent", t.UserAgent)
	}
	if token.AccessToken != "" {
		r.Header.Set("X-User-Auth-Token", token.AccessToken)
	}
	if t.AppID != "" {
		r.Header.Set("X-App-Id", t.AppID)
	}

	return t.base().RoundTrip(r)
}

func (t *HeaderTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

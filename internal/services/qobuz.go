// Qobuz API implementation of [Catalog]
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultQobuzBaseURL = "https://www.qobuz.com/api.json/0.2"
	DefaultUserAgent    = "QobuzBot/0.1 (API-access)"

	artistPageEndpoint     = "/artist/page"
	albumGetEndpoint       = "/album/get"
	playlistCreateEndpoint = "/playlist/create"
	playlistAddEndpoint    = "/playlist/addTracks"

	// Only the first page of an album is read.
	releaseTrackLimit = 50
)

var errNotFound = errors.New("not found")

// QobuzArtistPage is the artist/page response.
type QobuzArtistPage struct {
	ID   int64 `json:"id"`
	Name struct {
		Display string `json:"display"`
	} `json:"name"`
	Releases []QobuzReleaseGroup `json:"releases"`
}

// QobuzReleaseGroup is one kind group on an artist page.
type QobuzReleaseGroup struct {
	Type  models.ReleaseKind `json:"type"`
	Items []QobuzRelease     `json:"items"`
}

// QobuzRelease is a release as listed on an artist page.
type QobuzRelease struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// QobuzAlbum is the album/get response, limited to the fields qbx reads.
type QobuzAlbum struct {
	Tracks struct {
		Items []QobuzTrack `json:"items"`
	} `json:"tracks"`
}

// QobuzTrack is a track within an album.
type QobuzTrack struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type qobuzError struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// QobuzOptions configures a [QobuzService].
type QobuzOptions struct {
	BaseURL    string
	AppID      string
	AuthToken  string
	UserAgent  string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, <= 0 disables pacing
	MaxRetries int     // extra attempts for GET requests that time out
	Transport  http.RoundTripper
}

// QobuzService implements the [Catalog] interface over the Qobuz JSON API.
type QobuzService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewQobuzService creates a Qobuz client. Every request carries the credential headers set by [HeaderTransport].
func NewQobuzService(opts QobuzOptions) *QobuzService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultQobuzBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &QobuzService{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: NewHeaderTransport(opts.AuthToken, opts.AppID, opts.UserAgent, opts.Transport),
		},
		limiter:    limiter,
		maxRetries: max(opts.MaxRetries, 0),
	}
}

// NewQobuzServiceFromConfig builds a client from the catalog section of the configuration.
func NewQobuzServiceFromConfig(cfg shared.CatalogConfig) *QobuzService {
	return NewQobuzService(QobuzOptions{
		BaseURL:    cfg.APIBase,
		AppID:      cfg.AppID,
		AuthToken:  cfg.AuthToken,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout(),
		RateLimit:  cfg.RateLimit,
		MaxRetries: cfg.MaxRetries,
	})
}

// Name returns the service name.
func (q *QobuzService) Name() string {
	return "Qobuz"
}

// ArtistPage fetches an artist and flattens the release groups in the order the catalog returns them.
//
// Calls GET artist/page?artist_id=<id>.
func (q *QobuzService) ArtistPage(ctx context.Context, artistID int64) (*models.ArtistPage, error) {
	query := url.Values{"artist_id": {strconv.FormatInt(artistID, 10)}}

	var page QobuzArtistPage
	if err := q.get(ctx, artistPageEndpoint, query, &page); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %d", shared.ErrArtistNotFound, artistID)
		}
		return nil, err
	}

	result := &models.ArtistPage{ID: page.ID, Name: page.Name.Display}
	for _, group := range page.Releases {
		for _, item := range group.Items {
			result.Releases = append(result.Releases, models.ReleaseSummary{
				ID:    item.ID,
				Title: item.Title,
				Kind:  group.Type,
			})
		}
	}
	return result, nil
}

// ReleaseTracks fetches up to 50 tracks of a release.
//
// The catalog lists some releases it cannot resolve itself, so a 404 is an empty release rather than an error.
func (q *QobuzService) ReleaseTracks(ctx context.Context, releaseID string) ([]models.Track, error) {
	query := url.Values{
		"album_id": {releaseID},
		"offset":   {"0"},
		"limit":    {strconv.Itoa(releaseTrackLimit)},
		"extra":    {"track_ids"},
	}

	var album QobuzAlbum
	if err := q.get(ctx, albumGetEndpoint, query, &album); err != nil {
		if errors.Is(err, errNotFound) {
			return []models.Track{}, nil
		}
		return nil, err
	}

	tracks := make([]models.Track, 0, len(album.Tracks.Items))
	for _, t := range album.Tracks.Items {
		tracks = append(tracks, models.Track{ID: t.ID, Title: t.Title})
	}
	return tracks, nil
}

// CreatePlaylist creates a private, non-collaborative playlist and adds the tracks to it.
//
// Calls POST playlist/create then POST playlist/addTracks. Writes are not retried.
func (q *QobuzService) CreatePlaylist(ctx context.Context, name string, trackIDs []int64) (int64, error) {
	if len(trackIDs) == 0 {
		return 0, fmt.Errorf("%w: playlist needs at least one track", shared.ErrInvalidArgument)
	}

	form := url.Values{
		"name":             {name},
		"description":      {""},
		"is_public":        {"false"},
		"is_collaborative": {"false"},
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := q.doRequest(ctx, http.MethodPost, playlistCreateEndpoint, nil, form, &created); err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}

	ids := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	form = url.Values{
		"no_duplicate": {"true"},
		"playlist_id":  {strconv.FormatInt(created.ID, 10)},
		"track_ids":    {strings.Join(ids, ",")},
	}
	if err := q.doRequest(ctx, http.MethodPost, playlistAddEndpoint, nil, form, nil); err != nil {
		return 0, fmt.Errorf("failed to add tracks to playlist %d: %w", created.ID, err)
	}

	return created.ID, nil
}

// get performs a GET and retries it while the failure is a client timeout.
func (q *QobuzService) get(ctx context.Context, endpoint string, query url.Values, result any) error {
	var err error
	for attempt := 0; attempt <= q.maxRetries; attempt++ {
		err = q.doRequest(ctx, http.MethodGet, endpoint, query, nil, result)
		if err == nil || !errors.Is(err, shared.ErrTimeout) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (q *QobuzService) doRequest(ctx context.Context, method, endpoint string, query, form url.Values, result any) error {
	if err := q.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := q.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s %s: %v", shared.ErrTimeout, method, endpoint, err)
		}
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, endpoint, errNotFound)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp qobuzError
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: %s %s (status %d): %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, endpoint, resp.StatusCode)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrDecode, endpoint, err)
	}

	return nil
}

// package formatter renders task results for the terminal (listings, sync summaries, playlist results, tables)
package formatter

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/qbx/internal/models"
	"github.com/desertthunder/qbx/internal/shared"
	"github.com/desertthunder/qbx/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// styles are bound to the output writer, so a non-terminal writer gets plain text.
type styles struct {
	name  lipgloss.Style
	title lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		name:  r.NewStyle().Bold(true),
		title: r.NewStyle().Foreground(lipgloss.Color("#00D9FF")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

// printer records the first write error so callers can write freely and check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// SortArtists orders artists by name ignoring case, then by id.
func SortArtists(artists []models.Artist) []models.Artist {
	sorted := slices.Clone(artists)
	slices.SortFunc(sorted, func(a, b models.Artist) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// WriteArtists prints one artist name per line, sorted case-insensitively. No artists prints nothing.
func WriteArtists(w io.Writer, artists []models.Artist) error {
	p := &printer{w: w}
	for _, a := range SortArtists(artists) {
		p.printf("%s\n", a.Name)
	}
	return p.err
}

// WriteLoad prints the result of loading an artist.
func WriteLoad(w io.Writer, result *tasks.LoadResult) error {
	s := newStyles(w)
	p := &printer{w: w}
	p.printf("Loading data for '%s'\n", s.name.Render(result.Artist.Name))
	p.printf("Loaded %d releases\n", result.Loaded)
	return p.err
}

// WriteSync prints a sync summary: confirmed releases per artist in fetch order, then failures.
func WriteSync(w io.Writer, report *tasks.SyncReport) error {
	s := newStyles(w)
	p := &printer{w: w}

	p.printf("Checking %d artists\n\n", len(report.Outcomes))

	for _, o := range report.Outcomes {
		if len(o.Confirmed) == 0 {
			continue
		}
		p.printf("Found %s for %s\n", pluralize(len(o.Confirmed), "new release", "new releases"), s.name.Render(o.Artist.Name))
		for _, c := range o.Confirmed {
			p.printf("  • %s\n", s.title.Render(c.Release.Title))
		}
	}

	for _, o := range report.Failed() {
		p.printf("%s %s: %v\n", s.fail.Render("Failed to check"), o.Artist.Name, o.Err)
	}

	if report.NewReleases() == 0 {
		p.printf("No new music found\n")
	}

	return p.err
}

// WritePlaylist prints the result of a playlist generation.
func WritePlaylist(w io.Writer, result *tasks.PlaylistResult) error {
	s := newStyles(w)
	p := &printer{w: w}

	if result.Skipped || result.Playlist == nil {
		p.printf("No new tracks. Skipping playlist creation\n")
		return p.err
	}

	p.printf("Created playlist: %s\n", s.name.Render(result.Playlist.Name))
	return p.err
}

// WriteArtistDetail prints an artist heading and a table of its releases.
func WriteArtistDetail(w io.Writer, artist models.Artist, releases []models.Release) error {
	s := newStyles(w)
	p := &printer{w: w}

	p.printf("%s %s\n", s.name.Render(artist.Name), s.muted.Render("("+strconv.FormatInt(artist.ID, 10)+")"))
	if len(releases) == 0 {
		p.printf("No releases stored\n")
		return p.err
	}

	rows := make([][]string, len(releases))
	for i, r := range releases {
		rows[i] = []string{r.ID, r.Title, r.Kind.String(), r.CreatedAt.Local().Format("2006-01-02 15:04"), ReleaseStatus(r)}
	}
	p.printf("%s\n", renderTable([]string{"ID", "Title", "Kind", "Added", "Status"}, rows))
	return p.err
}

// WritePlaylists prints stored playlists, newest first.
func WritePlaylists(w io.Writer, playlists []models.Playlist) error {
	p := &printer{w: w}
	if len(playlists) == 0 {
		p.printf("No playlists created yet\n")
		return p.err
	}

	rows := make([][]string, len(playlists))
	for i, pl := range playlists {
		rows[i] = []string{strconv.FormatInt(pl.ID, 10), pl.Name, shared.FormatTime(pl.CreatedAt)}
	}
	p.printf("%s\n", renderTable([]string{"ID", "Name", "Created"}, rows))
	return p.err
}

// ReleaseStatus names a release's verification state.
func ReleaseStatus(r models.Release) string {
	switch {
	case r.Verified:
		return "verified"
	case r.Pending():
		return "pending"
	default:
		return "baseline"
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

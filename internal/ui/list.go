package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/qbx/internal/formatter"
	"github.com/desertthunder/qbx/internal/models"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = releaseItem{}
)

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string { return fmt.Sprintf("id %d", i.artist.ID) }

// releaseItem wraps [models.Release] to implement [list.Item].
type releaseItem struct {
	release models.Release
}

func (i releaseItem) FilterValue() string { return i.release.Title }
func (i releaseItem) Title() string       { return i.release.Title }
func (i releaseItem) Description() string {
	return fmt.Sprintf("%s • %s • added %s",
		i.release.Kind, formatter.ReleaseStatus(i.release), i.release.CreatedAt.Local().Format("2006-01-02"))
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if y := i.movie.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", i.movie.Title, y)
	}
	return i.movie.Title
}

func (i movieItem) Description() string {
	parts := []string{fmt.Sprintf("%.1f", i.movie.VoteAverage)}
	if f := formatter.Flags(i.movie); f != "" {
		parts = append(parts, f)
	}
	return strings.Join(parts, " • ")
}

func newMovieList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}

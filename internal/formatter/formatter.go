// package formatter renders movie listings and details in various formats (plain text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

// MaxPages caps the page count shown for search and popular listings; the catalog serves no more.
const MaxPages = 500

// Format is an output format accepted by the --format flag.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat parses a --format value. The empty string is [FormatText].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// ListView is a page of movies with 1-indexed display numbering.
type ListView struct {
	Title      string
	Movies     []models.Movie
	Page       int
	TotalPages int
	Total      int64
}

// FromMoviePage builds a [ListView] from a search or popular page, capping the page count at [MaxPages].
func FromMoviePage(title string, p *models.MoviePage) ListView {
	return ListView{
		Title:      title,
		Movies:     p.Movies,
		Page:       p.Page,
		TotalPages: ClampPages(p.TotalPages),
		Total:      p.TotalResults,
	}
}

// FromFavoritesPage builds a [ListView] from a 0-indexed favorites page.
func FromFavoritesPage(p *models.FavoritesPage) ListView {
	return ListView{
		Title:      "Favorites",
		Movies:     p.Content,
		Page:       p.Number + 1,
		TotalPages: p.TotalPages,
		Total:      p.TotalElements,
	}
}

// ClampPages limits n to [MaxPages].
func ClampPages(n int) int {
	return min(n, MaxPages)
}

// DetailView is a single movie with optional credits.
type DetailView struct {
	Movie   models.Movie
	Credits *models.Credits
}

// Flags renders the user's relationship to a movie, e.g. "★ favorite, ⏱ watch later".
func Flags(m models.Movie) string {
	var parts []string
	if m.Favorite {
		parts = append(parts, "★ favorite")
	}
	if m.WatchLater {
		parts = append(parts, "⏱ watch later")
	}
	return strings.Join(parts, ", ")
}

// ListToCSV converts movies to CSV with columns: ID, Title, Year, Rating, Votes, Favorite, WatchLater
func ListToCSV(v ListView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "Votes", "Favorite", "WatchLater"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range v.Movies {
		record := []string{
			strconv.FormatInt(m.ID, 10),
			m.Title,
			m.Year(),
			strconv.FormatFloat(m.VoteAverage, 'f', 1, 64),
			strconv.Itoa(m.VoteCount),
			strconv.FormatBool(m.Favorite),
			strconv.FormatBool(m.WatchLater),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ListToMarkdown renders a listing as a Markdown table.
func ListToMarkdown(v ListView) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", v.Title))
	buf.WriteString(fmt.Sprintf("**Page**: %d of %d (%d results)\n\n", v.Page, v.TotalPages, v.Total))

	if len(v.Movies) == 0 {
		buf.WriteString("_No movies._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| ID | Title | Year | Rating | |\n")
	buf.WriteString("|---:|---|---|---:|---|\n")
	for _, m := range v.Movies {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %.1f | %s |\n",
			m.ID, escapeCell(m.Title), m.Year(), m.VoteAverage, Flags(m)))
	}

	return buf.Bytes(), nil
}

// ListToText renders a listing as numbered plain text lines.
func ListToText(v ListView) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (page %d of %d, %d results)\n\n", v.Title, v.Page, v.TotalPages, v.Total))

	if len(v.Movies) == 0 {
		buf.WriteString("No movies.\n")
		return buf.Bytes(), nil
	}

	for _, m := range v.Movies {
		line := fmt.Sprintf("%8d  %s", m.ID, m.Title)
		if y := m.Year(); y != "" {
			line += fmt.Sprintf(" (%s)", y)
		}
		line += fmt.Sprintf("  %.1f", m.VoteAverage)
		if f := Flags(m); f != "" {
			line += "  " + f
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// DetailToMarkdown renders one movie with its credits.
func DetailToMarkdown(v DetailView) ([]byte, error) {
	var buf bytes.Buffer
	m := v.Movie

	buf.WriteString(fmt.Sprintf("# %s", m.Title))
	if y := m.Year(); y != "" {
		buf.WriteString(fmt.Sprintf(" (%s)", y))
	}
	buf.WriteString("\n\n")

	buf.WriteString(fmt.Sprintf("**Rating**: %.1f (%d votes)\n", m.VoteAverage, m.VoteCount))
	if m.ReleaseDate != "" {
		buf.WriteString(fmt.Sprintf("**Released**: %s\n", m.ReleaseDate))
	}
	if f := Flags(m); f != "" {
		buf.WriteString(fmt.Sprintf("**Status**: %s\n", f))
	}
	buf.WriteString("\n")

	if m.Overview != "" {
		buf.WriteString(m.Overview + "\n\n")
	}

	if c := v.Credits; c != nil {
		if d := c.Directors(); len(d) > 0 {
			buf.WriteString(fmt.Sprintf("**Directed by**: %s\n\n", strings.Join(d, ", ")))
		}
		if len(c.Cast) > 0 {
			buf.WriteString("## Cast\n\n")
			for _, p := range c.Cast {
				buf.WriteString(fmt.Sprintf("- %s as %s\n", p.Name, p.Character))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// DetailToText renders one movie with its credits as plain text.
func DetailToText(v DetailView) ([]byte, error) {
	var buf bytes.Buffer
	m := v.Movie

	buf.WriteString(fmt.Sprintf("%s\n", m.Title))
	buf.WriteString(fmt.Sprintf("ID: %d\n", m.ID))
	if m.ReleaseDate != "" {
		buf.WriteString(fmt.Sprintf("Released: %s\n", m.ReleaseDate))
	}
	buf.WriteString(fmt.Sprintf("Rating: %.1f (%d votes)\n", m.VoteAverage, m.VoteCount))
	if f := Flags(m); f != "" {
		buf.WriteString(fmt.Sprintf("Status: %s\n", f))
	}
	if m.Overview != "" {
		buf.WriteString(fmt.Sprintf("\n%s\n", m.Overview))
	}

	if c := v.Credits; c != nil {
		if d := c.Directors(); len(d) > 0 {
			buf.WriteString(fmt.Sprintf("\nDirected by: %s\n", strings.Join(d, ", ")))
		}
		if len(c.Cast) > 0 {
			buf.WriteString("\nCast:\n")
			for _, p := range c.Cast {
				buf.WriteString(fmt.Sprintf("  %s as %s\n", p.Name, p.Character))
			}
		}
	}

	return buf.Bytes(), nil
}

// DetailToCSV writes the movie as a single CSV row with the listing columns.
func DetailToCSV(v DetailView) ([]byte, error) {
	return ListToCSV(ListView{Movies: []models.Movie{v.Movie}})
}

// ToJSON returns indented JSON.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteList renders v in format f to w.
func WriteList(w io.Writer, f Format, v ListView) error {
	var data []byte
	var err error

	switch f {
	case FormatMarkdown:
		data, err = ListToMarkdown(v)
	case FormatCSV:
		data, err = ListToCSV(v)
	case FormatJSON:
		data, err = ToJSON(v.Movies)
	default:
		data, err = ListToText(v)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// WriteDetail renders v in format f to w.
func WriteDetail(w io.Writer, f Format, v DetailView) error {
	var data []byte
	var err error

	switch f {
	case FormatMarkdown:
		data, err = DetailToMarkdown(v)
	case FormatCSV:
		data, err = DetailToCSV(v)
	case FormatJSON:
		data, err = ToJSON(struct {
			models.Movie
			Credits *models.Credits `json:"credits,omitempty"`
		}{v.Movie, v.Credits})
	default:
		data, err = DetailToText(v)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

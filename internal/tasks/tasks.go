package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
)

// ExportOpts contains configuration for bulk movie exports.
type ExportOpts struct {
	Format     formatter.Format // Per-movie file format
	OutputDir  string           // Base output directory (default: mvx_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Catalog requests per second (default: 5)
	Credits    bool             // Fetch cast and crew for every movie
}

// MovieExportResult is the outcome for one movie.
type MovieExportResult struct {
	MovieID int64  `json:"id"`
	Title   string `json:"title,omitempty"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
	Reason  string `json:"error,omitempty"`
}

// BulkExportResult summarizes an export and is written as the manifest.
type BulkExportResult struct {
	TotalMovies       int                 `json:"totalMovies"`
	SuccessfulExports int                 `json:"successfulExports"`
	FailedExports     int                 `json:"failedExports"`
	Format            formatter.Format    `json:"format"`
	OutputDirectory   string              `json:"outputDirectory"`
	ManifestPath      string              `json:"-"`
	Results           []MovieExportResult `json:"results"`
}

// movieExportJob carries a fetched movie from the producer to a worker.
type movieExportJob struct {
	view formatter.DetailView
}

// Exporter exports catalog data to files.
type Exporter struct {
	catalog services.CatalogService
	logger  *log.Logger
}

// NewExporter creates an [Exporter] backed by catalog.
func NewExporter(catalog services.CatalogService, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{catalog: catalog, logger: logger}
}

// FavoriteIDs collects the ids of every favorite, most recent first, fetching size items per page.
func (e *Exporter) FavoriteIDs(ctx context.Context, prog chan<- ProgressUpdate, size int) ([]int64, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: page size must be at least 1", shared.ErrInvalidArgument)
	}

	var ids []int64
	for page := 0; ; page++ {
		favorites, err := e.catalog.Favorites(ctx, page, size)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch favorites page %d: %w", page+1, err)
		}
		sendProgress(prog, favoritesPageUpdate(page+1, max(favorites.TotalPages, 1)))

		for _, m := range favorites.Content {
			ids = append(ids, m.ID)
		}
		if len(favorites.Content) == 0 || page+1 >= favorites.TotalPages || page+1 >= formatter.MaxPages {
			break
		}
	}

	e.logger.Debug("collected favorites", "count", len(ids))
	return ids, nil
}

// fetch loads the movie and, when requested, its credits. A credits failure is logged and the movie
// is exported without them.
func (e *Exporter) fetch(ctx context.Context, id int64, withCredits bool) (formatter.DetailView, error) {
	movie, err := e.catalog.Movie(ctx, id)
	if err != nil {
		return formatter.DetailView{}, err
	}

	view := formatter.DetailView{Movie: *movie}
	if !withCredits {
		return view, nil
	}

	credits, err := e.catalog.Credits(ctx, id)
	if err != nil {
		e.logger.Warn("exporting without credits", "movie", id, "error", err)
		return view, nil
	}
	view.Credits = credits
	return view, nil
}

// extension returns the file extension for f.
func extension(f formatter.Format) string {
	switch f {
	case formatter.FormatMarkdown:
		return "md"
	case formatter.FormatCSV:
		return "csv"
	case formatter.FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// title returns a display name for a result, falling back to the id.
func (r MovieExportResult) title() string {
	if r.Title != "" {
		return r.Title
	}
	return fmt.Sprintf("movie %d", r.MovieID)
}

func failed(id int64, m *models.Movie, err error) MovieExportResult {
	res := MovieExportResult{MovieID: id, Error: err, Reason: err.Error()}
	if m != nil {
		res.Title = m.Title
	}
	return res
}

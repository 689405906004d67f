package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the summary file written at the root of every export.
const ManifestName = "export_manifest.json"

// Export exports movies concurrently with rate limiting and progress tracking.
//
// Movies are fetched by a single producer paced by the limiter and written by a worker pool. Failed movies are
// recorded in the result. Results are ordered like ids. When ctx is cancelled the partial result is returned with
// the context's error and no manifest is written.
func (e *Exporter) Export(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts ExportOpts) (*BulkExportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: nothing to export", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("mvx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalMovies:     len(ids),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Results:         make([]MovieExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan movieExportJob, len(ids))
	results := make(chan MovieExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sendProgress(prog, fetchingMovieUpdate(i+1, len(ids), id))
			view, err := e.fetch(ctx, id, opts.Credits)
			if err != nil {
				results <- failed(id, nil, fmt.Errorf("failed to fetch movie: %w", err))
				continue
			}
			jobs <- movieExportJob{view: view}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Title, res.File))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.title(), res.Error))
		}
	}

	order := make(map[int64]int, len(ids))
	for i, id := range ids {
		if _, ok := order[id]; !ok {
			order[id] = i
		}
	}
	slices.SortStableFunc(result.Results, func(a, b MovieExportResult) int {
		return order[a.MovieID] - order[b.MovieID]
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	data, err := formatter.ToJSON(result)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("export finished", "dir", opts.OutputDir, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportWorker writes movies from the jobs channel until it is closed.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan movieExportJob,
	results chan<- MovieExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			results <- failed(job.view.Movie.ID, &job.view.Movie, ctx.Err())
			continue
		}
		results <- e.exportSingleMovie(job, opts)
	}
}

// exportSingleMovie writes one movie as {id}.{ext}.
func (e *Exporter) exportSingleMovie(j movieExportJob, opts ExportOpts) MovieExportResult {
	m := j.view.Movie
	path := filepath.Join(opts.OutputDir, fmt.Sprintf("%d.%s", m.ID, extension(opts.Format)))

	f, err := os.Create(path)
	if err != nil {
		return failed(m.ID, &m, fmt.Errorf("failed to create file: %w", err))
	}

	if err := formatter.WriteDetail(f, opts.Format, j.view); err != nil {
		f.Close()
		return failed(m.ID, &m, fmt.Errorf("%s export failed: %w", opts.Format, err))
	}
	if err := f.Close(); err != nil {
		return failed(m.ID, &m, fmt.Errorf("failed to close file: %w", err))
	}

	e.logger.Debug("exported movie", "movie", m.ID, "path", path)
	return MovieExportResult{MovieID: m.ID, Title: m.Title, File: path, Success: true}
}

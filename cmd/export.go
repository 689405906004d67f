package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MoviesExport writes each movie given as an argument to its own file.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one movie id", shared.ErrMissingArgument)
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseMovieID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if err := r.connect(); err != nil {
		return err
	}
	return r.export(ctx, cmd, ids)
}

// FavoritesExport writes every favorite to its own file.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireLogin(); err != nil {
		return err
	}

	exporter := tasks.NewExporter(r.catalog, r.logger)
	ids, err := exporter.FavoriteIDs(ctx, nil, r.config.UI.PageSize)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return r.writePlain("No favorites to export\n")
	}
	return r.export(ctx, cmd, ids)
}

// export runs the bulk export and prints progress and a summary.
func (r *Runner) export(ctx context.Context, cmd *cli.Command, ids []int64) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Catalog.RequestsPerSecond,
		Credits:    cmd.Bool("credits"),
	}

	r.logger.Info("starting export", "movies", len(ids), "format", format, "dir", opts.OutputDir)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Phase == tasks.ExportMovie {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := tasks.NewExporter(r.catalog, r.logger).Export(ctx, progressCh, ids, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\nExported %d/%d movies to %s\n", result.SuccessfulExports, result.TotalMovies, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("Failed to export %d movies:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %d: %s\n", res.MovieID, res.Reason)
			}
		}
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

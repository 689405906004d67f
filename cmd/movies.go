package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// movieWebURL is the public page for a catalog id; the seed and the upstream catalog share TMDB ids.
const movieWebURL = "https://www.themoviedb.org/movie/%d"

// MoviesSearch prints one page of search results.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if err := r.connect(); err != nil {
		return err
	}

	r.logger.Debug("searching", "query", query, "page", cmd.Int("page"))

	page, err := r.catalog.Search(ctx, query, cmd.Int("page"))
	if err != nil {
		return err
	}
	return r.writeList(cmd, formatter.FromMoviePage(fmt.Sprintf("Results for %q", query), page))
}

// MoviesPopular prints one page of popular movies.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	page, err := r.catalog.Popular(ctx, cmd.Int("page"))
	if err != nil {
		return err
	}
	return r.writeList(cmd, formatter.FromMoviePage("Popular", page))
}

// MoviesShow prints one movie, optionally with credits, and can open its public page.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	movie, err := r.catalog.Movie(ctx, id)
	if err != nil {
		return err
	}

	var credits *models.Credits
	if cmd.Bool("credits") {
		if credits, err = r.catalog.Credits(ctx, id); err != nil {
			return err
		}
	}

	if cmd.Bool("open") {
		url := fmt.Sprintf(movieWebURL, id)
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "url", url, "error", err)
		}
	}

	return r.writeDetail(cmd, formatter.DetailView{Movie: *movie, Credits: credits})
}

func movieIDArg(cmd *cli.Command) (int64, error) {
	return parseMovieID(cmd.StringArg("id"))
}

func parseMovieID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

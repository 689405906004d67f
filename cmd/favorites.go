package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints one page of favorites. --page is 1-indexed like the other listings.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	page := cmd.Int("page")
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1", shared.ErrInvalidArgument)
	}
	size := cmd.Int("size")
	if size == 0 {
		size = r.config.UI.PageSize
	}

	if err := r.requireLogin(); err != nil {
		return err
	}

	favorites, err := r.catalog.Favorites(ctx, page-1, size)
	if err != nil {
		return err
	}
	return r.writeList(cmd, formatter.FromFavoritesPage(favorites))
}

// FavoritesAdd adds a movie to the user's favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	if err := r.requireLogin(); err != nil {
		return err
	}

	if err := r.catalog.AddFavorite(ctx, id); err != nil {
		return err
	}
	r.logger.Debug("favorite added", "movie", id)
	return r.writePlain("✓ Added %d to favorites\n", id)
}

// FavoritesRemove removes a movie from the user's favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	if err := r.requireLogin(); err != nil {
		return err
	}

	if err := r.catalog.RemoveFavorite(ctx, id); err != nil {
		return err
	}
	r.logger.Debug("favorite removed", "movie", id)
	return r.writePlain("✓ Removed %d from favorites\n", id)
}

// WatchLaterAdd adds a movie to the user's watch-later list.
func (r *Runner) WatchLaterAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	if err := r.requireLogin(); err != nil {
		return err
	}

	if err := r.catalog.AddWatchLater(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Added %d to watch later\n", id)
}

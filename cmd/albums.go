package main

import (
	"context"
	"fmt"

	"github.com/photomirror/photomirror/internal/formatter"
	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// AlbumsList prints cached albums.
func (r *Runner) AlbumsList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	albums, err := store.ListAlbums()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(albums)
	}
	return r.writePlain("%s", formatter.AlbumsToText(albums))
}

// AlbumsCreate creates an album remotely and mirrors it into the cache.
// Without a remote connection the album is cached locally with a
// generated id.
func (r *Runner) AlbumsCreate(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: album title is required", shared.ErrInvalidInput)
	}

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	var album *models.Album
	if remote, _, err := r.ensureRemote(config); err == nil {
		album, err = remote.CreateAlbum(ctx, title)
		if err != nil {
			return fmt.Errorf("failed to create remote album: %w", err)
		}
	} else {
		r.logger.Warn("no remote connection, creating album locally", "error", err)
		album = &models.Album{ID: shared.GenerateID(), Title: title}
	}

	if err := store.UpsertAlbums([]models.Album{*album}); err != nil {
		return err
	}

	r.writePlainln("✓ Album created: %s (%s)", album.Title, album.ID)
	return nil
}

// AlbumsRename renames an album remotely and in the cache.
func (r *Runner) AlbumsRename(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	title := cmd.String("title")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if remote, _, err := r.ensureRemote(config); err == nil {
		if err := remote.RenameAlbum(ctx, id, title); err != nil {
			return fmt.Errorf("failed to rename remote album: %w", err)
		}
	} else {
		r.logger.Warn("no remote connection, renaming locally only", "error", err)
	}

	if err := store.RenameAlbum(id, title); err != nil {
		return err
	}

	r.writePlainln("✓ Album renamed: %s", title)
	return nil
}

// AlbumsDelete deletes an album remotely and from the cache. Cached
// media items are untouched; only the album and its membership rows go.
func (r *Runner) AlbumsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if remote, _, err := r.ensureRemote(config); err == nil {
		if err := remote.DeleteAlbum(ctx, id); err != nil {
			return fmt.Errorf("failed to delete remote album: %w", err)
		}
	} else {
		r.logger.Warn("no remote connection, deleting locally only", "error", err)
	}

	if err := store.DeleteAlbum(id); err != nil {
		return err
	}

	r.writePlainln("✓ Album deleted: %s", id)
	return nil
}

// AlbumsAddItem adds a cached media item to an album.
func (r *Runner) AlbumsAddItem(ctx context.Context, cmd *cli.Command) error {
	albumID := cmd.String("id")
	itemID := cmd.String("item")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if remote, _, err := r.ensureRemote(config); err == nil {
		if err := remote.AddToAlbum(ctx, albumID, []string{itemID}); err != nil {
			return fmt.Errorf("failed to add item remotely: %w", err)
		}
	} else {
		r.logger.Warn("no remote connection, adding locally only", "error", err)
	}

	if err := store.AddToAlbum(albumID, itemID); err != nil {
		return err
	}

	r.writePlainln("✓ Added %s to %s", itemID, albumID)
	return nil
}

// AlbumsItems lists the cached items of one album.
func (r *Runner) AlbumsItems(ctx context.Context, cmd *cli.Command) error {
	albumID := cmd.String("id")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	album, err := store.GetAlbum(albumID)
	if err != nil {
		return err
	}
	items, err := store.QueryItems(models.Filter{AlbumID: albumID})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"album": album, "items": items})
	}

	r.writePlainln("Album: %s", album.Title)
	return r.writePlain("%s", formatter.ItemsToText(items))
}

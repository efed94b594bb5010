package main

import (
	"context"
	"fmt"
	"time"

	"github.com/photomirror/photomirror/internal/formatter"
	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// parseDay parses a YYYY-MM-DD flag value. endOfDay pushes the time to
// 23:59:59 so --until is inclusive.
func parseDay(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", shared.ErrInvalidInput, value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

// List prints cached media items matching the filter flags.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	since, err := parseDay(cmd.String("since"), false)
	if err != nil {
		return err
	}
	until, err := parseDay(cmd.String("until"), true)
	if err != nil {
		return err
	}

	filter := models.Filter{
		FavoriteOnly: cmd.Bool("favorite"),
		MimeType:     cmd.String("mime"),
		CameraMake:   cmd.String("camera-make"),
		CameraModel:  cmd.String("camera-model"),
		Start:        since,
		End:          until,
		HasFaces:     cmd.Bool("faces"),
		AlbumID:      cmd.String("album"),
		Limit:        cmd.Int("limit"),
	}

	items, err := store.QueryItems(filter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items)
	}
	return r.writePlain("%s", formatter.ItemsToText(items))
}

// Search prints cached items whose filename or description contains the
// query text.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	if text == "" {
		return fmt.Errorf("%w: search text is required", shared.ErrInvalidInput)
	}

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	items, err := store.QueryItems(models.Filter{
		Text:  text,
		Limit: cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items)
	}
	return r.writePlain("%s", formatter.ItemsToText(items))
}

// Favorite sets or clears the local favorite mark on one item.
func (r *Runner) Favorite(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: media item id is required", shared.ErrInvalidInput)
	}

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	favorite := !cmd.Bool("unset")
	if err := store.SetFavorite(id, favorite); err != nil {
		return err
	}

	if favorite {
		r.writePlainln("✓ %s marked as favorite", id)
	} else {
		r.writePlainln("✓ %s unmarked", id)
	}
	return nil
}

// Stats prints cached entity counts and sync state.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	state, err := store.SyncState()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"stats": stats, "sync_state": state})
	}

	r.writePlainln("Media items: %d", stats.MediaItems)
	r.writePlainln("Albums:      %d", stats.Albums)
	if state.LastSynced.Unix() > 0 {
		r.writePlainln("Last synced: %s", state.LastSynced.Format(time.RFC3339))
	} else {
		r.writePlainln("Last synced: never")
	}
	if state.PageCursor != "" {
		r.writePlainln("Sync in progress, cursor saved")
	}
	return nil
}

// Clear wipes all cached data after confirmation.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("force") {
		return fmt.Errorf("%w: pass --force to delete all cached data", shared.ErrInvalidInput)
	}

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Clear(); err != nil {
		return err
	}

	r.logger.Info("cache cleared")
	r.writePlainln("✓ Cache cleared")
	return nil
}

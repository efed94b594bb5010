package main

import (
	"context"
	"fmt"
	"os"

	"github.com/photomirror/photomirror/internal/formatter"
	"github.com/photomirror/photomirror/internal/models"
	"github.com/urfave/cli/v3"
)

// ExportItems writes all cached media items to a JSON, CSV or Markdown file.
func (r *Runner) ExportItems(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	switch {
	case cmd.Bool("csv"):
		items, err := store.QueryItems(models.Filter{})
		if err != nil {
			return err
		}
		if err := formatter.WriteItemsCSV(items, path); err != nil {
			return err
		}
	case cmd.Bool("markdown"):
		items, err := store.QueryItems(models.Filter{})
		if err != nil {
			return err
		}
		data := formatter.ItemsToMarkdown("Media Items", items)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write markdown file: %w", err)
		}
	default:
		if err := store.ExportItems(path); err != nil {
			return err
		}
	}

	r.writePlainln("✓ Items exported to %s", path)
	return nil
}

// ExportAlbums writes all cached albums to a JSON or CSV file.
func (r *Runner) ExportAlbums(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if cmd.Bool("csv") {
		albums, err := store.ListAlbums()
		if err != nil {
			return err
		}
		data, err := formatter.AlbumsToCSV(albums)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write CSV file: %w", err)
		}
	} else if err := store.ExportAlbums(path); err != nil {
		return err
	}

	r.writePlainln("✓ Albums exported to %s", path)
	return nil
}

// ImportItems loads media items from a JSON export file.
func (r *Runner) ImportItems(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("input")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.ImportItems(path); err != nil {
		return err
	}

	r.writePlainln("✓ Items imported from %s", path)
	return nil
}

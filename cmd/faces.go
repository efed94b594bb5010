package main

import (
	"context"
	"fmt"

	"github.com/photomirror/photomirror/internal/shared"
	"github.com/urfave/cli/v3"
)

// FacesShow prints the face tags of one item.
func (r *Runner) FacesShow(ctx context.Context, cmd *cli.Command) error {
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

	faces, err := store.GetFaces(id)
	if err != nil {
		return err
	}
	if len(faces) == 0 {
		r.writePlainln("No face tags for %s", id)
		return nil
	}
	return r.writeJSON(faces)
}

// FacesImport loads face tags from a JSON export file.
func (r *Runner) FacesImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("input")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.ImportFaces(path); err != nil {
		return err
	}

	r.writePlainln("✓ Face tags imported from %s", path)
	return nil
}

// FacesExport writes all face tags to a JSON file.
func (r *Runner) FacesExport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	config := r.loadConfig(cmd)
	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.ExportFaces(path); err != nil {
		return err
	}

	r.writePlainln("✓ Face tags exported to %s", path)
	return nil
}

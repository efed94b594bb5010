package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
	tu "github.com/photomirror/photomirror/internal/testing"
)

// testRunner builds a runner against a temp database with an injected
// remote, returning it with its captured output buffer.
func testRunner(t *testing.T, remote *tu.MockRemote) (*Runner, *bytes.Buffer, *shared.Config) {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "test.db")
	config.Thumbnails.CacheDir = dir

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Remote: remote,
		Tokens: &tu.MockTokens{},
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	return runner, output, config
}

// runApp executes one CLI invocation against the runner's commands.
func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:     "photomirror",
		Commands: r.register(),
	}
	return app.Run(context.Background(), append([]string{"photomirror"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			remote := &tu.MockRemote{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Remote: remote,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.remote != remote {
				t.Error("expected remote to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})
}

func TestSyncCommand(t *testing.T) {
	remote := &tu.MockRemote{
		ListMediaItemsFn: func(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
			return &models.Page{Items: []models.MediaItem{tu.Item("a"), tu.Item("b")}}, nil
		},
	}
	runner, output, _ := testRunner(t, remote)

	if err := runApp(t, runner, "sync", "--thumbnails=false"); err != nil {
		t.Fatalf("sync error = %v", err)
	}
	if !strings.Contains(output.String(), "Sync complete: 2 items") {
		t.Errorf("output = %q", output.String())
	}
}

func TestListAndSearchCommands(t *testing.T) {
	remote := &tu.MockRemote{
		ListMediaItemsFn: func(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
			return &models.Page{Items: []models.MediaItem{
				{ID: "m1", Filename: "beach.jpg", MimeType: "image/jpeg", Description: "sunny day"},
				{ID: "m2", Filename: "city.png", MimeType: "image/png"},
			}}, nil
		},
	}
	runner, output, _ := testRunner(t, remote)
	if err := runApp(t, runner, "sync", "--thumbnails=false"); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	t.Run("list shows both items", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "list"); err != nil {
			t.Fatalf("list error = %v", err)
		}
		got := output.String()
		if !strings.Contains(got, "beach.jpg") || !strings.Contains(got, "city.png") {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("list filters by mime type", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "list", "--mime", "image/png"); err != nil {
			t.Fatalf("list error = %v", err)
		}
		got := output.String()
		if strings.Contains(got, "beach.jpg") || !strings.Contains(got, "city.png") {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("search matches descriptions", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "search", "sunny"); err != nil {
			t.Fatalf("search error = %v", err)
		}
		got := output.String()
		if !strings.Contains(got, "beach.jpg") || strings.Contains(got, "city.png") {
			t.Errorf("output = %q", got)
		}
	})
}

func TestFavoriteCommand(t *testing.T) {
	remote := &tu.MockRemote{
		ListMediaItemsFn: func(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
			return &models.Page{Items: []models.MediaItem{tu.Item("m1")}}, nil
		},
	}
	runner, output, _ := testRunner(t, remote)
	if err := runApp(t, runner, "sync", "--thumbnails=false"); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	if err := runApp(t, runner, "favorite", "m1"); err != nil {
		t.Fatalf("favorite error = %v", err)
	}

	output.Reset()
	if err := runApp(t, runner, "list", "--favorite"); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(output.String(), "m1") {
		t.Errorf("output = %q", output.String())
	}

	t.Run("unknown id fails", func(t *testing.T) {
		if err := runApp(t, runner, "favorite", "missing"); err == nil {
			t.Error("expected error for unknown id")
		}
	})
}

func TestAlbumsCommands(t *testing.T) {
	runner, output, _ := testRunner(t, &tu.MockRemote{})

	if err := runApp(t, runner, "albums", "create", "Trips"); err != nil {
		t.Fatalf("albums create error = %v", err)
	}
	if !strings.Contains(output.String(), "Album created: Trips") {
		t.Errorf("output = %q", output.String())
	}

	output.Reset()
	if err := runApp(t, runner, "albums", "list"); err != nil {
		t.Fatalf("albums list error = %v", err)
	}
	if !strings.Contains(output.String(), "Trips") {
		t.Errorf("output = %q", output.String())
	}

	t.Run("rename updates the cached title", func(t *testing.T) {
		output.Reset()
		if err := runApp(t, runner, "albums", "rename", "--id", "mock-album", "--title", "Voyages"); err != nil {
			t.Fatalf("albums rename error = %v", err)
		}
		output.Reset()
		if err := runApp(t, runner, "albums", "list"); err != nil {
			t.Fatalf("albums list error = %v", err)
		}
		if !strings.Contains(output.String(), "Voyages") {
			t.Errorf("output = %q", output.String())
		}
	})

	t.Run("delete removes the album", func(t *testing.T) {
		if err := runApp(t, runner, "albums", "delete", "--id", "mock-album"); err != nil {
			t.Fatalf("albums delete error = %v", err)
		}
		output.Reset()
		if err := runApp(t, runner, "albums", "list"); err != nil {
			t.Fatalf("albums list error = %v", err)
		}
		if !strings.Contains(output.String(), "Albums: 0") {
			t.Errorf("output = %q", output.String())
		}
	})
}

func TestStatsCommand(t *testing.T) {
	runner, output, _ := testRunner(t, &tu.MockRemote{})

	if err := runApp(t, runner, "stats"); err != nil {
		t.Fatalf("stats error = %v", err)
	}
	got := output.String()
	if !strings.Contains(got, "Media items: 0") || !strings.Contains(got, "never") {
		t.Errorf("output = %q", got)
	}
}

func TestClearCommand(t *testing.T) {
	remote := &tu.MockRemote{
		ListMediaItemsFn: func(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
			return &models.Page{Items: []models.MediaItem{tu.Item("m1")}}, nil
		},
	}
	runner, output, _ := testRunner(t, remote)
	if err := runApp(t, runner, "sync", "--thumbnails=false"); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	t.Run("requires force", func(t *testing.T) {
		if err := runApp(t, runner, "clear"); err == nil {
			t.Error("expected error without --force")
		}
	})

	if err := runApp(t, runner, "clear", "--force"); err != nil {
		t.Fatalf("clear error = %v", err)
	}

	output.Reset()
	if err := runApp(t, runner, "stats"); err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(output.String(), "Media items: 0") {
		t.Errorf("output = %q", output.String())
	}
}

func TestExportImportCommands(t *testing.T) {
	remote := &tu.MockRemote{
		ListMediaItemsFn: func(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
			return &models.Page{Items: []models.MediaItem{tu.Item("m1"), tu.Item("m2")}}, nil
		},
	}
	runner, _, config := testRunner(t, remote)
	if err := runApp(t, runner, "sync", "--thumbnails=false"); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	itemsFile := filepath.Join(filepath.Dir(config.Database.Path), "items.json")
	if err := runApp(t, runner, "export", "items", "-o", itemsFile); err != nil {
		t.Fatalf("export items error = %v", err)
	}
	tu.AssertFileExists(t, itemsFile)

	t.Run("export items as markdown", func(t *testing.T) {
		mdFile := filepath.Join(filepath.Dir(config.Database.Path), "items.md")
		if err := runApp(t, runner, "export", "items", "--markdown", "-o", mdFile); err != nil {
			t.Fatalf("export items --markdown error = %v", err)
		}
		data, err := os.ReadFile(mdFile)
		if err != nil {
			t.Fatalf("reading markdown export: %v", err)
		}
		got := string(data)
		if !strings.Contains(got, "# Media Items") || !strings.Contains(got, "m1.jpg") {
			t.Errorf("markdown export = %q", got)
		}
	})

	t.Run("export albums as csv", func(t *testing.T) {
		if err := runApp(t, runner, "albums", "create", "Trips"); err != nil {
			t.Fatalf("albums create error = %v", err)
		}
		csvFile := filepath.Join(filepath.Dir(config.Database.Path), "albums.csv")
		if err := runApp(t, runner, "export", "albums", "--csv", "-o", csvFile); err != nil {
			t.Fatalf("export albums --csv error = %v", err)
		}
		data, err := os.ReadFile(csvFile)
		if err != nil {
			t.Fatalf("reading csv export: %v", err)
		}
		got := string(data)
		if !strings.Contains(got, "ID,Title,CoverItemID") || !strings.Contains(got, "Trips") {
			t.Errorf("csv export = %q", got)
		}
	})

	t.Run("import restores into a fresh cache", func(t *testing.T) {
		if err := runApp(t, runner, "clear", "--force"); err != nil {
			t.Fatalf("clear error = %v", err)
		}
		if err := runApp(t, runner, "import", "items", "-i", itemsFile); err != nil {
			t.Fatalf("import items error = %v", err)
		}

		output := &bytes.Buffer{}
		runner.output = output
		if err := runApp(t, runner, "stats"); err != nil {
			t.Fatalf("stats error = %v", err)
		}
		if !strings.Contains(output.String(), "Media items: 2") {
			t.Errorf("output = %q", output.String())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	configPath := filepath.Join(dir, "config.toml")

	runner, _, _ := testRunner(t, &tu.MockRemote{})
	if err := runApp(t, runner, "setup", "-c", configPath); err != nil {
		t.Fatalf("setup error = %v", err)
	}
	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, filepath.Join(dir, "photomirror.db"))
}

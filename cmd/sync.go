package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/photomirror/photomirror/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs one full sync cycle under the retry policy and reports
// progress on stdout.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	remote, tokens, err := r.ensureRemote(config)
	if err != nil {
		return err
	}

	var fetcher *tasks.Prefetcher
	if cmd.Bool("thumbnails") {
		fetcher = tasks.NewPrefetcher(store, remote, config.Thumbnails.CacheDir, config.Thumbnails.Workers, r.logger)
	}

	events := tasks.NewBroadcaster()
	scheduler := tasks.NewScheduler(config, store, remote, tokens, fetcher, events, r.logger)

	ch, cancel := events.Subscribe(256)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.reportEvents(ch)
	}()

	err = scheduler.RunOnce(ctx)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	scheduler.Shutdown(shutdownCtx)
	cancel()
	<-done

	if err != nil {
		return err
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	r.writePlainln("✓ Sync complete: %d items, %d albums cached", stats.MediaItems, stats.Albums)
	return nil
}

// Watch runs the periodic scheduler until SIGINT or SIGTERM.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	remote, tokens, err := r.ensureRemote(config)
	if err != nil {
		return err
	}

	fetcher := tasks.NewPrefetcher(store, remote, config.Thumbnails.CacheDir, config.Thumbnails.Workers, r.logger)
	events := tasks.NewBroadcaster()
	scheduler := tasks.NewScheduler(config, store, remote, tokens, fetcher, events, r.logger)

	ch, cancel := events.Subscribe(256)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.reportEvents(ch)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.logger.Info("watching", "interval", config.Sync.Interval())
	scheduler.Start(sigCtx)

	<-sigCtx.Done()
	r.logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	err = scheduler.Shutdown(shutdownCtx)
	cancel()
	<-done
	return err
}

// reportEvents prints scheduler events until the channel closes.
func (r *Runner) reportEvents(ch <-chan tasks.Event) {
	for ev := range ch {
		switch ev.Kind {
		case tasks.EventSyncStarted:
			r.writePlainln("sync started")
		case tasks.EventItemSynced:
			r.writePlainln("  %d items committed", ev.Count)
		case tasks.EventSyncFinished:
			r.writePlainln("sync finished at %s", ev.LastSynced.Format(time.RFC3339))
		case tasks.EventRestartAttempt:
			r.writePlainln("retrying (attempt %d): %s", ev.Attempt, ev.Message)
		case tasks.EventAborted:
			r.writePlainln("aborted: %s", ev.Reason)
		case tasks.EventStatus:
			r.writePlainln("%s", ev.Message)
		}
	}
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/photomirror/photomirror/internal/cache"
	"github.com/photomirror/photomirror/internal/services"
	"github.com/photomirror/photomirror/internal/shared"
)

// State names the scheduler's externally visible phase.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateBackoff
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateBackoff:
		return "backoff"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Scheduler mirrors the remote library into the local cache store. Each
// cycle resumes from the persisted page cursor, so an interrupted sync
// never refetches committed pages. Failed cycles retry with exponential
// backoff until a consecutive-failure budget is exhausted, after which
// the scheduler aborts and stops issuing remote calls. Storage faults
// abort immediately: retrying cannot fix a broken local database.
type Scheduler struct {
	cfg     *shared.Config
	store   *cache.Store
	remote  services.RemoteClient
	tokens  services.TokenProvider
	fetcher *Prefetcher
	events  *Broadcaster
	logger  *log.Logger
	limiter *rate.Limiter

	// sleep is replaced in tests to skip real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	state    State
	failures int

	trigger chan struct{}
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewScheduler wires a scheduler. fetcher may be nil to skip thumbnail
// prefetching after successful cycles.
func NewScheduler(cfg *shared.Config, store *cache.Store, remote services.RemoteClient, tokens services.TokenProvider, fetcher *Prefetcher, events *Broadcaster, logger *log.Logger) *Scheduler {
	limit := rate.Inf
	if cfg.Remote.RateLimit > 0 {
		limit = rate.Limit(cfg.Remote.RateLimit)
	}
	return &Scheduler{
		cfg:     cfg,
		store:   store,
		remote:  remote,
		tokens:  tokens,
		fetcher: fetcher,
		events:  events,
		logger:  shared.WithLogger(logger, "component", "scheduler"),
		limiter: rate.NewLimiter(limit, 1),
		sleep:   sleepCtx,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State reports the current phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Trigger requests an immediate sync cycle. Triggers arriving while a
// cycle is running coalesce into exactly one follow-up cycle. After an
// abort the trigger is ignored.
func (s *Scheduler) Trigger() {
	if s.State() == StateAborted {
		return
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// backoffDelay returns the wait before retry n (1-based): base doubled
// per attempt, capped.
func (s *Scheduler) backoffDelay(attempt int) time.Duration {
	d := s.cfg.Sync.BackoffBase()
	upper := s.cfg.Sync.BackoffCap()
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= upper {
			return upper
		}
	}
	if d > upper {
		return upper
	}
	return d
}

// RunOnce executes sync cycles under the retry policy until one
// succeeds, the failure budget is exhausted, or ctx is done. It returns
// shared.ErrAborted (wrapped with the cause) when the scheduler gives up.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	for {
		err := s.syncCycle(ctx)
		if err == nil {
			s.mu.Lock()
			s.failures = 0
			s.state = StateIdle
			s.mu.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			s.setState(StateIdle)
			return ctx.Err()
		}

		if errors.Is(err, shared.ErrStorage) {
			return s.abort(fmt.Sprintf("storage failure: %v", err), err)
		}

		s.mu.Lock()
		s.failures++
		n := s.failures
		s.mu.Unlock()

		if n >= s.cfg.Sync.MaxConsecutiveFailures {
			return s.abort(fmt.Sprintf("%d consecutive failures, last: %v", n, err), err)
		}

		delay := s.backoffDelay(n)
		s.setState(StateBackoff)
		s.logger.Warn("sync cycle failed, backing off",
			"attempt", n, "delay", delay, "error", err)
		s.events.Publish(Event{
			Kind:    EventRestartAttempt,
			Attempt: n,
			Message: err.Error(),
		})

		if err := s.sleep(ctx, delay); err != nil {
			s.setState(StateIdle)
			return err
		}
	}
}

// abort records the aborted state and resets the failure counter so an
// explicit restart via RunOnce starts with a fresh budget.
func (s *Scheduler) abort(reason string, cause error) error {
	s.mu.Lock()
	s.state = StateAborted
	s.failures = 0
	s.mu.Unlock()
	s.logger.Error("sync aborted", "reason", reason)
	s.events.Publish(Event{Kind: EventAborted, Reason: reason})
	return fmt.Errorf("%w: %s", shared.ErrAborted, reason)
}

// syncCycle performs one full sync: page loop from the persisted cursor,
// album mirror, then an asynchronous thumbnail prefetch kick.
func (s *Scheduler) syncCycle(ctx context.Context) error {
	s.setState(StateRunning)
	s.events.Publish(Event{Kind: EventSyncStarted})
	s.logger.Info("sync cycle started")

	st, err := s.store.SyncState()
	if err != nil {
		return err
	}

	cursor := st.PageCursor
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		page, err := s.remote.ListMediaItems(ctx, cursor, s.cfg.Remote.PageSize)
		if err != nil {
			return fmt.Errorf("listing media items: %w", err)
		}

		// The page commit and the cursor advance share one
		// transaction, so a crash resumes at this page, not before it.
		if err := s.store.ApplyPage(page.Items, page.NextCursor); err != nil {
			return err
		}
		if len(page.Items) > 0 {
			s.events.Publish(Event{Kind: EventItemSynced, Count: len(page.Items)})
		}

		cursor = page.NextCursor
		if cursor == "" {
			break
		}
	}

	if err := s.syncAlbums(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.store.MarkSyncComplete(now); err != nil {
		return err
	}

	s.events.Publish(Event{Kind: EventSyncFinished, LastSynced: now})
	s.logger.Info("sync cycle finished", "completed_at", now)

	if s.fetcher != nil {
		s.kickPrefetch(ctx)
	}
	return nil
}

// syncAlbums mirrors albums and their memberships.
func (s *Scheduler) syncAlbums(ctx context.Context) error {
	albums, err := s.remote.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("listing albums: %w", err)
	}
	if err := s.store.UpsertAlbums(albums); err != nil {
		return err
	}

	for i := range albums {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		ids, err := s.remote.ListAlbumItems(ctx, albums[i].ID)
		if err != nil {
			return fmt.Errorf("listing items of album %s: %w", albums[i].ID, err)
		}
		if err := s.store.ReplaceAlbumItems(albums[i].ID, ids); err != nil {
			return err
		}
	}
	return nil
}

// kickPrefetch starts a background thumbnail pass over items that have
// no cached thumbnail yet. Prefetch failures never fail the sync cycle.
func (s *Scheduler) kickPrefetch(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fetched, failed, err := s.fetcher.PrefetchMissing(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("thumbnail prefetch ended early", "error", err)
			return
		}
		if fetched > 0 || failed > 0 {
			s.logger.Info("thumbnail prefetch done", "fetched", fetched, "failed", failed)
		}
	}()
}

// Start launches the periodic sync loop and the token refresh loop.
// They run until Shutdown is called or the scheduler aborts.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.syncLoop(ctx)
	}()

	if s.cfg.Sync.TokenRefreshMinutes > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.refreshLoop(ctx)
		}()
	}
}

func (s *Scheduler) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Sync.Interval())
	defer ticker.Stop()

	runAndCheck := func() bool {
		err := s.RunOnce(ctx)
		if errors.Is(err, shared.ErrAborted) {
			return false
		}
		return ctx.Err() == nil
	}

	// First cycle runs immediately.
	if !runAndCheck() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if !runAndCheck() {
				return
			}
		case <-s.trigger:
			if !runAndCheck() {
				return
			}
		}
	}
}

// refreshLoop renews the access token ahead of expiry. It mirrors the
// sync loop's failure policy with its own counter: transient refresh
// failures back off, repeated failures stop the loop.
func (s *Scheduler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Sync.TokenRefreshInterval())
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			var ok bool
			if failures, ok = s.refreshTick(ctx, failures); !ok {
				return
			}
		}
	}
}

// refreshTick performs one token refresh attempt under the same
// retry policy as sync cycles. It returns the updated failure count
// and whether the loop should keep running.
func (s *Scheduler) refreshTick(ctx context.Context, failures int) (int, bool) {
	_, err := s.tokens.ForceRefresh(ctx)
	if err == nil {
		s.logger.Debug("token refreshed")
		return 0, true
	}

	failures++
	s.logger.Warn("token refresh failed", "attempt", failures, "error", err)
	if failures >= s.cfg.Sync.MaxConsecutiveFailures {
		s.logger.Error("token refresh giving up", "failures", failures)
		s.events.Publish(Event{
			Kind:   EventAborted,
			Reason: fmt.Sprintf("token refresh failed %d times: %v", failures, err),
		})
		return failures, false
	}
	s.events.Publish(Event{
		Kind:    EventRestartAttempt,
		Attempt: failures,
		Message: err.Error(),
	})
	if err := s.sleep(ctx, s.backoffDelay(failures)); err != nil {
		return failures, false
	}
	return failures, true
}

// Shutdown stops new work and waits for in-flight cycles, up to ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.stopped.Do(func() { close(s.stop) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: shutdown wait: %v", shared.ErrTimeout, ctx.Err())
	}
}

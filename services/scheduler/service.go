package scheduler

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
)

const (
	DefaultInterval = 30 * time.Minute

	// maxLibraryFetches bounds concurrent section fetches when no library is
	// selected.
	maxLibraryFetches = 4
)

// TriggerKind says what started a refresh cycle.
type TriggerKind string

const (
	TriggerScheduled TriggerKind = "scheduled"
	TriggerManual    TriggerKind = "manual"
)

// CycleStatus is the outcome of a refresh cycle.
type CycleStatus string

const (
	StatusOK      CycleStatus = "ok"
	StatusSkipped CycleStatus = "skipped"
	StatusFailed  CycleStatus = "failed"
)

// CycleResult describes one refresh cycle.
type CycleResult struct {
	ID        string        `json:"id"`
	Trigger   TriggerKind   `json:"trigger"`
	Status    CycleStatus   `json:"status"`
	Fetched   int           `json:"fetched"`
	Kept      int           `json:"kept"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

func (r CycleResult) String() string {
	switch r.Status {
	case StatusFailed:
		return fmt.Sprintf("cycle %s (%s) failed after %s: %v", r.ID, r.Trigger, r.Duration, r.Err)
	case StatusSkipped:
		return fmt.Sprintf("cycle %s (%s) skipped: server not configured, cache cleared", r.ID, r.Trigger)
	default:
		return fmt.Sprintf("cycle %s (%s) kept %d of %d items in %s", r.ID, r.Trigger, r.Kept, r.Fetched, r.Duration)
	}
}

// SettingsLoader provides the current settings.
type SettingsLoader interface {
	Load() config.Settings
}

// ItemStore receives the refreshed artwork pool.
type ItemStore interface {
	ReplaceItems(items []models.ArtworkItem) error
}

// Service keeps the artwork cache in sync with the media server.
type Service struct {
	settings SettingsLoader
	cache    ItemStore
	sources  mediasource.Factory
	interval time.Duration
	shuffle  func([]models.ArtworkItem)

	// Runtime state
	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	resultMu sync.RWMutex
	last     *CycleResult
}

// NewService creates a new scheduler service. A non-positive interval uses
// DefaultInterval.
func NewService(settings SettingsLoader, cache ItemStore, sources mediasource.Factory, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		settings: settings,
		cache:    cache,
		sources:  sources,
		interval: interval,
		shuffle: func(items []models.ArtworkItem) {
			rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		},
	}
}

// SetShuffle replaces the shuffle applied to each refreshed pool.
func (s *Service) SetShuffle(fn func([]models.ArtworkItem)) {
	if fn != nil {
		s.shuffle = fn
	}
}

// Start begins the refresh loop. The first cycle runs immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.refreshLoop(s.ctx)

	log.Printf("[scheduler] refresh loop started (every %s)", s.interval)
	return nil
}

// Stop cancels the loop and waits for in-flight cycles until ctx expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] refresh loop stopped")
		return nil
	case <-ctx.Done():
		log.Println("[scheduler] refresh loop stopped (timeout)")
		return ctx.Err()
	}
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runAndLog(ctx, uuid.NewString(), TriggerScheduled)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAndLog(ctx, uuid.NewString(), TriggerScheduled)
		}
	}
}

// Trigger starts a manual refresh in the background and returns its cycle
// id. While the loop runs, the cycle shares its context and Stop waits for
// it; otherwise it runs detached on a background context.
func (s *Service) Trigger() string {
	id := uuid.NewString()

	s.mu.Lock()
	ctx, tracked := s.ctx, s.running
	if tracked {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if !tracked {
		ctx = context.Background()
	}

	go func() {
		if tracked {
			defer s.wg.Done()
		}
		s.runAndLog(ctx, id, TriggerManual)
	}()
	return id
}

// LastResult returns the most recently finished cycle.
func (s *Service) LastResult() (CycleResult, bool) {
	s.resultMu.RLock()
	defer s.resultMu.RUnlock()
	if s.last == nil {
		return CycleResult{}, false
	}
	return *s.last, true
}

func (s *Service) runAndLog(ctx context.Context, id string, trigger TriggerKind) {
	result := s.run(ctx, id, trigger)
	log.Printf("[scheduler] %s", result)
}

// RunOnce executes one refresh cycle synchronously as a scheduled cycle.
func (s *Service) RunOnce(ctx context.Context) CycleResult {
	return s.run(ctx, uuid.NewString(), TriggerScheduled)
}

func (s *Service) run(ctx context.Context, id string, trigger TriggerKind) CycleResult {
	result := CycleResult{ID: id, Trigger: trigger, StartedAt: time.Now()}

	fetched, kept, status, err := s.cycle(ctx)
	result.Fetched = fetched
	result.Kept = kept
	result.Status = status
	if err != nil {
		result.Err = err
		result.Error = err.Error()
	}
	result.Duration = time.Since(result.StartedAt)

	s.resultMu.Lock()
	s.last = &result
	s.resultMu.Unlock()
	return result
}

func (s *Service) cycle(ctx context.Context) (fetched, kept int, status CycleStatus, err error) {
	settings := s.settings.Load().Normalized()

	if !settings.IsConfigured() {
		if err := s.cache.ReplaceItems([]models.ArtworkItem{}); err != nil {
			return 0, 0, StatusFailed, err
		}
		return 0, 0, StatusSkipped, nil
	}

	src := s.sources(settings.Connection)
	items, err := fetchItems(ctx, src, settings.Poster.Library)
	if err != nil {
		return 0, 0, StatusFailed, err
	}

	filtered := NewFilter(settings.Poster).Apply(items)
	s.shuffle(filtered)

	if err := s.cache.ReplaceItems(filtered); err != nil {
		return len(items), 0, StatusFailed, err
	}
	return len(items), len(filtered), StatusOK, nil
}

// fetchItems loads one library, or every movie and show library when key is
// blank.
func fetchItems(ctx context.Context, src mediasource.Source, key string) ([]models.ArtworkItem, error) {
	if key = strings.TrimSpace(key); key != "" {
		items, err := src.LibraryItems(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch library %s: %w", key, err)
		}
		return items, nil
	}

	libs, err := src.Libraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	if len(libs) == 0 {
		return nil, nil
	}

	p := pool.NewWithResults[[]models.ArtworkItem]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(min(len(libs), maxLibraryFetches))
	for _, lib := range libs {
		p.Go(func(ctx context.Context) ([]models.ArtworkItem, error) {
			items, err := src.LibraryItems(ctx, lib.Key)
			if err != nil {
				return nil, fmt.Errorf("fetch library %s (%s): %w", lib.Key, lib.Title, err)
			}
			return items, nil
		})
	}

	pages, err := p.Wait()
	if err != nil {
		return nil, err
	}

	var all []models.ArtworkItem
	for _, page := range pages {
		all = append(all, page...)
	}
	return all, nil
}

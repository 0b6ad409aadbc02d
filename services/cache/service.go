package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/isaacrego/plex-poster-display/internal/docstore"
	"github.com/isaacrego/plex-poster-display/models"
)

// Service is the typed accessor for the artwork cache document.
type Service struct {
	store *docstore.Store[models.CacheDocument]

	// mu serializes read-modify-write cycles so an idle cursor update cannot
	// resurrect an item list that a refresh just replaced.
	mu  sync.Mutex
	now func() time.Time
}

// NewService opens (or creates) the cache document at path.
func NewService(path string, opts ...docstore.Option) (*Service, error) {
	store, err := docstore.New(path, models.DefaultCache, opts...)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Service{store: store, now: time.Now}, nil
}

// SetClock overrides the time source used for last_updated stamps.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Path returns the cache file location.
func (s *Service) Path() string { return s.store.Path() }

// Items returns the current artwork pool in stored order.
func (s *Service) Items() []models.ArtworkItem {
	doc := s.store.Read()
	out := make([]models.ArtworkItem, len(doc.Items))
	copy(out, doc.Items)
	return out
}

// ReplaceItems swaps the whole pool, stamps last_updated and resets an idle
// index that no longer points into the new pool to -1.
func (s *Service) ReplaceItems(items []models.ArtworkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Read()
	doc.Items = make([]models.ArtworkItem, len(items))
	copy(doc.Items, items)
	doc.LastUpdated = s.now().Unix()
	doc.Idle.Index = clampIndex(doc.Idle.Index, len(doc.Items))

	if err := s.store.Write(doc); err != nil {
		return fmt.Errorf("replace cached items: %w", err)
	}
	return nil
}

// IdleState returns the idle rotation cursor.
func (s *Service) IdleState() models.IdleState {
	return s.store.Read().Idle
}

// Snapshot returns the items and idle cursor from a single read so callers
// see a consistent pair.
func (s *Service) Snapshot() ([]models.ArtworkItem, models.IdleState) {
	doc := s.store.Read()
	return doc.Items, doc.Idle
}

// SetIdleState persists a new idle cursor. An index outside the current pool
// is stored as -1.
func (s *Service) SetIdleState(state models.IdleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Read()
	state.Index = clampIndex(state.Index, len(doc.Items))
	doc.Idle = state
	if err := s.store.Write(doc); err != nil {
		return fmt.Errorf("save idle state: %w", err)
	}
	return nil
}

// clampIndex keeps the idle index at -1 or a valid position into n items.
func clampIndex(idx, n int) int {
	if idx < 0 || idx >= n {
		return -1
	}
	return idx
}

// Summary describes the cache without the item payload.
func (s *Service) Summary() models.CacheSummary {
	doc := s.store.Read()
	sum := models.CacheSummary{
		NeverLoaded: doc.LastUpdated == 0,
		ItemCount:   len(doc.Items),
		Idle:        doc.Idle,
	}
	if doc.LastUpdated > 0 {
		sum.LastUpdated = time.Unix(doc.LastUpdated, 0).UTC()
	}
	return sum
}

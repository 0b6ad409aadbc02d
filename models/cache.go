package models

import "time"

// IdleState is the idle-rotation cursor. Index -1 means rotation has not
// started yet.
type IdleState struct {
	Index      int   `json:"index"`
	LastChange int64 `json:"last_change"`
}

// CacheDocument is the persisted artwork pool plus the idle cursor.
type CacheDocument struct {
	LastUpdated int64         `json:"last_updated"`
	Items       []ArtworkItem `json:"items"`
	Idle        IdleState     `json:"idle"`
}

// DefaultCache returns an empty cache document.
func DefaultCache() CacheDocument {
	return CacheDocument{
		LastUpdated: 0,
		Items:       []ArtworkItem{},
		Idle:        IdleState{Index: -1, LastChange: 0},
	}
}

// CacheSummary describes the cache without the item payload.
type CacheSummary struct {
	LastUpdated time.Time `json:"lastUpdated"`
	NeverLoaded bool      `json:"neverLoaded"`
	ItemCount   int       `json:"itemCount"`
	Idle        IdleState `json:"idle"`
}

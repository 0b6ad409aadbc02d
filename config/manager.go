package config

import (
	"fmt"
	"log"

	"github.com/isaacrego/plex-poster-display/internal/docstore"
)

// Manager owns the settings document.
type Manager struct {
	store *docstore.Store[Settings]
}

// NewManager opens (or creates) the settings document at path.
func NewManager(path string, opts ...docstore.Option) (*Manager, error) {
	store, err := docstore.New(path, Default, opts...)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return &Manager{store: store}, nil
}

// Path returns the settings file location.
func (m *Manager) Path() string { return m.store.Path() }

// Load returns the current settings with defaults backfilled.
func (m *Manager) Load() Settings {
	return m.store.Read()
}

// Save persists s as given.
func (m *Manager) Save(s Settings) error {
	if err := m.store.Write(s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ResetExceptConnection restores defaults while keeping the server connection.
func (m *Manager) ResetExceptConnection() error {
	current := m.Load()
	fresh := Default()
	fresh.Connection = current.Connection
	if err := m.Save(fresh); err != nil {
		return err
	}
	log.Printf("[config] settings reset to defaults (connection kept)")
	return nil
}

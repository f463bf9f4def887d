package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumipallolabs/dirsizer/internal/logging"
)

// Prefs holds persistent user preferences
type Prefs struct {
	LastRoot string `json:"last_root,omitempty"` // Root of the last started scan
	Sort     string `json:"sort,omitempty"`      // Last chosen sort key name
}

// Manager handles loading and saving preferences
type Manager struct {
	path         string
	prefs        Prefs
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a preferences manager backed by path
func NewManager(path string) *Manager {
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// DefaultPath returns the default preferences file path
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dirsizer-prefs.json"
	}
	return filepath.Join(home, ".dirsizer", "prefs.json")
}

// Load loads preferences from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No prefs file yet, start fresh
			m.prefs = Prefs{}
			return nil
		}
		return fmt.Errorf("read prefs: %w", err)
	}

	if err := json.Unmarshal(data, &m.prefs); err != nil {
		return fmt.Errorf("parse prefs %s: %w", m.path, err)
	}
	return nil
}

// Save saves preferences to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves preferences without acquiring the lock (caller must hold lock)
func (m *Manager) saveLocked() error {
	// Ensure directory exists
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.prefs, "", "  ")
	if err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// LastRoot returns the root of the last started scan
func (m *Manager) LastRoot() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs.LastRoot
}

// SetLastRoot records root and schedules a debounced save
func (m *Manager) SetLastRoot(root string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prefs.LastRoot == root {
		return
	}
	m.prefs.LastRoot = root
	m.scheduleSaveLocked()
}

// Sort returns the last chosen sort key name
func (m *Manager) Sort() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs.Sort
}

// SetSort records the sort key name and schedules a debounced save
func (m *Manager) SetSort(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prefs.Sort == key {
		return
	}
	m.prefs.Sort = key
	m.scheduleSaveLocked()
}

func (m *Manager) scheduleSaveLocked() {
	m.dirty = true

	// Cancel any pending save timer
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			if err := m.saveLocked(); err != nil {
				logging.Debug.Printf("Failed to save prefs: %v", err)
			}
		}
	})
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}

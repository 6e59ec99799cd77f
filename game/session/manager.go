// Package session owns every live round. The Manager is the process-wide
// registry from player identifier to round, and it is the only
// mutual-exclusion boundary in the system: each entry pairs a round with a
// dedicated lock, and all reads and writes of a round go through WithRound
// while that lock is held.
//
// Lock ordering is registry lock first, entry lock second, never the
// reverse.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/engine"
)

var (
	ErrNoSuchSession    = errors.New("no active round for player")
	ErrDuplicateSession = errors.New("player already has an active round")
	ErrInvalidPlayer    = errors.New("player id is required")
)

// entry pairs one round with its dedicated lock. A round is never referenced
// outside its entry.
type entry struct {
	mu    sync.Mutex
	round *engine.Round
}

// Manager is the session registry.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	archive RoundArchiver
}

// NewManager creates a registry with no archiver.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

// NewManagerWithArchive creates a registry that hands final snapshots to the
// archiver when rounds are removed.
func NewManagerWithArchive(archive RoundArchiver) *Manager {
	return &Manager{entries: make(map[string]*entry), archive: archive}
}

// CreateRound starts a new round for the player. At most one active
// (non-terminal) round per player is allowed; a terminal leftover is
// archived and replaced.
func (m *Manager) CreateRound(playerID string, c *course.Course, weather json.RawMessage) (engine.Snapshot, error) {
	if playerID == "" {
		return engine.Snapshot{}, ErrInvalidPlayer
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var leftover *engine.Snapshot
	if e, exists := m.entries[playerID]; exists {
		e.mu.Lock()
		state := e.round.State()
		if !state.Terminal() {
			e.mu.Unlock()
			return engine.Snapshot{}, fmt.Errorf("%w: player %s round is %s", ErrDuplicateSession, playerID, state)
		}
		snap := e.round.Snapshot()
		leftover = &snap
		e.mu.Unlock()
	}

	round := engine.NewRound(playerID, c, weather)
	m.entries[playerID] = &entry{round: round}

	if leftover != nil {
		m.archiveSnapshot(*leftover)
	}

	return round.Snapshot(), nil
}

// WithRound runs fn against the player's round while holding its dedicated
// lock. This is the only sanctioned way to read or mutate a round:
// operations on the same player are strictly serialized, operations on
// different players run fully in parallel.
func (m *Manager) WithRound(playerID string, fn func(*engine.Round) error) error {
	m.mu.RLock()
	e, exists := m.entries[playerID]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNoSuchSession, playerID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.round)
}

// Snapshot returns a consistent snapshot of the player's round.
func (m *Manager) Snapshot(playerID string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := m.WithRound(playerID, func(r *engine.Round) error {
		snap = r.Snapshot()
		return nil
	})
	return snap, err
}

// RemoveRound deletes the player's registry entry and archives its final
// snapshot.
func (m *Manager) RemoveRound(playerID string) error {
	m.mu.Lock()
	e, exists := m.entries[playerID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoSuchSession, playerID)
	}
	delete(m.entries, playerID)
	m.mu.Unlock()

	e.mu.Lock()
	snap := e.round.Snapshot()
	e.mu.Unlock()

	m.archiveSnapshot(snap)
	return nil
}

// List returns snapshots of all registered rounds.
func (m *Manager) List() []engine.Snapshot {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	result := make([]engine.Snapshot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		result = append(result, e.round.Snapshot())
		e.mu.Unlock()
	}
	return result
}

// Count returns the number of registered rounds.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CleanupTerminal removes and archives every round that has reached a
// terminal state. Returns how many rounds were removed.
func (m *Manager) CleanupTerminal() int {
	m.mu.RLock()
	players := make([]string, 0, len(m.entries))
	for id := range m.entries {
		players = append(players, id)
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range players {
		terminal := false
		err := m.WithRound(id, func(r *engine.Round) error {
			terminal = r.State().Terminal()
			return nil
		})
		if err != nil || !terminal {
			continue
		}
		if err := m.RemoveRound(id); err == nil {
			removed++
		}
	}
	return removed
}

// archiveSnapshot hands a final snapshot to the archiver if one is
// configured. Archive failures are logged, not propagated: the registry's
// bookkeeping already happened.
func (m *Manager) archiveSnapshot(snap engine.Snapshot) {
	if m.archive == nil {
		return
	}
	if err := m.archive.Archive(snap); err != nil {
		log.Printf("Warning: failed to archive round %s: %v", snap.ID, err)
	}
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairwaylabs/caddie/game/engine"
)

var ErrRoundNotArchived = errors.New("round not found in archive")

// RoundArchiver stores final round snapshots after a round leaves the
// registry. Implementations own the storage format.
type RoundArchiver interface {
	Archive(snap engine.Snapshot) error
	Load(roundID string) (engine.Snapshot, error)
	Exists(roundID string) bool
	List() ([]string, error)
}

// FileArchive implements RoundArchiver with one JSON file per round.
type FileArchive struct {
	dir string
}

// NewFileArchive creates the archive directory if needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileArchive{dir: dir}, nil
}

// Archive writes the snapshot to <dir>/<round id>.json.
func (a *FileArchive) Archive(snap engine.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("snapshot has no round id")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal round snapshot: %w", err)
	}

	if err := os.WriteFile(a.path(snap.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}
	return nil
}

// Load reads an archived snapshot back.
func (a *FileArchive) Load(roundID string) (engine.Snapshot, error) {
	data, err := os.ReadFile(a.path(roundID))
	if err != nil {
		if os.IsNotExist(err) {
			return engine.Snapshot{}, fmt.Errorf("%w: %s", ErrRoundNotArchived, roundID)
		}
		return engine.Snapshot{}, fmt.Errorf("failed to read archive file: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("failed to unmarshal round snapshot: %w", err)
	}
	return snap, nil
}

// Exists reports whether the round has been archived.
func (a *FileArchive) Exists(roundID string) bool {
	_, err := os.Stat(a.path(roundID))
	return err == nil
}

// List returns the IDs of all archived rounds.
func (a *FileArchive) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

func (a *FileArchive) path(roundID string) string {
	return filepath.Join(a.dir, roundID+".json")
}

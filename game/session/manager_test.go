package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/fairwaylabs/caddie/game/geo"
)

func testCourse(t *testing.T) *course.Course {
	t.Helper()
	c, err := course.Build("test-links", []course.HoleRecord{
		{Number: 1, Par: 4, Path: []geo.Coordinate{
			{Lat: 47.6062, Lon: -122.3321},
			{Lat: 47.6070, Lon: -122.3300},
		}},
		{Number: 2, Par: 3, Path: []geo.Coordinate{
			{Lat: 47.6070, Lon: -122.3300},
			{Lat: 47.6080, Lon: -122.3290},
		}},
	})
	if err != nil {
		t.Fatalf("Failed to build test course: %v", err)
	}
	return c
}

func TestManager_CreateRound(t *testing.T) {
	manager := NewManager()
	c := testCourse(t)

	t.Run("create", func(t *testing.T) {
		snap, err := manager.CreateRound("alice", c, nil)
		if err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
		if snap.PlayerID != "alice" {
			t.Errorf("Expected player 'alice', got %q", snap.PlayerID)
		}
		if snap.State != engine.StateCreated {
			t.Errorf("Expected state %s, got %s", engine.StateCreated, snap.State)
		}
		if snap.CurrentHole != 1 {
			t.Errorf("Expected current hole 1, got %d", snap.CurrentHole)
		}
	})

	t.Run("duplicate active round rejected", func(t *testing.T) {
		_, err := manager.CreateRound("alice", c, nil)
		if !errors.Is(err, ErrDuplicateSession) {
			t.Errorf("Expected ErrDuplicateSession, got %v", err)
		}
	})

	t.Run("empty player id rejected", func(t *testing.T) {
		_, err := manager.CreateRound("", c, nil)
		if !errors.Is(err, ErrInvalidPlayer) {
			t.Errorf("Expected ErrInvalidPlayer, got %v", err)
		}
	})

	t.Run("terminal round may be replaced", func(t *testing.T) {
		err := manager.WithRound("alice", func(r *engine.Round) error {
			return r.Abandon()
		})
		if err != nil {
			t.Fatalf("Abandon failed: %v", err)
		}

		snap, err := manager.CreateRound("alice", c, nil)
		if err != nil {
			t.Fatalf("Expected terminal round to be replaceable, got %v", err)
		}
		if snap.State != engine.StateCreated {
			t.Errorf("Expected fresh round, got state %s", snap.State)
		}
	})
}

func TestManager_WithRound(t *testing.T) {
	manager := NewManager()
	c := testCourse(t)

	if _, err := manager.CreateRound("alice", c, nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}

	t.Run("mutates under the lock", func(t *testing.T) {
		err := manager.WithRound("alice", func(r *engine.Round) error {
			_, err := r.LogShot(geo.Coordinate{Lat: 47.6066, Lon: -122.3310}, "driver")
			return err
		})
		if err != nil {
			t.Fatalf("WithRound failed: %v", err)
		}

		snap, err := manager.Snapshot("alice")
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if snap.TotalShots != 1 {
			t.Errorf("Expected 1 shot, got %d", snap.TotalShots)
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		err := manager.WithRound("nobody", func(r *engine.Round) error { return nil })
		if !errors.Is(err, ErrNoSuchSession) {
			t.Errorf("Expected ErrNoSuchSession, got %v", err)
		}
	})

	t.Run("propagates fn failure", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := manager.WithRound("alice", func(r *engine.Round) error { return sentinel })
		if !errors.Is(err, sentinel) {
			t.Errorf("Expected fn error to propagate, got %v", err)
		}
	})
}

func TestManager_ConcurrentShotsSinglePlayer(t *testing.T) {
	manager := NewManager()
	c := testCourse(t)

	if _, err := manager.CreateRound("alice", c, nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}

	// N concurrent LogShot calls on one player must produce exactly N
	// shots: the per-round lock serializes them with no lost updates.
	const n = 100
	// Mid-fairway coordinate, far from both pins, so the round never
	// completes during the test.
	coord := geo.Coordinate{Lat: 47.6065, Lon: -122.3312}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- manager.WithRound("alice", func(r *engine.Round) error {
				_, err := r.LogShot(coord, "7-iron")
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Concurrent LogShot failed: %v", err)
		}
	}

	snap, err := manager.Snapshot("alice")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.TotalShots != n {
		t.Errorf("Expected exactly %d shots, got %d (lost updates)", n, snap.TotalShots)
	}
}

func TestManager_ConcurrentDistinctPlayers(t *testing.T) {
	manager := NewManager()
	c := testCourse(t)

	const players = 20
	const shotsPerPlayer = 10

	for i := 0; i < players; i++ {
		if _, err := manager.CreateRound(fmt.Sprintf("player-%d", i), c, nil); err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			player := fmt.Sprintf("player-%d", id)
			for j := 0; j < shotsPerPlayer; j++ {
				err := manager.WithRound(player, func(r *engine.Round) error {
					_, err := r.LogShot(geo.Coordinate{Lat: 47.6065, Lon: -122.3312}, "wedge")
					return err
				})
				if err != nil {
					t.Errorf("LogShot for %s failed: %v", player, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < players; i++ {
		snap, err := manager.Snapshot(fmt.Sprintf("player-%d", i))
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if snap.TotalShots != shotsPerPlayer {
			t.Errorf("Player %d: expected %d shots, got %d", i, shotsPerPlayer, snap.TotalShots)
		}
	}
}

func TestManager_RemoveRound(t *testing.T) {
	manager := NewManager()
	c := testCourse(t)

	if _, err := manager.CreateRound("alice", c, nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}

	if err := manager.RemoveRound("alice"); err != nil {
		t.Fatalf("RemoveRound failed: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected empty registry, got %d entries", manager.Count())
	}
	if err := manager.RemoveRound("alice"); !errors.Is(err, ErrNoSuchSession) {
		t.Errorf("Expected ErrNoSuchSession on double remove, got %v", err)
	}
}

func TestManager_RemoveArchives(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive failed: %v", err)
	}
	manager := NewManagerWithArchive(archive)
	c := testCourse(t)

	snap, err := manager.CreateRound("alice", c, nil)
	if err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}
	if err := manager.RemoveRound("alice"); err != nil {
		t.Fatalf("RemoveRound failed: %v", err)
	}

	if !archive.Exists(snap.ID) {
		t.Fatal("Expected removed round to be archived")
	}
	stored, err := archive.Load(snap.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if stored.PlayerID != "alice" {
		t.Errorf("Expected archived player 'alice', got %q", stored.PlayerID)
	}
}

func TestManager_CleanupTerminal(t *testing.T) {
	manager := NewManager()
	c := testCourse(t)

	for _, player := range []string{"done", "playing"} {
		if _, err := manager.CreateRound(player, c, nil); err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
	}

	if err := manager.WithRound("done", func(r *engine.Round) error { return r.Abandon() }); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if err := manager.WithRound("playing", func(r *engine.Round) error {
		_, err := r.LogShot(geo.Coordinate{Lat: 47.6065, Lon: -122.3312}, "driver")
		return err
	}); err != nil {
		t.Fatalf("LogShot failed: %v", err)
	}

	removed := manager.CleanupTerminal()
	if removed != 1 {
		t.Errorf("Expected 1 round removed, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 round left, got %d", manager.Count())
	}
	if _, err := manager.Snapshot("playing"); err != nil {
		t.Errorf("Expected in-progress round to survive cleanup: %v", err)
	}
}

func TestFileArchive_List(t *testing.T) {
	archive, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive failed: %v", err)
	}

	if ids, err := archive.List(); err != nil || len(ids) != 0 {
		t.Fatalf("Expected empty archive, got %v (err=%v)", ids, err)
	}

	manager := NewManagerWithArchive(archive)
	c := testCourse(t)
	for _, player := range []string{"a", "b"} {
		if _, err := manager.CreateRound(player, c, nil); err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
		if err := manager.RemoveRound(player); err != nil {
			t.Fatalf("RemoveRound failed: %v", err)
		}
	}

	ids, err := archive.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 archived rounds, got %d", len(ids))
	}

	if _, err := archive.Load("missing"); !errors.Is(err, ErrRoundNotArchived) {
		t.Errorf("Expected ErrRoundNotArchived, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/fairwaylabs/caddie/game/geo"
	"github.com/fairwaylabs/caddie/game/session"
)

// stubCatalog serves pre-built courses without touching the filesystem.
type stubCatalog struct {
	courses map[string]*course.Course
	def     *course.Course
}

func (s *stubCatalog) LoadCourse(courseID string) (*course.Course, error) {
	if c, ok := s.courses[courseID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("course not found: %s", courseID)
}

func (s *stubCatalog) ListCourses() ([]*CourseInfo, error) {
	var infos []*CourseInfo
	for id, c := range s.courses {
		infos = append(infos, &CourseInfo{
			Filename: id + ".json",
			CourseID: id,
			Name:     c.Name(),
			Holes:    c.NumHoles(),
			TotalPar: c.TotalPar(),
		})
	}
	return infos, nil
}

func (s *stubCatalog) GetDefault() *course.Course { return s.def }

func testCourse(t *testing.T) *course.Course {
	t.Helper()
	c, err := course.Build("pebble-creek", []course.HoleRecord{
		{
			Number: 1,
			Par:    4,
			Path: []geo.Coordinate{
				{Lat: 47.6062, Lon: -122.3321},
				{Lat: 47.6070, Lon: -122.3300},
			},
			Hazards: []course.Hazard{
				{
					ID:   "pond-1",
					Kind: course.HazardWater,
					Region: mustPolygon(t, []geo.Coordinate{
						{Lat: 47.6063, Lon: -122.3316},
						{Lat: 47.6063, Lon: -122.3312},
						{Lat: 47.6066, Lon: -122.3312},
						{Lat: 47.6066, Lon: -122.3316},
					}),
				},
			},
		},
		{
			Number: 2,
			Par:    3,
			Path: []geo.Coordinate{
				{Lat: 47.6070, Lon: -122.3300},
				{Lat: 47.6080, Lon: -122.3290},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to build test course: %v", err)
	}
	return c
}

func mustPolygon(t *testing.T, pts []geo.Coordinate) geo.Region {
	t.Helper()
	r, err := geo.NewPolygon(pts)
	if err != nil {
		t.Fatalf("Failed to build polygon: %v", err)
	}
	return r
}

func newTestService(t *testing.T) RoundService {
	t.Helper()
	c := testCourse(t)
	catalog := &stubCatalog{
		courses: map[string]*course.Course{"pebble-creek": c},
		def:     c,
	}
	return NewRoundService(session.NewManager(), catalog)
}

func TestRoundService_CreateRound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("named course", func(t *testing.T) {
		info, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil)
		if err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
		if info.Round.PlayerID != "alice" {
			t.Errorf("Expected player 'alice', got %q", info.Round.PlayerID)
		}
		if info.Round.State != engine.StateCreated {
			t.Errorf("Expected created state, got %s", info.Round.State)
		}
		if info.CourseID != "pebble-creek" {
			t.Errorf("Expected course 'pebble-creek', got %q", info.CourseID)
		}
		if info.HolesTotal != 2 || info.TotalPar != 7 {
			t.Errorf("Expected 2 holes / par 7, got %d / %d", info.HolesTotal, info.TotalPar)
		}
	})

	t.Run("default course", func(t *testing.T) {
		info, err := svc.CreateRound(ctx, "bob", "", nil)
		if err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
		if info.CourseID != "pebble-creek" {
			t.Errorf("Expected default course, got %q", info.CourseID)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		if _, err := svc.CreateRound(ctx, "carol", "no-such-course", nil); err == nil {
			t.Error("Expected error for unknown course")
		}
	})

	t.Run("duplicate active round", func(t *testing.T) {
		if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); !errors.Is(err, session.ErrDuplicateSession) {
			t.Errorf("Expected ErrDuplicateSession, got %v", err)
		}
	})
}

func TestRoundService_LogShot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}

	result, err := svc.LogShot(ctx, "alice", ShotRequest{Lat: 47.6064, Lon: -122.3314, Club: "driver"})
	if err != nil {
		t.Fatalf("LogShot failed: %v", err)
	}
	if result.State != engine.StateInProgress {
		t.Errorf("Expected in_progress, got %s", result.State)
	}
	if result.HoleNumber != 1 {
		t.Errorf("Expected hole 1, got %d", result.HoleNumber)
	}
	if result.Shot.DistanceMeters <= 0 {
		t.Errorf("Expected positive distance from tee, got %f", result.Shot.DistanceMeters)
	}

	// The ball landed in pond-1: a hazard event should accompany the shot.
	if len(result.Shot.Hazards) != 1 || result.Shot.Hazards[0] != "pond-1" {
		t.Errorf("Expected pond-1 hit, got %v", result.Shot.Hazards)
	}
	var hazardEvent bool
	for _, ev := range result.Events {
		if ev.Type == "hazard" {
			hazardEvent = true
		}
	}
	if !hazardEvent {
		t.Errorf("Expected a hazard event, got %+v", result.Events)
	}

	t.Run("no round", func(t *testing.T) {
		if _, err := svc.LogShot(ctx, "ghost", ShotRequest{Lat: 47.6064, Lon: -122.3314, Club: "iron"}); !errors.Is(err, session.ErrNoSuchSession) {
			t.Errorf("Expected ErrNoSuchSession, got %v", err)
		}
	})

	t.Run("invalid club", func(t *testing.T) {
		if _, err := svc.LogShot(ctx, "alice", ShotRequest{Lat: 47.6064, Lon: -122.3314}); !errors.Is(err, engine.ErrInvalidClub) {
			t.Errorf("Expected ErrInvalidClub, got %v", err)
		}
	})

	t.Run("invalid coordinate", func(t *testing.T) {
		if _, err := svc.LogShot(ctx, "alice", ShotRequest{Lat: 95, Lon: 0, Club: "iron"}); !errors.Is(err, geo.ErrInvalidCoordinate) {
			t.Errorf("Expected ErrInvalidCoordinate, got %v", err)
		}
	})
}

func TestRoundService_FullRound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}

	// Three positioning shots on hole 1, then one at the pin.
	hole1 := []ShotRequest{
		{Lat: 47.6064, Lon: -122.3318, Club: "driver"},
		{Lat: 47.6067, Lon: -122.3308, Club: "iron"},
		{Lat: 47.6069, Lon: -122.3302, Club: "wedge"},
		{Lat: 47.6070, Lon: -122.3300, Club: "putter"},
	}
	var last *ShotResult
	for i, req := range hole1 {
		var err error
		last, err = svc.LogShot(ctx, "alice", req)
		if err != nil {
			t.Fatalf("Shot %d failed: %v", i+1, err)
		}
	}
	if !last.HoleCompleted || last.HoleScore != 4 {
		t.Fatalf("Expected hole 1 complete in 4, got completed=%v score=%d", last.HoleCompleted, last.HoleScore)
	}
	if last.CurrentHole != 2 {
		t.Errorf("Expected advance to hole 2, got %d", last.CurrentHole)
	}

	// Two positioning shots on hole 2, then one at the pin.
	hole2 := []ShotRequest{
		{Lat: 47.6074, Lon: -122.3296, Club: "iron"},
		{Lat: 47.6078, Lon: -122.3292, Club: "wedge"},
		{Lat: 47.6080, Lon: -122.3290, Club: "putter"},
	}
	for i, req := range hole2 {
		var err error
		last, err = svc.LogShot(ctx, "alice", req)
		if err != nil {
			t.Fatalf("Hole 2 shot %d failed: %v", i+1, err)
		}
	}

	if !last.RoundComplete {
		t.Fatal("Expected round complete after holing out the last hole")
	}
	if last.Round.TotalScore != 7 {
		t.Errorf("Expected total score 7, got %d", last.Round.TotalScore)
	}
	if last.Round.Scores[1] != 4 || last.Round.Scores[2] != 3 {
		t.Errorf("Expected scores 4 and 3, got %v", last.Round.Scores)
	}

	var roundDone bool
	for _, ev := range last.Events {
		if ev.Type == "round_complete" {
			roundDone = true
		}
	}
	if !roundDone {
		t.Errorf("Expected round_complete event, got %+v", last.Events)
	}

	// A finished round rejects further shots.
	if _, err := svc.LogShot(ctx, "alice", ShotRequest{Lat: 47.6080, Lon: -122.3290, Club: "putter"}); !errors.Is(err, engine.ErrRoundClosed) {
		t.Errorf("Expected ErrRoundClosed, got %v", err)
	}
}

func TestRoundService_CompleteHole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}
	if _, err := svc.LogShot(ctx, "alice", ShotRequest{Lat: 47.6065, Lon: -122.3310, Club: "driver"}); err != nil {
		t.Fatalf("LogShot failed: %v", err)
	}

	info, err := svc.CompleteHole(ctx, "alice")
	if err != nil {
		t.Fatalf("CompleteHole failed: %v", err)
	}
	if info.Round.CurrentHole != 2 {
		t.Errorf("Expected hole 2 after explicit completion, got %d", info.Round.CurrentHole)
	}
	if info.Round.Scores[1] != 1 {
		t.Errorf("Expected score 1 for the picked-up hole, got %d", info.Round.Scores[1])
	}
}

func TestRoundService_AbandonRound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}

	info, err := svc.AbandonRound(ctx, "alice")
	if err != nil {
		t.Fatalf("AbandonRound failed: %v", err)
	}
	if info.Round.State != engine.StateAbandoned {
		t.Errorf("Expected abandoned state, got %s", info.Round.State)
	}

	// A fresh round can replace the abandoned one.
	if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); err != nil {
		t.Errorf("Expected replacement round after abandon, got %v", err)
	}
}

func TestRoundService_GetAndListRounds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetRound(ctx, "alice"); !errors.Is(err, session.ErrNoSuchSession) {
		t.Errorf("Expected ErrNoSuchSession before creation, got %v", err)
	}

	for _, player := range []string{"alice", "bob"} {
		if _, err := svc.CreateRound(ctx, player, "pebble-creek", nil); err != nil {
			t.Fatalf("CreateRound failed for %s: %v", player, err)
		}
	}

	info, err := svc.GetRound(ctx, "alice")
	if err != nil {
		t.Fatalf("GetRound failed: %v", err)
	}
	if info.Round.PlayerID != "alice" {
		t.Errorf("Expected alice's round, got %q", info.Round.PlayerID)
	}

	rounds, err := svc.ListRounds(ctx)
	if err != nil {
		t.Fatalf("ListRounds failed: %v", err)
	}
	if len(rounds) != 2 {
		t.Errorf("Expected 2 rounds, got %d", len(rounds))
	}
}

func TestRoundService_RemoveRound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRound(ctx, "alice", "pebble-creek", nil); err != nil {
		t.Fatalf("CreateRound failed: %v", err)
	}
	if err := svc.RemoveRound(ctx, "alice"); err != nil {
		t.Fatalf("RemoveRound failed: %v", err)
	}
	if _, err := svc.GetRound(ctx, "alice"); !errors.Is(err, session.ErrNoSuchSession) {
		t.Errorf("Expected ErrNoSuchSession after removal, got %v", err)
	}
	if err := svc.RemoveRound(ctx, "alice"); !errors.Is(err, session.ErrNoSuchSession) {
		t.Errorf("Expected ErrNoSuchSession on double removal, got %v", err)
	}
}

func TestRoundService_Courses(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	courses, err := svc.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses failed: %v", err)
	}
	if len(courses) != 1 || courses[0].CourseID != "pebble-creek" {
		t.Fatalf("Expected pebble-creek listing, got %+v", courses)
	}

	detail, err := svc.GetCourse(ctx, "pebble-creek")
	if err != nil {
		t.Fatalf("GetCourse failed: %v", err)
	}
	if len(detail.Holes) != 2 {
		t.Fatalf("Expected 2 holes, got %d", len(detail.Holes))
	}
	if detail.Holes[0].Par != 4 || detail.Holes[1].Par != 3 {
		t.Errorf("Expected pars 4 and 3, got %+v", detail.Holes)
	}
	if len(detail.Holes[0].Hazards) != 1 || detail.Holes[0].Hazards[0].ID != "pond-1" {
		t.Errorf("Expected pond-1 on hole 1, got %+v", detail.Holes[0].Hazards)
	}

	if _, err := svc.GetCourse(ctx, "no-such-course"); err == nil {
		t.Error("Expected error for unknown course")
	}
}

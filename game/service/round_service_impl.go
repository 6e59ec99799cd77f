package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/fairwaylabs/caddie/game/geo"
)

// roundServiceImpl implements the RoundService interface. It carries no lock
// of its own: the registry's per-round locks are the concurrency boundary,
// and a facade-wide mutex would needlessly serialize unrelated players.
type roundServiceImpl struct {
	registry RoundRegistry
	courses  CourseCatalog
}

// NewRoundService creates a new round service instance.
func NewRoundService(registry RoundRegistry, courses CourseCatalog) RoundService {
	return &roundServiceImpl{
		registry: registry,
		courses:  courses,
	}
}

// CreateRound starts a round for the player on the named course (or the
// default course when courseID is empty).
func (s *roundServiceImpl) CreateRound(ctx context.Context, playerID, courseID string, weather json.RawMessage) (*RoundInfo, error) {
	var c *course.Course
	var err error
	if courseID != "" {
		c, err = s.courses.LoadCourse(courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load course %s: %w", courseID, err)
		}
	} else {
		c = s.courses.GetDefault()
	}

	snap, err := s.registry.CreateRound(playerID, c, weather)
	if err != nil {
		return nil, err
	}

	return s.roundInfo(snap, c), nil
}

// GetRound returns the player's current round.
func (s *roundServiceImpl) GetRound(ctx context.Context, playerID string) (*RoundInfo, error) {
	var snap engine.Snapshot
	var c *course.Course
	err := s.registry.WithRound(playerID, func(r *engine.Round) error {
		snap = r.Snapshot()
		c = r.Course()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.roundInfo(snap, c), nil
}

// ListRounds returns all registered rounds.
func (s *roundServiceImpl) ListRounds(ctx context.Context) ([]*RoundInfo, error) {
	snaps := s.registry.List()
	result := make([]*RoundInfo, 0, len(snaps))
	for _, snap := range snaps {
		info := &RoundInfo{Round: snap, CourseID: snap.CourseName}
		if c, err := s.courses.LoadCourse(snap.CourseName); err == nil {
			info = s.roundInfo(snap, c)
		}
		result = append(result, info)
	}
	return result, nil
}

// RemoveRound deletes the player's round from the registry.
func (s *roundServiceImpl) RemoveRound(ctx context.Context, playerID string) error {
	return s.registry.RemoveRound(playerID)
}

// LogShot records a stroke against the player's round.
func (s *roundServiceImpl) LogShot(ctx context.Context, playerID string, req ShotRequest) (*ShotResult, error) {
	var outcome *engine.ShotOutcome
	var snap engine.Snapshot
	err := s.registry.WithRound(playerID, func(r *engine.Round) error {
		var err error
		outcome, err = r.LogShot(coordFromRequest(req), req.Club)
		if err != nil {
			return err
		}
		snap = r.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ShotResult{
		Shot:          outcome.Shot,
		State:         outcome.State,
		HoleNumber:    outcome.HoleNumber,
		HoleCompleted: outcome.HoleCompleted,
		HoleScore:     outcome.HoleScore,
		CurrentHole:   outcome.CurrentHole,
		RoundComplete: outcome.State == engine.StateRoundComplete,
		Round:         snap,
		Events:        shotEvents(outcome, snap),
	}, nil
}

// CompleteHole finalizes the player's current hole without a holed shot.
func (s *roundServiceImpl) CompleteHole(ctx context.Context, playerID string) (*RoundInfo, error) {
	var snap engine.Snapshot
	var c *course.Course
	err := s.registry.WithRound(playerID, func(r *engine.Round) error {
		if _, err := r.CompleteHole(); err != nil {
			return err
		}
		snap = r.Snapshot()
		c = r.Course()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.roundInfo(snap, c), nil
}

// AbandonRound moves the player's round to the Abandoned state.
func (s *roundServiceImpl) AbandonRound(ctx context.Context, playerID string) (*RoundInfo, error) {
	var snap engine.Snapshot
	var c *course.Course
	err := s.registry.WithRound(playerID, func(r *engine.Round) error {
		if err := r.Abandon(); err != nil {
			return err
		}
		snap = r.Snapshot()
		c = r.Course()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.roundInfo(snap, c), nil
}

// ListCourses returns the available courses.
func (s *roundServiceImpl) ListCourses(ctx context.Context) ([]*CourseInfo, error) {
	return s.courses.ListCourses()
}

// GetCourse returns the hole-by-hole layout of a course.
func (s *roundServiceImpl) GetCourse(ctx context.Context, courseID string) (*CourseDetail, error) {
	c, err := s.courses.LoadCourse(courseID)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{
		CourseID: courseID,
		Name:     c.Name(),
		TotalPar: c.TotalPar(),
	}
	for _, n := range c.HoleNumbers() {
		hole, _ := c.Hole(n)
		info := HoleInfo{
			Number: hole.Number,
			Par:    hole.Par,
			Tee:    hole.Tee,
			Pin:    hole.Pin,
		}
		for _, hz := range hole.Hazards {
			info.Hazards = append(info.Hazards, HazardInfo{ID: hz.ID, Kind: string(hz.Kind)})
		}
		detail.Holes = append(detail.Holes, info)
	}
	return detail, nil
}

func (s *roundServiceImpl) roundInfo(snap engine.Snapshot, c *course.Course) *RoundInfo {
	info := &RoundInfo{Round: snap, CourseID: snap.CourseName}
	if c != nil {
		info.HolesTotal = c.NumHoles()
		info.TotalPar = c.TotalPar()
	}
	return info
}

func coordFromRequest(req ShotRequest) geo.Coordinate {
	return geo.Coordinate{Lat: req.Lat, Lon: req.Lon}
}

// shotEvents turns a shot outcome into transport-friendly events.
func shotEvents(outcome *engine.ShotOutcome, snap engine.Snapshot) []RoundEvent {
	now := time.Now()
	events := []RoundEvent{{
		Type:      "shot",
		Message:   fmt.Sprintf("%s shot, %.0fm, hole %d", outcome.Shot.Club, outcome.Shot.DistanceMeters, outcome.HoleNumber),
		Hole:      outcome.HoleNumber,
		Timestamp: now,
	}}

	for _, hz := range outcome.Shot.Hazards {
		events = append(events, RoundEvent{
			Type:      "hazard",
			Message:   fmt.Sprintf("Ball entered hazard %s", hz),
			Hole:      outcome.HoleNumber,
			Timestamp: now,
		})
	}

	if outcome.HoleCompleted {
		events = append(events, RoundEvent{
			Type:      "hole_complete",
			Message:   fmt.Sprintf("Hole %d complete in %d strokes", outcome.HoleNumber, outcome.HoleScore),
			Hole:      outcome.HoleNumber,
			Timestamp: now,
		})
	}
	if outcome.State == engine.StateRoundComplete {
		events = append(events, RoundEvent{
			Type:      "round_complete",
			Message:   fmt.Sprintf("Round complete: %d strokes, %d hazards", snap.TotalScore, len(snap.Hazards)),
			Timestamp: now,
		})
	}
	return events
}

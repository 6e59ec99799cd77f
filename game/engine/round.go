// Package engine implements the per-player round state machine: shot
// logging, hazard detection, hole completion, and scoring against an
// immutable course.
//
// A Round is not safe for concurrent use on its own. Every round is owned by
// a session registry entry and is only mutated while that entry's lock is
// held (see game/session).
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/geo"
)

var (
	ErrInvalidClub     = errors.New("club label is required")
	ErrRoundClosed     = errors.New("round is closed")
	ErrCourseExhausted = errors.New("no holes remain on the course")
)

// Round is one player's play-through of a course.
type Round struct {
	id        string
	playerID  string
	course    *course.Course
	weather   json.RawMessage
	createdAt time.Time

	state       Lifecycle
	currentHole int
	lastPos     *geo.Coordinate
	shots       map[int][]Shot
	scores      map[int]int
	hazards     map[string]struct{}
}

// NewRound creates a round in the Created state positioned at the course's
// lowest hole reference. The weather snapshot is stored opaquely and never
// interpreted.
func NewRound(playerID string, c *course.Course, weather json.RawMessage) *Round {
	return &Round{
		id:          uuid.NewString(),
		playerID:    playerID,
		course:      c,
		weather:     weather,
		createdAt:   time.Now(),
		state:       StateCreated,
		currentHole: c.FirstHole(),
		shots:       make(map[int][]Shot),
		scores:      make(map[int]int),
		hazards:     make(map[string]struct{}),
	}
}

// ID returns the round's opaque unique identifier.
func (r *Round) ID() string { return r.id }

// PlayerID returns the owning player's identifier.
func (r *Round) PlayerID() string { return r.playerID }

// State returns the current lifecycle state.
func (r *Round) State() Lifecycle { return r.state }

// CurrentHole returns the hole the player is currently on.
func (r *Round) CurrentHole() int { return r.currentHole }

// Course returns the immutable course this round is played on.
func (r *Round) Course() *course.Course { return r.course }

// LogShot records one stroke at the given coordinate. It computes the
// distance from the player's last known position (or the current hole's tee
// for the first shot of a hole), evaluates the current hole's hazards,
// appends the shot, and completes the hole when the ball lands within
// HoledRadiusMeters of the pin. Hazard recording happens before the
// completion check, so a shot can do both.
//
// All validation and geometry runs before any state is touched; a failed
// call leaves the round unchanged.
func (r *Round) LogShot(coord geo.Coordinate, club string) (*ShotOutcome, error) {
	if r.state.Terminal() {
		return nil, fmt.Errorf("%w: round %s is %s", ErrRoundClosed, r.id, r.state)
	}
	if strings.TrimSpace(club) == "" {
		return nil, ErrInvalidClub
	}
	if err := coord.Validate(); err != nil {
		return nil, err
	}

	hole, ok := r.course.Hole(r.currentHole)
	if !ok {
		return nil, fmt.Errorf("%w: hole %d not on course %q", ErrCourseExhausted, r.currentHole, r.course.Name())
	}

	from := hole.Tee
	if r.lastPos != nil {
		from = *r.lastPos
	}
	dist, err := geo.Distance(from, coord)
	if err != nil {
		return nil, err
	}
	pinDist, err := geo.Distance(coord, hole.Pin)
	if err != nil {
		return nil, err
	}

	var entered []string
	for _, hz := range hole.Hazards {
		if hz.Region.Contains(coord) {
			entered = append(entered, hz.ID)
		}
	}

	// Everything that can fail has run; commit the mutation.
	shot := Shot{
		Coordinate:     coord,
		Club:           club,
		Timestamp:      time.Now(),
		DistanceMeters: dist,
		Hazards:        entered,
	}
	r.shots[hole.Number] = append(r.shots[hole.Number], shot)
	for _, id := range entered {
		r.hazards[id] = struct{}{}
	}
	pos := coord
	r.lastPos = &pos
	r.state = StateInProgress

	outcome := &ShotOutcome{
		Shot:       shot,
		HoleNumber: hole.Number,
	}

	if pinDist <= HoledRadiusMeters {
		score, err := r.completeCurrentHole()
		if err != nil {
			return nil, err
		}
		outcome.HoleCompleted = true
		outcome.HoleScore = score
	}

	outcome.State = r.state
	outcome.CurrentHole = r.currentHole
	return outcome, nil
}

// CompleteHole finalizes the current hole without requiring a shot at the
// pin, for players who pick up the ball. The hole's score is the number of
// shots taken on it.
func (r *Round) CompleteHole() (Lifecycle, error) {
	if r.state.Terminal() {
		return r.state, fmt.Errorf("%w: round %s is %s", ErrRoundClosed, r.id, r.state)
	}
	if _, err := r.completeCurrentHole(); err != nil {
		return r.state, err
	}
	return r.state, nil
}

// completeCurrentHole records the hole's score and either finishes the round
// or advances to the next ascending hole reference.
func (r *Round) completeCurrentHole() (int, error) {
	score := len(r.shots[r.currentHole])
	r.scores[r.currentHole] = score
	r.state = StateHoleComplete

	if r.currentHole == r.course.LastHole() {
		r.state = StateRoundComplete
		return score, nil
	}

	next, ok := r.course.NextHole(r.currentHole)
	if !ok {
		return score, fmt.Errorf("%w: no hole after %d on course %q", ErrCourseExhausted, r.currentHole, r.course.Name())
	}
	r.currentHole = next
	r.lastPos = nil
	r.state = StateInProgress
	return score, nil
}

// Abandon moves the round to the Abandoned terminal state. Abandoning an
// already abandoned round is a no-op; a completed round cannot be abandoned.
func (r *Round) Abandon() error {
	if r.state == StateAbandoned {
		return nil
	}
	if r.state == StateRoundComplete {
		return fmt.Errorf("%w: round %s already completed", ErrRoundClosed, r.id)
	}
	r.state = StateAbandoned
	return nil
}

// Snapshot returns a deep copy of the round's observable state.
func (r *Round) Snapshot() Snapshot {
	scores := make(map[int]int, len(r.scores))
	totalScore := 0
	for n, s := range r.scores {
		scores[n] = s
		totalScore += s
	}

	counts := make(map[int]int, len(r.shots))
	totalShots := 0
	for n, shots := range r.shots {
		counts[n] = len(shots)
		totalShots += len(shots)
	}

	hazards := make([]string, 0, len(r.hazards))
	for id := range r.hazards {
		hazards = append(hazards, id)
	}
	sort.Strings(hazards)

	var lastPos *geo.Coordinate
	if r.lastPos != nil {
		pos := *r.lastPos
		lastPos = &pos
	}

	return Snapshot{
		ID:           r.id,
		PlayerID:     r.playerID,
		CourseName:   r.course.Name(),
		State:        r.state,
		CurrentHole:  r.currentHole,
		Scores:       scores,
		ShotCounts:   counts,
		Hazards:      hazards,
		TotalScore:   totalScore,
		TotalShots:   totalShots,
		LastPosition: lastPos,
		Weather:      r.weather,
		CreatedAt:    r.createdAt,
	}
}

// HoleShots returns a copy of the shot list for a hole.
func (r *Round) HoleShots(number int) []Shot {
	shots := r.shots[number]
	out := make([]Shot, len(shots))
	copy(out, shots)
	return out
}

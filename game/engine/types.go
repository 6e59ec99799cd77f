package engine

import (
	"encoding/json"
	"time"

	"github.com/fairwaylabs/caddie/game/geo"
)

// Lifecycle is the state of a round's state machine.
type Lifecycle string

const (
	StateCreated       Lifecycle = "created"
	StateInProgress    Lifecycle = "in_progress"
	StateHoleComplete  Lifecycle = "hole_complete"
	StateRoundComplete Lifecycle = "round_complete"
	StateAbandoned     Lifecycle = "abandoned"
)

// HoledRadiusMeters is how close to the pin a shot must land to complete the
// current hole.
const HoledRadiusMeters = 3.0

// Terminal reports whether the lifecycle state accepts no further mutation.
func (l Lifecycle) Terminal() bool {
	return l == StateRoundComplete || l == StateAbandoned
}

// Shot is a single logged stroke. Never mutated after it is appended to a
// hole's shot list.
type Shot struct {
	Coordinate     geo.Coordinate `json:"coordinate"`
	Club           string         `json:"club"`
	Timestamp      time.Time      `json:"timestamp"`
	DistanceMeters float64        `json:"distance_meters"`
	Hazards        []string       `json:"hazards,omitempty"`
}

// ShotOutcome is what LogShot reports back to the caller.
type ShotOutcome struct {
	Shot          Shot      `json:"shot"`
	State         Lifecycle `json:"state"`
	HoleNumber    int       `json:"hole_number"`
	HoleCompleted bool      `json:"hole_completed"`
	HoleScore     int       `json:"hole_score,omitempty"`
	CurrentHole   int       `json:"current_hole"`
}

// Snapshot is an immutable copy of round state. It shares no mutable
// structures with the live round, so it stays safe to read after the round's
// lock is released.
type Snapshot struct {
	ID           string          `json:"id"`
	PlayerID     string          `json:"player_id"`
	CourseName   string          `json:"course_name"`
	State        Lifecycle       `json:"state"`
	CurrentHole  int             `json:"current_hole"`
	Scores       map[int]int     `json:"scores"`
	ShotCounts   map[int]int     `json:"shot_counts"`
	Hazards      []string        `json:"hazards_encountered"`
	TotalScore   int             `json:"total_score"`
	TotalShots   int             `json:"total_shots"`
	LastPosition *geo.Coordinate `json:"last_position,omitempty"`
	Weather      json.RawMessage `json:"weather,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

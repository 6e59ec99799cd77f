package service

import (
	"time"

	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/fairwaylabs/caddie/game/geo"
)

// RoundInfo is a round snapshot plus course context.
type RoundInfo struct {
	Round      engine.Snapshot `json:"round"`
	CourseID   string          `json:"course_id"`
	HolesTotal int             `json:"holes_total"`
	TotalPar   int             `json:"total_par"`
}

// ShotRequest carries one stroke to log.
type ShotRequest struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Club string  `json:"club"`
}

// ShotResult contains the outcome of a logged shot.
type ShotResult struct {
	Shot           engine.Shot      `json:"shot"`
	State          engine.Lifecycle `json:"state"`
	HoleNumber     int              `json:"hole_number"`
	HoleCompleted  bool             `json:"hole_completed"`
	HoleScore      int              `json:"hole_score,omitempty"`
	CurrentHole    int              `json:"current_hole"`
	RoundComplete  bool             `json:"round_complete"`
	Round          engine.Snapshot  `json:"round"`
	Events         []RoundEvent     `json:"events,omitempty"`
}

// RoundEvent describes something that happened while processing an operation.
type RoundEvent struct {
	Type      string    `json:"type"` // "shot", "hazard", "hole_complete", "round_complete", "abandoned"
	Message   string    `json:"message"`
	Hole      int       `json:"hole,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CourseInfo summarizes an available course.
type CourseInfo struct {
	Filename string `json:"filename"`
	CourseID string `json:"course_id"` // The identifier to use for round creation
	Name     string `json:"name"`      // Display name
	Holes    int    `json:"holes"`
	TotalPar int    `json:"total_par"`
}

// CourseDetail describes a course hole by hole.
type CourseDetail struct {
	CourseID string     `json:"course_id"`
	Name     string     `json:"name"`
	Holes    []HoleInfo `json:"holes"`
	TotalPar int        `json:"total_par"`
}

// HoleInfo describes one hole of a course.
type HoleInfo struct {
	Number  int            `json:"number"`
	Par     int            `json:"par"`
	Tee     geo.Coordinate `json:"tee"`
	Pin     geo.Coordinate `json:"pin"`
	Hazards []HazardInfo   `json:"hazards,omitempty"`
}

// HazardInfo identifies a hazard on a hole.
type HazardInfo struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

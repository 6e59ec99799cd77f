// Package course models an immutable golf course: ordered holes with tee and
// pin coordinates, par values, and the hazard regions that belong to each
// hole. A Course is built once from already-deserialized hole records and is
// shared read-only by every round played on it.
package course

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fairwaylabs/caddie/game/geo"
)

var (
	ErrDuplicateHole = errors.New("duplicate hole reference")
	ErrInvalidHole   = errors.New("invalid hole record")
)

// DefaultPar is applied when a hole record carries no par. Legacy course data
// frequently omits it.
const DefaultPar = 4

// HazardKind classifies a hazard region.
type HazardKind string

const (
	HazardWater       HazardKind = "water"
	HazardSand        HazardKind = "sand"
	HazardRough       HazardKind = "rough"
	HazardOutOfBounds HazardKind = "out_of_bounds"
)

// ValidHazardKind reports whether the kind is one of the known classifications.
func ValidHazardKind(kind HazardKind) bool {
	switch kind {
	case HazardWater, HazardSand, HazardRough, HazardOutOfBounds:
		return true
	}
	return false
}

// Hazard is a named region on a hole whose entry is recorded against a round.
type Hazard struct {
	ID     string     `json:"id"`
	Kind   HazardKind `json:"kind"`
	Region geo.Region `json:"region"`
}

// Hole is a fixed segment of a course. Immutable after Build.
type Hole struct {
	Number  int            `json:"number"`
	Par     int            `json:"par"`
	Tee     geo.Coordinate `json:"tee"`
	Pin     geo.Coordinate `json:"pin"`
	Hazards []Hazard       `json:"hazards"`
}

// HoleRecord is the deserialized description of one hole as supplied by the
// data-ingestion layer. Par <= 0 means "not specified". Path is the hole's
// centerline; the tee and pin are its first and last points.
type HoleRecord struct {
	Number  int
	Par     int
	Path    []geo.Coordinate
	Hazards []Hazard
}

// Course is an immutable mapping from hole number to hole, shared by
// reference across all concurrent rounds. It is never mutated after Build,
// so it needs no locking.
type Course struct {
	name  string
	holes map[int]*Hole
	order []int
}

// Build constructs a Course from hole records. Any malformed record aborts
// construction; a partially built course is never returned.
func Build(name string, records []HoleRecord) (*Course, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: course name is required", ErrInvalidHole)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: course %q has no holes", ErrInvalidHole, name)
	}

	holes := make(map[int]*Hole, len(records))
	order := make([]int, 0, len(records))

	for _, rec := range records {
		if rec.Number <= 0 {
			return nil, fmt.Errorf("%w: hole reference must be a positive integer, got %d", ErrInvalidHole, rec.Number)
		}
		if _, exists := holes[rec.Number]; exists {
			return nil, fmt.Errorf("%w: hole %d defined twice in course %q", ErrDuplicateHole, rec.Number, name)
		}
		if len(rec.Path) < 2 {
			return nil, fmt.Errorf("%w: hole %d needs a path with at least tee and pin points", ErrInvalidHole, rec.Number)
		}
		for _, p := range rec.Path {
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("hole %d: %w", rec.Number, err)
			}
		}

		par := rec.Par
		if par <= 0 {
			par = DefaultPar
		}

		hazards := make([]Hazard, len(rec.Hazards))
		for i, hz := range rec.Hazards {
			if hz.ID == "" {
				return nil, fmt.Errorf("%w: hole %d has a hazard without an id", ErrInvalidHole, rec.Number)
			}
			if !ValidHazardKind(hz.Kind) {
				return nil, fmt.Errorf("%w: hole %d hazard %q has unknown kind %q", ErrInvalidHole, rec.Number, hz.ID, hz.Kind)
			}
			hazards[i] = hz
		}

		holes[rec.Number] = &Hole{
			Number:  rec.Number,
			Par:     par,
			Tee:     rec.Path[0],
			Pin:     rec.Path[len(rec.Path)-1],
			Hazards: hazards,
		}
		order = append(order, rec.Number)
	}

	sort.Ints(order)

	return &Course{name: name, holes: holes, order: order}, nil
}

// Name returns the course name.
func (c *Course) Name() string {
	return c.name
}

// NumHoles returns the number of holes on the course.
func (c *Course) NumHoles() int {
	return len(c.order)
}

// Hole returns the hole with the given reference number.
func (c *Course) Hole(number int) (*Hole, bool) {
	h, ok := c.holes[number]
	return h, ok
}

// FirstHole returns the lowest hole reference on the course.
func (c *Course) FirstHole() int {
	return c.order[0]
}

// LastHole returns the highest hole reference on the course.
func (c *Course) LastHole() int {
	return c.order[len(c.order)-1]
}

// NextHole returns the next hole reference in ascending order after the
// given one, or false when it was the last.
func (c *Course) NextHole(after int) (int, bool) {
	for _, n := range c.order {
		if n > after {
			return n, true
		}
	}
	return 0, false
}

// HoleNumbers returns the hole references in ascending order.
func (c *Course) HoleNumbers() []int {
	out := make([]int, len(c.order))
	copy(out, c.order)
	return out
}

// TotalPar returns the sum of par across all holes.
func (c *Course) TotalPar() int {
	total := 0
	for _, n := range c.order {
		total += c.holes[n].Par
	}
	return total
}

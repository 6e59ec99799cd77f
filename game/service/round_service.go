// Package service exposes round and course operations to transports as a
// single facade. Result structs are plain data, safe to hand straight to a
// JSON encoder.
package service

import (
	"context"
	"encoding/json"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/engine"
)

// RoundService defines all round-related operations.
type RoundService interface {
	// Round lifecycle
	CreateRound(ctx context.Context, playerID, courseID string, weather json.RawMessage) (*RoundInfo, error)
	GetRound(ctx context.Context, playerID string) (*RoundInfo, error)
	ListRounds(ctx context.Context) ([]*RoundInfo, error)
	RemoveRound(ctx context.Context, playerID string) error

	// In-round operations
	LogShot(ctx context.Context, playerID string, req ShotRequest) (*ShotResult, error)
	CompleteHole(ctx context.Context, playerID string) (*RoundInfo, error)
	AbandonRound(ctx context.Context, playerID string) (*RoundInfo, error)

	// Courses
	ListCourses(ctx context.Context) ([]*CourseInfo, error)
	GetCourse(ctx context.Context, courseID string) (*CourseDetail, error)
}

// RoundRegistry defines the session registry operations the service needs.
type RoundRegistry interface {
	CreateRound(playerID string, c *course.Course, weather json.RawMessage) (engine.Snapshot, error)
	WithRound(playerID string, fn func(*engine.Round) error) error
	Snapshot(playerID string) (engine.Snapshot, error)
	RemoveRound(playerID string) error
	List() []engine.Snapshot
}

// CourseCatalog handles course loading.
type CourseCatalog interface {
	LoadCourse(courseID string) (*course.Course, error)
	ListCourses() ([]*CourseInfo, error)
	GetDefault() *course.Course
}

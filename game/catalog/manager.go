// Package catalog loads course descriptions from GeoJSON files and serves
// the immutable course model built from them. Loaded courses are cached and
// shared by reference across every round played on them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/service"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidCourse  = errors.New("invalid course file")
)

// Manager handles course loading and caching. The course ID is the file's
// base name without the .json extension; the GeoJSON "name" field is only a
// display name.
type Manager struct {
	courseDir     string
	defaultCourse *course.Course
	courses       map[string]*course.Course
	displayNames  map[string]string
	mu            sync.RWMutex
}

// NewManager creates a course catalog over the given directory and loads a
// default course from it.
func NewManager(courseDir string) (*Manager, error) {
	if _, err := os.Stat(courseDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("course directory does not exist: %s", courseDir)
	}

	m := &Manager{
		courseDir:    courseDir,
		courses:      make(map[string]*course.Course),
		displayNames: make(map[string]string),
	}

	if err := m.loadDefaultCourse(); err != nil {
		return nil, fmt.Errorf("failed to load default course: %w", err)
	}

	return m, nil
}

// LoadCourse loads a course by ID, from cache when possible.
func (m *Manager) LoadCourse(courseID string) (*course.Course, error) {
	m.mu.RLock()
	if c, exists := m.courses[courseID]; exists {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if c, exists := m.courses[courseID]; exists {
		return c, nil
	}

	filename := courseID
	if !strings.HasSuffix(filename, ".json") {
		filename = courseID + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.courseDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, courseID)
		}
		return nil, fmt.Errorf("failed to read course file: %w", err)
	}

	displayName, records, err := DecodeCourse(data)
	if err != nil {
		return nil, err
	}

	c, err := course.Build(courseID, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}

	m.courses[courseID] = c
	m.displayNames[courseID] = displayName
	return c, nil
}

// ListCourses returns information about all available courses.
func (m *Manager) ListCourses() ([]*service.CourseInfo, error) {
	entries, err := os.ReadDir(m.courseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read course directory: %w", err)
	}

	var courses []*service.CourseInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		courseID := strings.TrimSuffix(entry.Name(), ".json")
		c, err := m.LoadCourse(courseID)
		if err != nil {
			// Skip unreadable courses rather than failing the listing.
			continue
		}

		m.mu.RLock()
		displayName := m.displayNames[courseID]
		m.mu.RUnlock()
		if displayName == "" {
			displayName = courseID
		}

		courses = append(courses, &service.CourseInfo{
			Filename: entry.Name(),
			CourseID: courseID,
			Name:     displayName,
			Holes:    c.NumHoles(),
			TotalPar: c.TotalPar(),
		})
	}

	return courses, nil
}

// GetDefault returns the default course.
func (m *Manager) GetDefault() *course.Course {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultCourse
}

// SetDefault sets the default course by ID.
func (m *Manager) SetDefault(courseID string) error {
	c, err := m.LoadCourse(courseID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultCourse = c
	return nil
}

// RefreshCache drops all cached courses and reloads the default.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.courses = make(map[string]*course.Course)
	m.displayNames = make(map[string]string)
	m.mu.Unlock()

	return m.loadDefaultCourse()
}

// loadDefaultCourse picks the first available course as the default.
func (m *Manager) loadDefaultCourse() error {
	courses, err := m.ListCourses()
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		return fmt.Errorf("%w: no course files in %s", ErrCourseNotFound, m.courseDir)
	}

	c, err := m.LoadCourse(courses[0].CourseID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultCourse = c
	m.mu.Unlock()
	return nil
}

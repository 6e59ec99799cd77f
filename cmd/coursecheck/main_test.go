package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodCourse = `{
  "name": "Test Links",
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"kind": "hole", "ref": 1, "par": 4},
      "geometry": {"type": "LineString", "coordinates": [[-122.3321, 47.6062], [-122.3300, 47.6070]]}
    },
    {
      "type": "Feature",
      "properties": {"kind": "hole", "ref": 2, "par": 3},
      "geometry": {"type": "LineString", "coordinates": [[-122.3300, 47.6070], [-122.3290, 47.6080]]}
    },
    {
      "type": "Feature",
      "properties": {"kind": "hazard", "id": "pond-1", "hole": 1, "hazard": "water"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [-122.3316, 47.6063], [-122.3312, 47.6063], [-122.3312, 47.6066],
        [-122.3316, 47.6066], [-122.3316, 47.6063]
      ]]}
    }
  ]
}`

func writeCourse(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write course file: %v", err)
	}
	return path
}

func TestValidateCourse_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeCourse(t, dir, "test-links.json", goodCourse)

	result := validateCourse(path)
	if !result.Valid {
		t.Fatalf("Expected valid course, got notes: %v", result.Notes)
	}

	joined := strings.Join(result.Notes, "\n")
	if !strings.Contains(joined, "Test Links") {
		t.Errorf("Expected display name in notes, got: %v", result.Notes)
	}
	if !strings.Contains(joined, "Holes: 2") {
		t.Errorf("Expected hole count in notes, got: %v", result.Notes)
	}
	if !strings.Contains(joined, "Total par: 7") {
		t.Errorf("Expected total par in notes, got: %v", result.Notes)
	}
}

func TestValidateCourse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "broken json",
			content: `{nope`,
			want:    "Failed to decode",
		},
		{
			name: "duplicate hole ref",
			content: `{
				"name": "dup", "type": "FeatureCollection",
				"features": [
					{"type": "Feature", "properties": {"kind": "hole", "ref": 1},
					 "geometry": {"type": "LineString", "coordinates": [[-122.33, 47.60], [-122.32, 47.61]]}},
					{"type": "Feature", "properties": {"kind": "hole", "ref": 1},
					 "geometry": {"type": "LineString", "coordinates": [[-122.32, 47.61], [-122.31, 47.62]]}}
				]}`,
			want: "Invalid course",
		},
		{
			name: "coordinate out of range",
			content: `{
				"name": "bad", "type": "FeatureCollection",
				"features": [
					{"type": "Feature", "properties": {"kind": "hole", "ref": 1},
					 "geometry": {"type": "LineString", "coordinates": [[-122.33, 95.0], [-122.32, 47.61]]}}
				]}`,
			want: "Invalid course",
		},
		{
			name: "bad hazard kind",
			content: `{
				"name": "bad", "type": "FeatureCollection",
				"features": [
					{"type": "Feature", "properties": {"kind": "hole", "ref": 1},
					 "geometry": {"type": "LineString", "coordinates": [[-122.33, 47.60], [-122.32, 47.61]]}},
					{"type": "Feature", "properties": {"kind": "hazard", "id": "hz", "hole": 1, "hazard": "lava"},
					 "geometry": {"type": "Point", "coordinates": [-122.33, 47.60]}}
				]}`,
			want: "Invalid course",
		},
		{
			name: "hole with single point path",
			content: `{
				"name": "bad", "type": "FeatureCollection",
				"features": [
					{"type": "Feature", "properties": {"kind": "hole", "ref": 1},
					 "geometry": {"type": "LineString", "coordinates": [[-122.33, 47.60]]}}
				]}`,
			want: "Invalid course",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeCourse(t, dir, "bad.json", tt.content)

			result := validateCourse(path)
			if result.Valid {
				t.Fatal("Expected invalid course")
			}
			joined := strings.Join(result.Notes, "\n")
			if !strings.Contains(joined, tt.want) {
				t.Errorf("Expected note containing %q, got: %v", tt.want, result.Notes)
			}
		})
	}
}

func TestValidateCourse_LengthWarning(t *testing.T) {
	// A 150m par 5 is legal but implausible.
	shortParFive := `{
		"name": "short", "type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"kind": "hole", "ref": 1, "par": 5},
			 "geometry": {"type": "LineString", "coordinates": [[-122.3321, 47.6062], [-122.3310, 47.6070]]}}
		]}`
	dir := t.TempDir()
	path := writeCourse(t, dir, "short.json", shortParFive)

	result := validateCourse(path)
	if !result.Valid {
		t.Fatalf("Expected valid course with warning, got: %v", result.Notes)
	}

	var warned bool
	for _, note := range result.Notes {
		if strings.Contains(note, "Warning") && strings.Contains(note, "par 5") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Expected a length warning, got: %v", result.Notes)
	}
}

func TestValidateDir(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		dir := t.TempDir()
		writeCourse(t, dir, "a.json", goodCourse)
		writeCourse(t, dir, "b.json", goodCourse)

		allValid, err := validateDir(dir)
		if err != nil {
			t.Fatalf("validateDir failed: %v", err)
		}
		if !allValid {
			t.Error("Expected all courses valid")
		}
	})

	t.Run("one invalid", func(t *testing.T) {
		dir := t.TempDir()
		writeCourse(t, dir, "a.json", goodCourse)
		writeCourse(t, dir, "b.json", `{nope`)

		allValid, err := validateDir(dir)
		if err != nil {
			t.Fatalf("validateDir failed: %v", err)
		}
		if allValid {
			t.Error("Expected validation failure")
		}
	})

	t.Run("empty dir", func(t *testing.T) {
		if _, err := validateDir(t.TempDir()); err == nil {
			t.Error("Expected error for directory without courses")
		}
	})
}

func TestDescribeCourse(t *testing.T) {
	dir := t.TempDir()
	writeCourse(t, dir, "test-links.json", goodCourse)

	if err := describeCourse(dir, "test-links"); err != nil {
		t.Fatalf("describeCourse failed: %v", err)
	}

	if err := describeCourse(dir, "missing"); err == nil {
		t.Error("Expected error for unknown course")
	}
}

package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/fairwaylabs/caddie/game/course"
	"github.com/fairwaylabs/caddie/game/geo"
)

// courseFile is the on-disk shape of a course: a GeoJSON FeatureCollection
// with a display name. Hole features are LineStrings carrying ref/par
// properties; hazard features are Polygons, LineStrings, or Points carrying
// id, hole, and hazard-kind properties.
type courseFile struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Properties featureProperties `json:"properties"`
	Geometry   featureGeometry   `json:"geometry"`
}

type featureProperties struct {
	Kind   string `json:"kind"` // "hole" or "hazard"
	Ref    int    `json:"ref,omitempty"`
	Par    int    `json:"par,omitempty"`
	ID     string `json:"id,omitempty"`
	Hole   int    `json:"hole,omitempty"`
	Hazard string `json:"hazard,omitempty"`
}

// featureGeometry defers coordinate decoding: the nesting depth depends on
// the geometry type.
type featureGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// DecodeCourse parses raw course GeoJSON into hole records ready for
// course.Build, plus the display name. Hazards are associated to holes by
// their "hole" property; referencing a missing hole is a decode error.
func DecodeCourse(data []byte) (displayName string, records []course.HoleRecord, err error) {
	var file courseFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", nil, fmt.Errorf("failed to parse course file: %w", err)
	}
	if file.Type != "FeatureCollection" {
		return "", nil, fmt.Errorf("%w: expected a FeatureCollection, got %q", ErrInvalidCourse, file.Type)
	}

	byRef := make(map[int]*course.HoleRecord)
	var order []int

	// First pass: hole centerlines.
	for _, f := range file.Features {
		if f.Properties.Kind != "hole" {
			continue
		}
		if f.Geometry.Type != "LineString" {
			return "", nil, fmt.Errorf("%w: hole %d geometry must be a LineString, got %q", ErrInvalidCourse, f.Properties.Ref, f.Geometry.Type)
		}
		path, err := decodeLine(f.Geometry.Coordinates)
		if err != nil {
			return "", nil, fmt.Errorf("hole %d: %w", f.Properties.Ref, err)
		}
		ref := f.Properties.Ref
		if _, dup := byRef[ref]; dup {
			// Leave the duplicate for course.Build to reject so every
			// caller sees the same error.
			records = append(records, course.HoleRecord{Number: ref, Par: f.Properties.Par, Path: path})
			continue
		}
		byRef[ref] = &course.HoleRecord{Number: ref, Par: f.Properties.Par, Path: path}
		order = append(order, ref)
	}

	// Second pass: hazards attach to their hole.
	for _, f := range file.Features {
		if f.Properties.Kind != "hazard" {
			continue
		}
		rec, ok := byRef[f.Properties.Hole]
		if !ok {
			return "", nil, fmt.Errorf("%w: hazard %q references missing hole %d", ErrInvalidCourse, f.Properties.ID, f.Properties.Hole)
		}
		region, err := decodeRegion(f.Geometry)
		if err != nil {
			return "", nil, fmt.Errorf("hazard %q: %w", f.Properties.ID, err)
		}
		rec.Hazards = append(rec.Hazards, course.Hazard{
			ID:     f.Properties.ID,
			Kind:   course.HazardKind(f.Properties.Hazard),
			Region: region,
		})
	}

	for _, ref := range order {
		records = append(records, *byRef[ref])
	}
	return file.Name, records, nil
}

// decodeRegion converts a GeoJSON geometry into a hazard region.
func decodeRegion(g featureGeometry) (geo.Region, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return geo.Region{}, fmt.Errorf("failed to parse polygon coordinates: %w", err)
		}
		if len(rings) == 0 {
			return geo.Region{}, fmt.Errorf("%w: polygon has no rings", ErrInvalidCourse)
		}
		// Interior rings (holes in the polygon) are not supported; the
		// exterior ring defines the hazard.
		return geo.NewPolygon(toCoordinates(rings[0]))
	case "LineString":
		path, err := decodeLine(g.Coordinates)
		if err != nil {
			return geo.Region{}, err
		}
		return geo.NewLine(path)
	case "Point":
		var pos [2]float64
		if err := json.Unmarshal(g.Coordinates, &pos); err != nil {
			return geo.Region{}, fmt.Errorf("failed to parse point coordinates: %w", err)
		}
		return geo.NewPoint(geo.Coordinate{Lat: pos[1], Lon: pos[0]})
	default:
		return geo.Region{}, fmt.Errorf("%w: unsupported hazard geometry %q", ErrInvalidCourse, g.Type)
	}
}

func decodeLine(raw json.RawMessage) ([]geo.Coordinate, error) {
	var positions [][2]float64
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("failed to parse line coordinates: %w", err)
	}
	return toCoordinates(positions), nil
}

// toCoordinates converts GeoJSON [lon, lat] positions.
func toCoordinates(positions [][2]float64) []geo.Coordinate {
	coords := make([]geo.Coordinate, len(positions))
	for i, pos := range positions {
		coords[i] = geo.Coordinate{Lat: pos[1], Lon: pos[0]}
	}
	return coords
}

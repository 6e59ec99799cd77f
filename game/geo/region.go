package geo

import (
	"fmt"
	"math"
)

// GeometryType identifies how a region's points are interpreted.
type GeometryType string

const (
	GeometryPolygon GeometryType = "polygon"
	GeometryLine    GeometryType = "line"
	GeometryPoint   GeometryType = "point"
)

// Region is a geographic area used for hazard membership tests. A polygon
// region is a closed ring of vertices; line and point regions match anything
// within BufferMeters of the geometry.
type Region struct {
	Type   GeometryType `json:"type"`
	Points []Coordinate `json:"points"`
}

// NewPolygon builds a polygon region from a ring of vertices. The ring does
// not need an explicit closing point.
func NewPolygon(ring []Coordinate) (Region, error) {
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Region{}, fmt.Errorf("%w: polygon needs at least 3 distinct vertices, got %d", ErrInvalidCoordinate, len(ring))
	}
	for _, p := range ring {
		if err := p.Validate(); err != nil {
			return Region{}, err
		}
	}
	return Region{Type: GeometryPolygon, Points: ring}, nil
}

// NewLine builds a buffered line region from an ordered sequence of vertices.
func NewLine(path []Coordinate) (Region, error) {
	if len(path) < 2 {
		return Region{}, fmt.Errorf("%w: line needs at least 2 vertices, got %d", ErrInvalidCoordinate, len(path))
	}
	for _, p := range path {
		if err := p.Validate(); err != nil {
			return Region{}, err
		}
	}
	return Region{Type: GeometryLine, Points: path}, nil
}

// NewPoint builds a buffered point region.
func NewPoint(center Coordinate) (Region, error) {
	if err := center.Validate(); err != nil {
		return Region{}, err
	}
	return Region{Type: GeometryPoint, Points: []Coordinate{center}}, nil
}

// Contains reports whether the point is inside the region. Boundary points
// count as inside so that hazard detection errs toward flagging.
func (r Region) Contains(p Coordinate) bool {
	switch r.Type {
	case GeometryPolygon:
		return polygonContains(r.Points, p)
	case GeometryLine:
		return pathDistanceMeters(r.Points, p) <= BufferMeters
	case GeometryPoint:
		if len(r.Points) == 0 {
			return false
		}
		d, err := Distance(r.Points[0], p)
		return err == nil && d <= BufferMeters
	default:
		return false
	}
}

// polygonContains runs a standard ray-casting crossing test with an explicit
// on-edge check first, making the boundary inclusive.
func polygonContains(ring []Coordinate, p Coordinate) bool {
	if len(ring) < 3 {
		return false
	}

	for i := range ring {
		j := (i + 1) % len(ring)
		if segmentDistanceMeters(ring[i], ring[j], p) <= boundaryEpsilonMeters {
			return true
		}
	}

	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			crossLon := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if p.Lon < crossLon {
				inside = !inside
			}
		}
	}
	return inside
}

// boundaryEpsilonMeters decides how close to an edge still counts as "on" it.
const boundaryEpsilonMeters = 0.05

// pathDistanceMeters returns the minimum distance from p to any segment of
// the path.
func pathDistanceMeters(path []Coordinate, p Coordinate) float64 {
	min := math.MaxFloat64
	for i := 0; i+1 < len(path); i++ {
		if d := segmentDistanceMeters(path[i], path[i+1], p); d < min {
			min = d
		}
	}
	return min
}

// segmentDistanceMeters projects the three points onto a local flat plane
// around p and measures point-to-segment distance. The approximation is fine
// at course scale (hundreds of meters).
func segmentDistanceMeters(a, b, p Coordinate) float64 {
	cosLat := math.Cos(p.Lat * math.Pi / 180)
	metersPerDegLat := math.Pi * EarthRadiusMeters / 180

	ax := (a.Lon - p.Lon) * cosLat * metersPerDegLat
	ay := (a.Lat - p.Lat) * metersPerDegLat
	bx := (b.Lon - p.Lon) * cosLat * metersPerDegLat
	by := (b.Lat - p.Lat) * metersPerDegLat

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}

	// Clamp the projection of p (origin) onto segment a->b.
	t := -(ax*dx + ay*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(ax+t*dx, ay+t*dy)
}

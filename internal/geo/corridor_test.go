package geo

import (
	"math"
	"testing"
)

func TestBearingCardinalDirections(t *testing.T) {
	origin := Point{Lat: 0, Lng: 0}

	cases := []struct {
		name string
		to   Point
		want float64
	}{
		{"north", Point{Lat: 1, Lng: 0}, 0},
		{"east", Point{Lat: 0, Lng: 1}, 90},
		{"south", Point{Lat: -1, Lng: 0}, 180},
		{"west", Point{Lat: 0, Lng: -1}, 270},
	}
	for _, c := range cases {
		if got := Bearing(origin, c.to); math.Abs(got-c.want) > 0.01 {
			t.Errorf("%s: bearing = %f, want %f", c.name, got, c.want)
		}
	}
}

func TestDestinationDistanceRoundTrip(t *testing.T) {
	p := Point{Lat: -1.2921, Lng: 36.8219} // Nairobi
	dest := Destination(p, 45, 500)

	if d := Distance(p, dest); math.Abs(d-500) > 0.5 {
		t.Fatalf("distance to destination = %f, want ~500", d)
	}
}

func TestBuildCorridorTwoPointPath(t *testing.T) {
	const tolerance = 100.0
	path := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.01}, // due east along the equator
	}

	corridor := BuildCorridor(path, tolerance)
	if len(corridor) != 2 {
		t.Fatalf("corridor has %d points, want 2 (one left, one right)", len(corridor))
	}

	left, right := corridor[0], corridor[1]

	// Both offsets sit at the tolerance distance from the segment start.
	if d := Distance(path[0], left); math.Abs(d-tolerance) > 0.1 {
		t.Errorf("left offset distance = %f, want ~%f", d, tolerance)
	}
	if d := Distance(path[0], right); math.Abs(d-tolerance) > 0.1 {
		t.Errorf("right offset distance = %f, want ~%f", d, tolerance)
	}

	// Heading east, left of track is north and right is south.
	if left.Lat <= 0 {
		t.Errorf("left offset latitude = %f, want > 0", left.Lat)
	}
	if right.Lat >= 0 {
		t.Errorf("right offset latitude = %f, want < 0", right.Lat)
	}
}

func TestBuildCorridorShortPathIsEmpty(t *testing.T) {
	if got := BuildCorridor(nil, 100); len(got) != 0 {
		t.Fatalf("nil path corridor = %v, want empty", got)
	}
	if got := BuildCorridor([]Point{{Lat: 1, Lng: 1}}, 100); len(got) != 0 {
		t.Fatalf("single-point corridor = %v, want empty", got)
	}
}

func TestBuildCorridorSkipsFinalPathPoint(t *testing.T) {
	path := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.01},
		{Lat: 0.01, Lng: 0.01},
	}

	// Three points give two segments, so only the first two path points are
	// offset: four corridor points, none derived from the final point.
	corridor := BuildCorridor(path, 100)
	if len(corridor) != 4 {
		t.Fatalf("corridor has %d points, want 4", len(corridor))
	}
	last := path[len(path)-1]
	for i, p := range corridor {
		if Distance(p, last) < 150 {
			t.Errorf("corridor point %d is within offset range of the final path point", i)
		}
	}
}

func TestBuildCorridorDeterministic(t *testing.T) {
	path := []Point{
		{Lat: -1.29, Lng: 36.82},
		{Lat: -1.30, Lng: 36.83},
		{Lat: -1.31, Lng: 36.85},
	}

	a := BuildCorridor(path, 100)
	b := BuildCorridor(path, 100)
	if len(a) != len(b) {
		t.Fatalf("corridor lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("point %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCorridorPolygonClosesRing(t *testing.T) {
	corridor := BuildCorridor([]Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.01},
	}, 100)

	poly := CorridorPolygon(corridor)
	if poly.NumLinearRings() != 1 {
		t.Fatalf("polygon has %d rings, want 1", poly.NumLinearRings())
	}

	ring := poly.LinearRing(0).Coords()
	if len(ring) != len(corridor)+1 {
		t.Fatalf("ring has %d coords, want %d", len(ring), len(corridor)+1)
	}
	if ring[0][0] != ring[len(ring)-1][0] || ring[0][1] != ring[len(ring)-1][1] {
		t.Error("ring is not closed")
	}
}

func TestCorridorPolygonEmpty(t *testing.T) {
	poly := CorridorPolygon(nil)
	if poly.NumLinearRings() != 0 {
		t.Fatalf("empty corridor polygon has %d rings, want 0", poly.NumLinearRings())
	}
}

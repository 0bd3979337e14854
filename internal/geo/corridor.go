package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusMeters is the mean Earth radius used for all spherical math.
const EarthRadiusMeters = 6371000.0

// DefaultCorridorToleranceMeters is the allowed deviation either side of a
// planned route.
const DefaultCorridorToleranceMeters = 100.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteGeometry is the path a routing collaborator returned for a trip.
// Immutable once fetched for a given trip snapshot; never persisted.
type RouteGeometry struct {
	Path            []Point `json:"path"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Bearing returns the initial great-circle bearing from one point to the
// next, in degrees normalized to [0, 360).
func Bearing(from, to Point) float64 {
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)
	deltaLon := toRadians(to.Lng - from.Lng)

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	return math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
}

// Destination returns the point reached by travelling distanceMeters from p
// along the given initial bearing, using the spherical destination formula.
func Destination(p Point, bearingDeg, distanceMeters float64) Point {
	lat1 := toRadians(p.Lat)
	lon1 := toRadians(p.Lng)
	brng := toRadians(bearingDeg)
	angular := distanceMeters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Point{Lat: toDegrees(lat2), Lng: toDegrees(lon2)}
}

// Distance returns the haversine great-circle distance between two points in
// meters.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// BuildCorridor turns a route path into the bounding corridor used for
// deviation checks. For each segment it offsets the segment's start point
// toleranceMeters to the left and right of the segment bearing, appending
// left then right. The final path point is never offset: n points yield n-1
// segments and 2(n-1) corridor points. Deterministic and side-effect free.
// A path shorter than 2 points yields an empty corridor.
func BuildCorridor(path []Point, toleranceMeters float64) []Point {
	if len(path) < 2 {
		return nil
	}

	corridor := make([]Point, 0, 2*(len(path)-1))
	for i := 0; i < len(path)-1; i++ {
		bearing := Bearing(path[i], path[i+1])
		left := Destination(path[i], bearing-90, toleranceMeters)
		right := Destination(path[i], bearing+90, toleranceMeters)
		corridor = append(corridor, left, right)
	}
	return corridor
}

// CorridorPolygon wraps corridor points, in generation order, into a closed
// go-geom polygon for GeoJSON encoding. Self-intersection is not checked.
func CorridorPolygon(corridor []Point) *geom.Polygon {
	poly := geom.NewPolygon(geom.XY)
	if len(corridor) == 0 {
		return poly
	}

	ring := make([]geom.Coord, 0, len(corridor)+1)
	for _, p := range corridor {
		ring = append(ring, geom.Coord{p.Lng, p.Lat})
	}
	// Close the ring.
	ring = append(ring, geom.Coord{corridor[0].Lng, corridor[0].Lat})

	return poly.MustSetCoords([][]geom.Coord{ring})
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

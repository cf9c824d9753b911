package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const (
	// EarthRadius 地球半径 in meters, used by the haversine distance.
	EarthRadius = 6371000.0

	// KmPerDegLat kilometers covered by one degree of latitude.
	KmPerDegLat = 110.574

	// BoundsTolerance degrees of slack applied to containment checks so
	// viewport jitter does not trigger spurious refreshes.
	BoundsTolerance = 0.0005

	// MinAreaSqKm floor for bounds built around a point.
	MinAreaSqKm = 0.25
)

// GeoPoint 地理坐标点
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapBounds 地理范围, northeast/southwest corners.
type MapBounds struct {
	NorthEast GeoPoint `json:"northEast"`
	SouthWest GeoPoint `json:"southWest"`
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// kmPerDegreeLongitude shrinks with latitude; floored to avoid a division
// blow-up at the poles.
func kmPerDegreeLongitude(latitude float64) float64 {
	lat := math.Min(math.Max(latitude, -90), 90)
	return math.Max(0.0001, 111.32*math.Cos(degToRad(lat)))
}

// LonToTileX converts longitude to a slippy tile x index. The +180° edge is
// clamped to the last column instead of running one past it.
func LonToTileX(lon float64, zoom int) int {
	n := math.Pow(2, float64(zoom))
	x := int(math.Floor((lon + 180) / 360 * n))
	if x > int(n)-1 {
		x = int(n) - 1
	}
	return x
}

// LatToTileY converts latitude to a slippy tile y index. Latitude must stay
// inside the Mercator-valid range, the formula diverges near ±90°.
func LatToTileY(lat float64, zoom int) int {
	latRad := degToRad(lat)
	n := math.Pow(2, float64(zoom))
	return int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))
}

// TileForPoint returns the tile containing the point, constrained to the
// valid index range of the zoom level.
func TileForPoint(p GeoPoint, zoom int) maptile.Tile {
	maxIndex := int(math.Pow(2, float64(zoom))) - 1
	x := LonToTileX(p.Longitude, zoom)
	y := LatToTileY(p.Latitude, zoom)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if y > maxIndex {
		y = maxIndex
	}
	return maptile.Tile{X: uint32(x), Y: uint32(y), Z: maptile.Zoom(zoom)}
}

// BoundsAroundPoint builds a square box of roughly areaSqKm centered on p.
func BoundsAroundPoint(p GeoPoint, areaSqKm float64) MapBounds {
	safeArea := math.Max(areaSqKm, MinAreaSqKm)
	sideKm := math.Sqrt(safeArea)
	latPadding := sideKm / KmPerDegLat
	lonPadding := sideKm / kmPerDegreeLongitude(p.Latitude)

	return MapBounds{
		NorthEast: GeoPoint{
			Latitude:  p.Latitude + latPadding/2,
			Longitude: p.Longitude + lonPadding/2,
		},
		SouthWest: GeoPoint{
			Latitude:  p.Latitude - latPadding/2,
			Longitude: p.Longitude - lonPadding/2,
		},
	}
}

// Normalize swaps corners per axis so NorthEast ≥ SouthWest holds.
func (b MapBounds) Normalize() MapBounds {
	return MapBounds{
		NorthEast: GeoPoint{
			Latitude:  math.Max(b.NorthEast.Latitude, b.SouthWest.Latitude),
			Longitude: math.Max(b.NorthEast.Longitude, b.SouthWest.Longitude),
		},
		SouthWest: GeoPoint{
			Latitude:  math.Min(b.NorthEast.Latitude, b.SouthWest.Latitude),
			Longitude: math.Min(b.NorthEast.Longitude, b.SouthWest.Longitude),
		},
	}
}

// Center 中心点, arithmetic midpoint of the corners.
func (b MapBounds) Center() GeoPoint {
	return GeoPoint{
		Latitude:  (b.NorthEast.Latitude + b.SouthWest.Latitude) / 2,
		Longitude: (b.NorthEast.Longitude + b.SouthWest.Longitude) / 2,
	}
}

// Contains reports whether target fits inside b, relaxed by BoundsTolerance
// on every edge. Both boxes are normalized first.
func (b MapBounds) Contains(target MapBounds) bool {
	c := b.Normalize()
	t := target.Normalize()

	return c.NorthEast.Latitude+BoundsTolerance >= t.NorthEast.Latitude &&
		c.NorthEast.Longitude+BoundsTolerance >= t.NorthEast.Longitude &&
		c.SouthWest.Latitude-BoundsTolerance <= t.SouthWest.Latitude &&
		c.SouthWest.Longitude-BoundsTolerance <= t.SouthWest.Longitude
}

// Union returns the smallest normalized box covering both b and other.
func (b MapBounds) Union(other MapBounds) MapBounds {
	nb := b.Normalize()
	no := other.Normalize()
	return MapBounds{
		NorthEast: GeoPoint{
			Latitude:  math.Max(nb.NorthEast.Latitude, no.NorthEast.Latitude),
			Longitude: math.Max(nb.NorthEast.Longitude, no.NorthEast.Longitude),
		},
		SouthWest: GeoPoint{
			Latitude:  math.Min(nb.SouthWest.Latitude, no.SouthWest.Latitude),
			Longitude: math.Min(nb.SouthWest.Longitude, no.SouthWest.Longitude),
		},
	}
}

// boundsFromOrb converts an orb bound (lon/lat min-max) to MapBounds.
func boundsFromOrb(b orb.Bound) MapBounds {
	return MapBounds{
		NorthEast: GeoPoint{Latitude: b.Max[1], Longitude: b.Max[0]},
		SouthWest: GeoPoint{Latitude: b.Min[1], Longitude: b.Min[0]},
	}
}

// Haversine great-circle distance between two points in meters.
func Haversine(a, b GeoPoint) float64 {
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(a.Latitude))*math.Cos(degToRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

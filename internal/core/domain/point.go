package domain

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371008.8

// Point is a WGS84 coordinate. Longitude comes first, matching the order
// used on the wire.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewPoint creates a point from longitude and latitude.
func NewPoint(lon, lat float64) Point {
	return Point{Longitude: lon, Latitude: lat}
}

// Validate checks the coordinate ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, p.Longitude)
	}
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, p.Latitude)
	}
	return nil
}

// String formats the point as "lon,lat".
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Longitude, p.Latitude)
}

// DistanceTo returns the haversine distance in meters.
func (p Point) DistanceTo(other Point) float64 {
	lat1 := p.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (other.Longitude - p.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// BoundingBox is an axis-aligned area between two corners.
type BoundingBox struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// Validate checks both corners and their ordering.
func (b BoundingBox) Validate() error {
	if err := b.SouthWest.Validate(); err != nil {
		return err
	}
	if err := b.NorthEast.Validate(); err != nil {
		return err
	}
	if b.SouthWest.Latitude > b.NorthEast.Latitude {
		return fmt.Errorf("%w: bounding box south latitude is above north latitude", ErrInvalidInput)
	}
	return nil
}

// Contains reports whether p lies inside the box, edges included.
// Boxes crossing the antimeridian (west > east) are supported.
func (b BoundingBox) Contains(p Point) bool {
	if p.Latitude < b.SouthWest.Latitude || p.Latitude > b.NorthEast.Latitude {
		return false
	}
	if b.SouthWest.Longitude <= b.NorthEast.Longitude {
		return p.Longitude >= b.SouthWest.Longitude && p.Longitude <= b.NorthEast.Longitude
	}
	return p.Longitude >= b.SouthWest.Longitude || p.Longitude <= b.NorthEast.Longitude
}

// String formats the box as "minLon,minLat,maxLon,maxLat".
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g",
		b.SouthWest.Longitude, b.SouthWest.Latitude,
		b.NorthEast.Longitude, b.NorthEast.Latitude)
}

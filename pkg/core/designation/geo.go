package designation

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Lat float64
	Lng float64
}

// Validate rejects NaN and out-of-range coordinates
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: coordinates (%v, %v) are not finite", ErrInvalidInput, c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: coordinates (%v, %v) out of range", ErrInvalidInput, c.Lat, c.Lng)
	}
	return nil
}

// DistanceKm returns the great-circle distance between two points on a spherical earth
func DistanceKm(a, b Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// TravelPolicy holds the radii a referee may travel to a venue
type TravelPolicy struct {
	// DrivingRadiusKm applies when the referee travels with their own transport
	DrivingRadiusKm float64
	// WalkingRadiusKm applies to referees without transport
	WalkingRadiusKm float64
}

// IsTravelFeasible reports whether the venue is within reach of the referee's home
func (p TravelPolicy) IsTravelFeasible(home, venue Coordinates, hasTransport bool) bool {
	return p.withinReach(DistanceKm(home, venue), hasTransport)
}

func (p TravelPolicy) withinReach(distanceKm float64, hasTransport bool) bool {
	if hasTransport {
		return distanceKm <= p.DrivingRadiusKm
	}
	return distanceKm <= p.WalkingRadiusKm
}

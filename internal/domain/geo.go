package domain

import "math"

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points in kilometers.
func (g GeoPoint) DistanceKm(other GeoPoint) float64 {
	lat1 := g.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - g.Lat) * math.Pi / 180
	dLon := (other.Lon - g.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Location returns the post's geo point, or nil when the post carries no
// coordinates.
func (p *Post) Location() *GeoPoint {
	if p == nil || p.Lat == nil || p.Lon == nil {
		return nil
	}
	return &GeoPoint{Lat: *p.Lat, Lon: *p.Lon, City: p.City, Country: p.Country}
}

package geospatial

import "math"

const (
	earthRadiusMeters = 6371000.0
	metersPerDegree   = 111320.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	sinLat, sinLon := math.Sin(dLat/2), math.Sin(dLon/2)
	a := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BoundingBox returns a box that contains every point within radiusMeters of
// (lat, lon). Latitudes are clamped to the poles. When the box would reach a
// pole or cross the antimeridian the full longitude range is returned.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDegree
	minLat = math.Max(lat-latDelta, -90)
	maxLat = math.Min(lat+latDelta, 90)

	cos := math.Cos(toRad(lat))
	if minLat == -90 || maxLat == 90 || cos < 1e-9 {
		return minLat, -180, maxLat, 180
	}
	lonDelta := radiusMeters / (metersPerDegree * cos)
	minLon, maxLon = lon-lonDelta, lon+lonDelta
	if minLon < -180 || maxLon > 180 {
		return minLat, -180, maxLat, 180
	}
	return minLat, minLon, maxLat, maxLon
}

// PathLength sums the haversine distance between consecutive [lat, lon] pairs.
func PathLength(points [][2]float64) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		total += Haversine(prev[0], prev[1], cur[0], cur[1])
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

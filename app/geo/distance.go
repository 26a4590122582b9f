package geo

import "math"

// Point is a (lat, long) pair in degrees.
type Point struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Distance is the planar Euclidean distance between two points, in
// degrees. It treats lat/long as a flat grid and is only an approximation.
func Distance(p1, p2 Point) float64 {
	return math.Sqrt(SqEuclidean(p1, p2))
}

// SqEuclidean is Distance squared; enough for ordering.
func SqEuclidean(p1, p2 Point) float64 {
	dLat := p1.Lat - p2.Lat
	dLong := p1.Long - p2.Long
	return dLat*dLat + dLong*dLong
}

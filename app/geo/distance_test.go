package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	if got := Distance(Point{0, 0}, Point{3, 4}); got != 5.0 {
		t.Errorf("Expected 5.0, got %v", got)
	}
	if got := SqEuclidean(Point{0, 0}, Point{3, 4}); got != 25 {
		t.Errorf("Expected 25, got %v", got)
	}
	if got := Distance(Point{1, 1}, Point{1, 1}); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Point{Lat: 44.948, Long: -93.249}
	b := Point{Lat: 44.977, Long: -93.265}

	if math.Abs(Distance(a, b)-Distance(b, a)) > 1e-12 {
		t.Error("Expected symmetric distance")
	}
}

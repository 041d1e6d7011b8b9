package services

import (
	"math"
	"testing"
)

func TestLocationCheck(t *testing.T) {
	policy := LocationPolicy{
		Latitude:          6.5244,
		Longitude:         3.3792,
		MaxDistanceMeters: 100,
	}

	t.Run("at the office", func(t *testing.T) {
		result := policy.Check(6.5244, 3.3792)
		if !result.Allowed {
			t.Error("Check() at the office point should be allowed")
		}
		if result.DistanceMeters != 0 {
			t.Errorf("DistanceMeters = %d, want 0", result.DistanceMeters)
		}
	})

	t.Run("just inside the radius", func(t *testing.T) {
		// ~0.0005 degrees of latitude is roughly 55m
		result := policy.Check(6.5249, 3.3792)
		if !result.Allowed {
			t.Errorf("Check() at %dm should be allowed", result.DistanceMeters)
		}
	})

	t.Run("outside the radius", func(t *testing.T) {
		// ~0.01 degrees of latitude is roughly 1.1km
		result := policy.Check(6.5344, 3.3792)
		if result.Allowed {
			t.Errorf("Check() at %dm should be refused", result.DistanceMeters)
		}
		if result.Message == "" {
			t.Error("refused check should carry a message")
		}
		if result.DistanceMeters <= 100 {
			t.Errorf("DistanceMeters = %d, want > 100", result.DistanceMeters)
		}
	})
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is about 111.2km
	got := haversine(0, 0, 1, 0)
	if math.Abs(got-111195) > 200 {
		t.Errorf("haversine(1 degree of latitude) = %.0fm, want about 111195m", got)
	}

	if got := haversine(6.5244, 3.3792, 6.5244, 3.3792); got != 0 {
		t.Errorf("haversine(same point) = %v, want 0", got)
	}
}

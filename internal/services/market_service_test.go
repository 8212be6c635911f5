package services

import (
	"testing"

	"github.com/realvest-project/backend/internal/models"
)

func TestBuildHeatmapGroupsByCell(t *testing.T) {
	properties := []models.Property{
		// Two properties at the same coordinates share a geohash cell.
		{PropertyID: 1, Price: 400000, Latitude: 36.7468, Longitude: -119.7726},
		{PropertyID: 2, Price: 600000, Latitude: 36.7468, Longitude: -119.7726},
		// A third one far away.
		{PropertyID: 3, Price: 900000, Latitude: 34.0522, Longitude: -118.2437},
	}

	buckets := BuildHeatmap(properties, nil, "price")
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}

	first := buckets[0]
	if first.Count != 2 {
		t.Errorf("first bucket count = %d, want 2", first.Count)
	}
	if first.Value != 500000 {
		t.Errorf("first bucket value = %v, want mean 500000", first.Value)
	}
	if len(first.Geohash) != HeatmapPrecision {
		t.Errorf("geohash length = %d, want %d", len(first.Geohash), HeatmapPrecision)
	}

	if buckets[1].Count != 1 || buckets[1].Value != 900000 {
		t.Errorf("second bucket = %+v, want count 1 value 900000", buckets[1])
	}
}

func TestBuildHeatmapSkipsZeroCoordinates(t *testing.T) {
	properties := []models.Property{
		{PropertyID: 1, Price: 400000},
		{PropertyID: 2, Price: 500000, Latitude: 36.7468, Longitude: -119.7726},
	}

	buckets := BuildHeatmap(properties, nil, "price")
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1 (zero coordinates skipped)", len(buckets))
	}
	if buckets[0].Count != 1 {
		t.Errorf("bucket count = %d, want 1", buckets[0].Count)
	}
}

func TestBuildHeatmapScoreMetric(t *testing.T) {
	properties := []models.Property{
		{PropertyID: 1, Price: 400000, Latitude: 36.7468, Longitude: -119.7726},
		{PropertyID: 2, Price: 600000, Latitude: 36.7468, Longitude: -119.7726},
	}
	scores := []models.InvestmentScore{
		{PropertyID: 1, TotalScore: 60},
		{PropertyID: 2, TotalScore: 40},
	}

	buckets := BuildHeatmap(properties, scores, "score")
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if buckets[0].Value != 50 {
		t.Errorf("score bucket value = %v, want 50", buckets[0].Value)
	}
}

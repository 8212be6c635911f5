package services

import (
	"context"
	"encoding/json"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/realvest-project/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestGetInvestmentOpportunitiesCacheHit(t *testing.T) {
	mr, client := newTestRedis(t)

	cached := []models.Property{
		{PropertyID: 1, Price: 450000, Address: "12 Main St", PropertyType: models.TypeSingleFamily},
		{PropertyID: 2, Price: 320000, Address: "9 Oak Ave", PropertyType: models.TypeCondo},
	}
	data, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	if err := mr.Set(CacheKeyOpportunities, string(data)); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	// Nil DB: a cache hit must never reach Postgres.
	service := &PropertyService{DB: nil, Redis: client}

	properties, err := service.GetInvestmentOpportunities(context.Background(), "score", 0, nil)
	if err != nil {
		t.Fatalf("GetInvestmentOpportunities failed: %v", err)
	}
	if len(properties) != 2 {
		t.Fatalf("got %d properties, want 2", len(properties))
	}
	if properties[0].PropertyID != 1 || properties[1].PropertyID != 2 {
		t.Errorf("cache order not preserved: %d, %d", properties[0].PropertyID, properties[1].PropertyID)
	}
}

func TestSearchFiltersEmpty(t *testing.T) {
	var nilFilters *SearchFilters
	if !nilFilters.empty() {
		t.Error("nil filters should be empty")
	}
	if !(&SearchFilters{}).empty() {
		t.Error("zero filters should be empty")
	}

	min := 100000.0
	if (&SearchFilters{PriceMin: &min}).empty() {
		t.Error("price filter should not be empty")
	}
	if (&SearchFilters{Location: "Fresno"}).empty() {
		t.Error("location filter should not be empty")
	}
	if (&SearchFilters{ShowMaxResults: true}).empty() {
		t.Error("show-max filter should not be empty")
	}
}

func TestNormalizeTypes(t *testing.T) {
	got := normalizeTypes([]string{"single-family", "Condominium", "houseboat", "condo"}, false)
	want := []string{models.TypeSingleFamily, models.TypeCondo}
	if len(got) != len(want) {
		t.Fatalf("normalized types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalized[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeTypesStrictWhitelist(t *testing.T) {
	got := normalizeTypes([]string{"multi-family", "land", "townhome"}, true)
	if len(got) != 1 || got[0] != models.TypeTownhouse {
		t.Errorf("strict normalized types = %v, want [TOWNHOUSE]", got)
	}
}

func TestClampLimit(t *testing.T) {
	if got := clampLimit(0, nil); got != DefaultLimit {
		t.Errorf("clampLimit(0) = %d, want %d", got, DefaultLimit)
	}
	if got := clampLimit(100000, nil); got != MaxLimit {
		t.Errorf("clampLimit(100000) = %d, want %d", got, MaxLimit)
	}
	if got := clampLimit(25, nil); got != 25 {
		t.Errorf("clampLimit(25) = %d, want 25", got)
	}
	if got := clampLimit(10, &SearchFilters{ShowMaxResults: true}); got != MaxLimit {
		t.Errorf("clampLimit with show-max = %d, want %d", got, MaxLimit)
	}
}

package models

import (
	"math"
	"testing"
)

func TestNormalizePropertyType(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"SINGLE FAMILY", TypeSingleFamily},
		{"single-family", TypeSingleFamily},
		{"SingleFamily", TypeSingleFamily},
		{"Condominium", TypeCondo},
		{"condo", TypeCondo},
		{"Townhome", TypeTownhouse},
		{"TOWN_HOUSE", TypeTownhouse},
		{"multi family", TypeMultiFamily},
		{"MULTIFAMILY", TypeMultiFamily},
		{"Vacant Land", TypeLand},
		{"lot", TypeLand},
		{"  condo  ", TypeCondo},
		{"", TypeUnknown},
		{"HOUSEBOAT", TypeUnknown},
	}

	for _, tc := range cases {
		if got := NormalizePropertyType(tc.raw); got != tc.want {
			t.Errorf("NormalizePropertyType(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCapRate(t *testing.T) {
	rent := 2000.0
	p := &Property{Price: 400000, RentEstimate: &rent}

	rate := p.CapRate()
	if rate == nil {
		t.Fatal("expected cap rate, got nil")
	}
	// 2000*12 = 24000 gross, minus 10% = 21600 net, / 400000 * 100 = 5.4
	if math.Abs(*rate-5.4) > 1e-9 {
		t.Errorf("cap rate = %v, want 5.4", *rate)
	}
}

func TestCapRateMissingInputs(t *testing.T) {
	if rate := (&Property{Price: 400000}).CapRate(); rate != nil {
		t.Errorf("expected nil cap rate without rent, got %v", *rate)
	}

	rent := 2000.0
	if rate := (&Property{RentEstimate: &rent}).CapRate(); rate != nil {
		t.Errorf("expected nil cap rate without price, got %v", *rate)
	}

	zero := 0.0
	if rate := (&Property{Price: 400000, RentEstimate: &zero}).CapRate(); rate != nil {
		t.Errorf("expected nil cap rate with zero rent, got %v", *rate)
	}
}

func TestPricePerSqft(t *testing.T) {
	p := &Property{Price: 500000, LivingArea: 2000}
	v := p.PricePerSqft()
	if v == nil {
		t.Fatal("expected price per sqft, got nil")
	}
	if *v != 250 {
		t.Errorf("price per sqft = %v, want 250", *v)
	}

	if v := (&Property{Price: 500000}).PricePerSqft(); v != nil {
		t.Errorf("expected nil without living area, got %v", *v)
	}
}

func TestApplyAddressDefaults(t *testing.T) {
	p := &Property{City: "Fresno", State: "  "}
	p.ApplyAddressDefaults()

	if p.Address != AddressNotAvailable {
		t.Errorf("address = %q, want sentinel", p.Address)
	}
	if p.City != "Fresno" {
		t.Errorf("city = %q, want Fresno untouched", p.City)
	}
	if p.State != StateNotAvailable {
		t.Errorf("state = %q, want sentinel", p.State)
	}
	if p.Zipcode != ZipcodeNotAvailable {
		t.Errorf("zipcode = %q, want sentinel", p.Zipcode)
	}
}

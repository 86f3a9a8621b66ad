package model

import (
	"testing"
)

func TestParseDrivers_DropsMalformedEntries(t *testing.T) {
	raw := []byte(`[
		{"feature": "arpu_90_days", "value": 8.24, "impact": 0.32},
		{"feature": "tenure", "value": 3, "impact": "high"},
		{"value": 1, "impact": 0.1},
		{"feature": "", "value": 1, "impact": 0.1},
		{"feature": "recharges", "impact": 0.2},
		{"feature": "region", "value": "north", "impact": -0.05},
		{"feature": "recharges", "value": 4, "impact": null},
		null,
		"garbage"
	]`)

	drivers, dropped, err := ParseDrivers(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 7 {
		t.Fatalf("expected 7 dropped, got %d", dropped)
	}
	if len(drivers) != 2 {
		t.Fatalf("expected 2 drivers, got %#v", drivers)
	}
	if drivers[0].Feature != "arpu_90_days" || drivers[0].Impact != 0.32 {
		t.Fatalf("unexpected first driver: %#v", drivers[0])
	}
	if drivers[1].Value != "north" {
		t.Fatalf("unexpected categorical value: %#v", drivers[1].Value)
	}
}

func TestParseDrivers_EmptyAndNull(t *testing.T) {
	for _, in := range []string{"", "null", "  ", "[]"} {
		drivers, dropped, err := ParseDrivers([]byte(in))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if len(drivers) != 0 || dropped != 0 {
			t.Fatalf("%q: expected nothing, got %#v (dropped %d)", in, drivers, dropped)
		}
	}
}

func TestParseDrivers_RejectsNonArray(t *testing.T) {
	if _, _, err := ParseDrivers([]byte(`{"feature":"x"}`)); err == nil {
		t.Fatal("expected error for object input")
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{8.24, "8.24"},
		{float64(3), "3"},
		{7, "7"},
		{"gold", "gold"},
		{true, "true"},
		{nil, "n/a"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCustomerRecord_Validate(t *testing.T) {
	ok := CustomerRecord{ID: "c1", AcceptanceProbability: 0.5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range []float64{-0.01, 1.01} {
		bad := CustomerRecord{ID: "c2", AcceptanceProbability: p}
		if err := bad.Validate(); err == nil {
			t.Fatalf("expected validation error for probability %v", p)
		}
	}
}

func TestCustomerRecord_Attribute(t *testing.T) {
	c := CustomerRecord{Attributes: map[string]any{"region": "north", "empty": nil, "arpu": "12.5"}}
	if _, ok := c.Attribute("missing"); ok {
		t.Fatal("missing attribute should not resolve")
	}
	if _, ok := c.Attribute("empty"); ok {
		t.Fatal("nil attribute should not resolve")
	}
	if v, ok := c.NumericAttribute("arpu"); !ok || v != 12.5 {
		t.Fatalf("unexpected numeric attribute: %v %v", v, ok)
	}
}

func TestFeaturePlaybook_Describe(t *testing.T) {
	var nilBook FeaturePlaybook
	if got := nilBook.Describe("x"); got != "No description available." {
		t.Fatalf("unexpected fallback: %q", got)
	}
	book := FeaturePlaybook{"arpu": "Average spend"}
	if got := book.Describe("arpu"); got != "Average spend" {
		t.Fatalf("unexpected description: %q", got)
	}
}

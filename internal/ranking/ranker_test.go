package ranking

import (
	"math"
	"reflect"
	"testing"

	"telemarketing/internal/model"
)

func customer(drivers ...model.DriverRecord) model.CustomerRecord {
	return model.CustomerRecord{Drivers: drivers}
}

func driver(feature string, impact float64) model.DriverRecord {
	return model.DriverRecord{Feature: feature, Value: 1.0, Impact: impact}
}

func TestRank_MeanAbsoluteImpact(t *testing.T) {
	batch := []model.CustomerRecord{
		customer(driver("arpu", 0.5)),
		customer(driver("arpu", -0.3)),
		customer(driver("tenure", 0.1)),
	}

	got := Rank(batch, 2)
	want := []string{"arpu", "tenure"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}

	scores := Importance(batch)
	if math.Abs(scores[0].Score-0.4) > 1e-12 || scores[0].Count != 2 {
		t.Fatalf("unexpected arpu score: %#v", scores[0])
	}
}

func TestRank_EmptyBatch(t *testing.T) {
	if got := Rank(nil, 5); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", got)
	}
	if got := Rank([]model.CustomerRecord{{}, {}}, 5); len(got) != 0 {
		t.Fatalf("expected empty ranking for driverless batch, got %v", got)
	}
}

func TestRank_TopNLargerThanFeatures(t *testing.T) {
	batch := []model.CustomerRecord{customer(driver("a", 0.2), driver("b", 0.1))}
	got := Rank(batch, 10)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected ranking: %v", got)
	}
}

func TestRank_NonPositiveTopNUsesDefault(t *testing.T) {
	var drivers []model.DriverRecord
	for i := 0; i < 15; i++ {
		drivers = append(drivers, driver(string(rune('a'+i)), float64(15-i)))
	}
	got := Rank([]model.CustomerRecord{customer(drivers...)}, 0)
	if len(got) != DefaultTopN {
		t.Fatalf("expected %d features, got %d", DefaultTopN, len(got))
	}
}

func TestRank_TiesKeepFirstSeenOrder(t *testing.T) {
	batch := []model.CustomerRecord{
		customer(driver("zeta", 0.2), driver("alpha", -0.2)),
		customer(driver("mid", 0.2)),
	}
	got := Rank(batch, 3)
	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}

	// within-customer order decides ties
	swapped := []model.CustomerRecord{
		customer(driver("alpha", -0.2), driver("zeta", 0.2)),
		customer(driver("mid", 0.2)),
	}
	got = Rank(swapped, 3)
	want = []string{"alpha", "zeta", "mid"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}
}

func TestRank_IndependentOfCustomerOrder(t *testing.T) {
	a := customer(driver("arpu", 0.9), driver("tenure", 0.05))
	b := customer(driver("recharges", 0.4), driver("arpu", 0.1))
	c := customer(driver("region", 0.2))

	first := Rank([]model.CustomerRecord{a, b, c}, 4)
	again := Rank([]model.CustomerRecord{a, b, c}, 4)
	reordered := Rank([]model.CustomerRecord{c, b, a}, 4)

	if !reflect.DeepEqual(first, again) {
		t.Fatalf("ranking not stable across runs: %v vs %v", first, again)
	}
	if !reflect.DeepEqual(first, reordered) {
		t.Fatalf("ranking depends on customer order: %v vs %v", first, reordered)
	}
}

func TestRank_SkipsUnusableDrivers(t *testing.T) {
	batch := []model.CustomerRecord{
		customer(driver("", 5), driver("nan", math.NaN()), driver("inf", math.Inf(1)), driver("ok", 0.1)),
	}
	got := Rank(batch, 10)
	if !reflect.DeepEqual(got, []string{"ok"}) {
		t.Fatalf("unexpected ranking: %v", got)
	}
}

func TestRank_LengthBounds(t *testing.T) {
	batch := []model.CustomerRecord{
		customer(driver("a", 0.3), driver("b", 0.2), driver("c", 0.1)),
		customer(driver("a", 0.1), driver("d", 0.4)),
	}
	for n := 1; n <= 6; n++ {
		got := Rank(batch, n)
		if len(got) > n || len(got) > 4 {
			t.Fatalf("topN=%d produced %d features", n, len(got))
		}
	}
}

func TestRank_NullImpactsDoNotDiluteMean(t *testing.T) {
	first, _, err := model.ParseDrivers([]byte(`[
		{"feature":"arpu","value":1,"impact":0.4},
		{"feature":"tenure","value":2,"impact":0.3}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	second, dropped, err := model.ParseDrivers([]byte(`[
		{"feature":"arpu","value":1,"impact":null},
		{"feature":"arpu","value":1,"impact":null}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if dropped != 2 {
		t.Fatalf("expected null impacts dropped, got %d", dropped)
	}

	got := Rank([]model.CustomerRecord{customer(first...), customer(second...)}, 2)
	want := []string{"arpu", "tenure"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}
}

package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy wraps every Validate failure.
var ErrInvalidPolicy = errors.New("invalid pricing policy")

// Band is a price tier keyed by recent ARPU. MinARPU is inclusive, MaxARPU
// exclusive; a zero MaxARPU leaves the band open-ended.
type Band struct {
	Code     string  `yaml:"code" json:"code"`
	Name     string  `yaml:"name" json:"name"`
	MinARPU  float64 `yaml:"min_arpu" json:"min_arpu"`
	MaxARPU  float64 `yaml:"max_arpu" json:"max_arpu"`
	PriceMin float64 `yaml:"price_min" json:"price_min"`
	PriceMax float64 `yaml:"price_max" json:"price_max"`
}

// Label is the band as it is enumerated to the agent, e.g. "A (Entry)".
func (b Band) Label() string {
	if b.Name == "" {
		return b.Code
	}
	return fmt.Sprintf("%s (%s)", b.Code, b.Name)
}

func (b Band) open() bool { return b.MaxARPU == 0 }

func (b Band) contains(arpu float64) bool {
	if arpu < b.MinARPU {
		return false
	}
	return b.open() || arpu < b.MaxARPU
}

// Policy is the campaign's pricing and messaging configuration.
type Policy struct {
	Currency              string  `yaml:"currency"`
	ConsumptionWindowDays int     `yaml:"consumption_window_days"`
	MinEligibleARPU       float64 `yaml:"min_eligible_arpu"`
	Bands                 []Band  `yaml:"bands"`

	// recommended price may exceed recent ARPU by at most this percent
	MaxUpsellPct float64 `yaml:"max_upsell_pct"`
	// a customer in the bottom DownsellEdgePct of a band may be moved one
	// band down, never below MinDownsellPct of recent ARPU
	DownsellEdgePct float64 `yaml:"downsell_edge_pct"`
	MinDownsellPct  float64 `yaml:"min_downsell_pct"`

	Messaging string `yaml:"messaging"`
}

const defaultMessaging = "Anchor every offer on value (data, minutes, validity days) before mentioning price. " +
	"Never describe a price as a discount unless it is lower than the customer's recent spend. " +
	"Keep the pitch short, friendly, and focused on what the customer gains."

// Default is the standard five-tier prepaid policy.
func Default() Policy {
	return Policy{
		Currency:              "$",
		ConsumptionWindowDays: 90,
		MinEligibleARPU:       5,
		Bands: []Band{
			{Code: "A", Name: "Entry", MinARPU: 5, MaxARPU: 10, PriceMin: 5, PriceMax: 9},
			{Code: "B", Name: "Basic", MinARPU: 10, MaxARPU: 20, PriceMin: 10, PriceMax: 19},
			{Code: "C", Name: "Standard", MinARPU: 20, MaxARPU: 35, PriceMin: 20, PriceMax: 34},
			{Code: "D", Name: "Plus", MinARPU: 35, MaxARPU: 60, PriceMin: 35, PriceMax: 59},
			{Code: "E", Name: "Premium", MinARPU: 60, PriceMin: 60, PriceMax: 99},
		},
		MaxUpsellPct:    20,
		DownsellEdgePct: 10,
		MinDownsellPct:  80,
		Messaging:       defaultMessaging,
	}
}

// Validate checks band boundaries and percentages.
func (p Policy) Validate() error {
	if len(p.Bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidPolicy)
	}
	if p.MinEligibleARPU < 0 {
		return fmt.Errorf("%w: negative eligibility threshold", ErrInvalidPolicy)
	}
	if p.ConsumptionWindowDays <= 0 {
		return fmt.Errorf("%w: consumption window must be positive", ErrInvalidPolicy)
	}
	pcts := []struct {
		name string
		val  float64
	}{
		{"max_upsell_pct", p.MaxUpsellPct},
		{"downsell_edge_pct", p.DownsellEdgePct},
		{"min_downsell_pct", p.MinDownsellPct},
	}
	for _, pct := range pcts {
		if pct.val < 0 || pct.val > 100 {
			return fmt.Errorf("%w: %s out of range: %v", ErrInvalidPolicy, pct.name, pct.val)
		}
	}

	if p.Bands[0].MinARPU < p.MinEligibleARPU {
		return fmt.Errorf("%w: band %s starts below the eligibility threshold", ErrInvalidPolicy, p.Bands[0].Code)
	}

	seen := make(map[string]bool, len(p.Bands))
	for i, b := range p.Bands {
		if b.Code == "" {
			return fmt.Errorf("%w: band %d has no code", ErrInvalidPolicy, i)
		}
		if seen[b.Code] {
			return fmt.Errorf("%w: duplicate band code %s", ErrInvalidPolicy, b.Code)
		}
		seen[b.Code] = true

		if b.PriceMin < 0 || b.PriceMin > b.PriceMax {
			return fmt.Errorf("%w: band %s price range %v-%v", ErrInvalidPolicy, b.Code, b.PriceMin, b.PriceMax)
		}

		last := i == len(p.Bands)-1
		if b.open() {
			if !last {
				return fmt.Errorf("%w: only the last band may be open-ended (band %s)", ErrInvalidPolicy, b.Code)
			}
			continue
		}
		if b.MaxARPU <= b.MinARPU {
			return fmt.Errorf("%w: band %s has empty ARPU range", ErrInvalidPolicy, b.Code)
		}
		if !last && p.Bands[i+1].MinARPU != b.MaxARPU {
			return fmt.Errorf("%w: gap or overlap between bands %s and %s", ErrInvalidPolicy, b.Code, p.Bands[i+1].Code)
		}
	}
	return nil
}

// Eligible reports whether recent ARPU qualifies for a priced offer.
func (p Policy) Eligible(arpu float64) bool {
	return arpu >= p.MinEligibleARPU
}

// BandFor returns the band covering arpu. Customers below the eligibility
// threshold have no band.
func (p Policy) BandFor(arpu float64) (Band, bool) {
	if !p.Eligible(arpu) {
		return Band{}, false
	}
	for _, b := range p.Bands {
		if b.contains(arpu) {
			return b, true
		}
	}
	return Band{}, false
}

// BandLabels lists the enumerated band labels in order.
func (p Policy) BandLabels() []string {
	labels := make([]string, len(p.Bands))
	for i, b := range p.Bands {
		labels[i] = b.Label()
	}
	return labels
}

// Load reads a YAML policy file. Fields left out of the file keep their
// Default() values, except bands, which are replaced as a whole.
func Load(path string) (Policy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes a YAML policy over the defaults and validates it. Keys present
// in the document override the default, zero values included; a bands list
// replaces the default bands as a whole.
func Parse(b []byte) (Policy, error) {
	p := Default()
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

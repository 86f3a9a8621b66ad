package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// DriverRecord is one feature's raw value and its signed contribution to a
// customer's acceptance score.
type DriverRecord struct {
	Feature string  `json:"feature"`
	Value   any     `json:"value"`
	Impact  float64 `json:"impact"`
}

// Magnitude is the unsigned strength of the driver.
func (d DriverRecord) Magnitude() float64 {
	return math.Abs(d.Impact)
}

// CustomerRecord is a scored campaign target. Attributes holds the
// auxiliary, human-readable columns (region, tenure, ...) looked up by name.
type CustomerRecord struct {
	ID                    string         `json:"customer_id"`
	CampaignID            string         `json:"campaign_id,omitempty"`
	AcceptanceProbability float64        `json:"acceptance_probability" validate:"gte=0,lte=1"`
	Drivers               []DriverRecord `json:"drivers"`
	Attributes            map[string]any `json:"attributes,omitempty"`
}

// Attribute returns the named auxiliary value. Missing keys and nil values
// both report false.
func (c CustomerRecord) Attribute(name string) (any, bool) {
	if c.Attributes == nil {
		return nil, false
	}
	v, ok := c.Attributes[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// NumericAttribute resolves a named attribute as a float.
func (c CustomerRecord) NumericAttribute(name string) (float64, bool) {
	v, ok := c.Attribute(name)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

var validate = validator.New()

// Validate checks the record's required fields.
func (c CustomerRecord) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid customer %q: %w", c.ID, err)
	}
	return nil
}

// FormatValue renders a driver or attribute value the way it appears in
// prompt text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "n/a"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

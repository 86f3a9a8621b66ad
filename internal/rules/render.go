package rules

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

const policyTemplate = `Consumption window: "recent spend" is the customer's average revenue per user (ARPU) over the last {{.ConsumptionWindowDays}} days.

Eligibility: a customer qualifies for a priced offer only when recent ARPU is at least {{money $.Currency .MinEligibleARPU}}. Below that threshold the customer is not eligible and no price is recommended.

Price bands (by recent ARPU):
{{range .Bands}}- Band {{.Label}}: {{arpuRange $.Currency .}} -> authorized price {{money $.Currency .PriceMin}} to {{money $.Currency .PriceMax}}
{{end}}
Controlled upsell: the recommended price may exceed recent ARPU by at most {{pct .MaxUpsellPct}}, and it must stay inside the authorized range of the selected band.

Downsell: when recent ARPU sits in the bottom {{pct .DownsellEdgePct}} of its band, you may select the next lower band; the recommended price must never fall below {{pct .MinDownsellPct}} of recent ARPU.

Messaging: {{.Messaging}}`

var policyTmpl = template.Must(template.New("policy").Funcs(template.FuncMap{
	"money":     money,
	"pct":       pct,
	"arpuRange": arpuRange,
}).Parse(policyTemplate))

// Render turns the policy into the business-rules block embedded in the
// global prompt. Output is deterministic for a given policy.
func (p Policy) Render() string {
	var b bytes.Buffer
	if err := policyTmpl.Execute(&b, p); err != nil {
		// the template only reads plain fields; a failure here is a programming error
		panic(fmt.Sprintf("render policy: %v", err))
	}
	return strings.TrimSpace(b.String())
}

// DefaultText is the rendering of Default().
func DefaultText() string {
	return Default().Render()
}

func money(currency string, v float64) string {
	return currency + strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func arpuRange(currency string, b Band) string {
	if b.open() {
		return "ARPU >= " + money(currency, b.MinARPU)
	}
	return "ARPU >= " + money(currency, b.MinARPU) + " and < " + money(currency, b.MaxARPU)
}

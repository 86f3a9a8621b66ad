package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"telemarketing/internal/model"
	"telemarketing/internal/rules"
)

// ErrInsufficientDriverData is returned when a customer has fewer usable
// drivers than Builder.MinDrivers requires.
var ErrInsufficientDriverData = errors.New("insufficient driver data")

const (
	defaultDisplayName = "Customer"
	noContext          = "No additional context."
	noDrivers          = "No drivers available for this customer."
)

const customerTemplate = `
We are preparing a telemarketing/sales pitch for a prepaid mobile customer.

Customer: {{.Name}}
Predicted probability of accepting the offer: {{.Probability}}

Relevant context for this customer:
{{.Context}}

{{if .Count}}{{if .Ranked}}The following {{.Count}} factor(s) were most influential in predicting that this customer is likely to accept an offer, ranked from most to least impactful:{{else}}The following factors were most influential in predicting that this customer is likely to accept an offer:{{end}}
{{.Drivers}}{{else}}` + noDrivers + `{{end}}

Task:
1. Analyze the factors above in order, from the most to the least impactful, and explain in plain language why {{.Name}} might respond positively.
2. Do NOT mention 'model', 'probability', 'algorithm', 'prediction', or 'SHAP'. Speak as practical advice for a call center agent.
3. Apply the business rules and return exactly this decision block:
DECISION
- Eligible: yes or no, with a one-line reason
- Pricing band: one of {{.Bands}}, or "none" when not eligible
- Authorized price range: the selected band's minimum and maximum price
- Recommended price: a single price, with a one-line justification tied to the customer's recent spend
- Upsell suggestion: one optional add-on within the upsell limit, or "none"
4. Finish with a three-line call script for the agent:
CALL SCRIPT
1. Value anchor: open with the benefit that matters most to {{.Name}}.
2. Price framing: present the recommended price against the customer's recent spend.
3. Activation close: ask for activation now and confirm the next step.
`

var customerTmpl = template.Must(template.New("customer").Option("missingkey=zero").Parse(customerTemplate))

type customerInput struct {
	Name        string
	Probability string
	Context     string
	Ranked      bool
	Count       int
	Drivers     string
	Bands       string
}

// Builder carries the campaign configuration shared by every prompt of a run.
type Builder struct {
	Policy rules.Policy
	// RulesText, when set, replaces the rendered Policy in the global prompt.
	RulesText     string
	ContextFields []string
	NameField     string
	Playbook      model.FeaturePlaybook
	// RankDrivers narrates the top SlotCount drivers by |impact| with ordinal
	// labels; otherwise drivers are listed as supplied.
	RankDrivers bool
	// MinDrivers, when positive, makes CustomerPrompt fail for customers with
	// fewer usable drivers.
	MinDrivers int
}

// NewBuilder returns a Builder for policy with ranked drivers.
func NewBuilder(policy rules.Policy) *Builder {
	return &Builder{Policy: policy, RankDrivers: true}
}

func (b *Builder) policy() rules.Policy {
	if len(b.Policy.Bands) == 0 {
		return rules.Default()
	}
	return b.Policy
}

// RulesBlock is the business-rules text the global prompt embeds.
func (b *Builder) RulesBlock() string {
	if strings.TrimSpace(b.RulesText) != "" {
		return b.RulesText
	}
	return b.policy().Render()
}

// GlobalPrompt renders the system prompt for a ranked feature list.
func (b *Builder) GlobalPrompt(ranked []string) string {
	return BuildGlobalPrompt(ranked, b.Playbook, b.RulesBlock())
}

// CustomerPrompt renders the per-customer prompt.
func (b *Builder) CustomerPrompt(c model.CustomerRecord) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	in := customerInput{
		Name:        b.displayName(c),
		Probability: FormatProbability(c.AcceptanceProbability),
		Context:     b.contextBlock(c),
		Ranked:      b.RankDrivers,
		Bands:       strings.Join(b.policy().BandLabels(), ", "),
	}

	if b.RankDrivers {
		slots := FillSlots(c.Drivers)
		in.Count = slots.Filled()
		in.Drivers = b.slotBlock(slots)
	} else {
		usable := make([]model.DriverRecord, 0, len(c.Drivers))
		for _, d := range c.Drivers {
			if d.Usable() {
				usable = append(usable, d)
			}
		}
		in.Count = len(usable)
		in.Drivers = b.listBlock(usable)
	}

	if b.MinDrivers > 0 && in.Count < b.MinDrivers {
		return "", fmt.Errorf("%w: customer %q has %d of %d required drivers",
			ErrInsufficientDriverData, c.ID, in.Count, b.MinDrivers)
	}

	return render(customerTmpl, in), nil
}

// BuildCustomerPrompt renders a customer prompt with the default policy and
// ranked drivers.
func BuildCustomerPrompt(c model.CustomerRecord, contextFields []string, nameField string, playbook model.FeaturePlaybook) (string, error) {
	b := NewBuilder(rules.Default())
	b.ContextFields = contextFields
	b.NameField = nameField
	b.Playbook = playbook
	return b.CustomerPrompt(c)
}

// FormatProbability renders p as a percentage with two decimals, 0.8234 -> "82.34%".
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// DriverLine renders a driver as "- feature: value=v, impact=+0.000".
func DriverLine(d model.DriverRecord) string {
	return fmt.Sprintf("- %s: value=%s, impact=%+.3f", d.Feature, model.FormatValue(d.Value), d.Impact)
}

func (b *Builder) displayName(c model.CustomerRecord) string {
	if b.NameField == "" {
		return defaultDisplayName
	}
	v, ok := c.Attribute(b.NameField)
	if !ok {
		return defaultDisplayName
	}
	name := strings.TrimSpace(model.FormatValue(v))
	if name == "" {
		return defaultDisplayName
	}
	return name
}

func (b *Builder) contextBlock(c model.CustomerRecord) string {
	var lines []string
	for _, field := range b.ContextFields {
		v, ok := c.Attribute(field)
		if !ok {
			continue
		}
		lines = append(lines, field+" = "+model.FormatValue(v))
	}
	if len(lines) == 0 {
		return noContext
	}
	return strings.Join(lines, "\n")
}

func (b *Builder) slotBlock(slots Slots) string {
	var parts []string
	for i, d := range slots {
		if d == nil {
			continue
		}
		part := Label(i) + "\n" + DriverLine(*d)
		if b.Playbook != nil {
			part += "\n  Meaning: " + b.Playbook.Describe(d.Feature)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n")
}

func (b *Builder) listBlock(drivers []model.DriverRecord) string {
	lines := make([]string, len(drivers))
	for i, d := range drivers {
		lines[i] = DriverLine(d)
	}
	return strings.Join(lines, "\n")
}

// CampaignLine is appended to a customer prompt to state the campaign
// objective and the contact channel. Empty when neither is set.
func CampaignLine(objective, channel string) string {
	if objective == "" && channel == "" {
		return ""
	}
	return fmt.Sprintf("\n\nCampaign objective: %s. Contact channel: %s. Adapt the call script to this channel.", objective, channel)
}

package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"telemarketing/internal/model"
	"telemarketing/internal/rules"
)

const noRankedFeatures = "- No influential features were identified for this campaign batch."

const globalTemplate = `
You are helping generate sales guidance for a prepaid telecom campaign.

We have a machine learning model that predicts the probability that a customer will accept an offer (sale = 1).
The model was trained on historical customer behavior and engagement indicators.
Higher score means the customer is more likely to buy if contacted.

The model relies on multiple behavioral and account features. Below are the most influential features overall (averaged across customers), and what they represent:

{{.Features}}

Business rules:
{{.Rules}}

Rules:
- NEVER reveal internal scoring mechanics, coefficients, or math details.
- NEVER invent personal/sensitive attributes not present in the features.
- Keep tone helpful, respectful, and focused on value to customer.
- NEVER use the words "model", "probability", or "SHAP" in any text meant for the agent or the customer.
- You are allowed to explain why a segment is likely to buy, in plain language.
`

var globalTmpl = template.Must(template.New("global").Option("missingkey=zero").Parse(globalTemplate))

type globalInput struct {
	Features string
	Rules    string
}

// BuildGlobalPrompt renders the campaign-wide system prompt. Features are
// listed in the given order; an empty rulesText falls back to the rendered
// default pricing policy.
func BuildGlobalPrompt(ranked []string, playbook model.FeaturePlaybook, rulesText string) string {
	if strings.TrimSpace(rulesText) == "" {
		rulesText = rules.DefaultText()
	}
	return render(globalTmpl, globalInput{
		Features: featureBlock(ranked, playbook),
		Rules:    strings.TrimSpace(rulesText),
	})
}

func featureBlock(ranked []string, playbook model.FeaturePlaybook) string {
	if len(ranked) == 0 {
		return noRankedFeatures
	}
	lines := make([]string, len(ranked))
	for i, feat := range ranked {
		lines[i] = "- " + feat + ": " + playbook.Describe(feat)
	}
	return strings.Join(lines, "\n")
}

// render panics on a template error; the templates and their inputs are
// fixed at compile time.
func render(t *template.Template, in any) string {
	var b bytes.Buffer
	if err := t.Execute(&b, in); err != nil {
		panic(fmt.Sprintf("render %s prompt: %v", t.Name(), err))
	}
	return strings.TrimSpace(b.String())
}

package model

// NoDescription is the fallback shown for features without a playbook entry.
// It appears verbatim in generated prompts.
const NoDescription = "No description available."

// FeaturePlaybook maps feature identifiers to customer-facing descriptions.
type FeaturePlaybook map[string]string

// Describe returns the description for feature, or NoDescription. A nil
// playbook is valid.
func (p FeaturePlaybook) Describe(feature string) string {
	if desc, ok := p[feature]; ok && desc != "" {
		return desc
	}
	return NoDescription
}

// Has reports whether the playbook carries a description for feature.
func (p FeaturePlaybook) Has(feature string) bool {
	desc, ok := p[feature]
	return ok && desc != ""
}

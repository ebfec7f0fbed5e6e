package llm

import "research-portal/constants"

// BuildFinancialJSONSchema returns the financial-extraction shape contract as
// a JSON-Schema (draft 2020-12 subset) generic map. The per-item values/periods
// length invariant cannot be expressed here and is checked after decoding.
func BuildFinancialJSONSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"currency", "scale", "periods", "line_items"},
		"properties": map[string]any{
			"currency": map[string]any{"type": "string", "minLength": 1},
			"scale":    map[string]any{"type": "string", "minLength": 1},
			"periods": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"name", "values", "category"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string", "minLength": 1},
						"values": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": []string{"number", "null"}},
						},
						"category": map[string]any{
							"type": "string",
							"enum": constants.LineCategories(),
						},
					},
				},
			},
		},
	}
}

// BuildEarningsJSONSchema returns the earnings-call summary shape contract.
// Every key is required; silence in the transcript is expressed by the
// "Not mentioned" sentinel, never by omission. List lengths are bounded only
// from below; the 3-5 bound the prompt requests is advisory.
func BuildEarningsJSONSchema() map[string]any {
	stringList := func() map[string]any {
		return map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "string", "minLength": 1},
		}
	}
	return map[string]any{
		"type": "object",
		"required": []string{
			"management_tone", "confidence_level", "key_positives", "key_concerns",
			"forward_guidance", "capacity_utilization", "growth_initiatives",
		},
		"properties": map[string]any{
			"management_tone": map[string]any{
				"type": "string",
				"enum": constants.ManagementTones,
			},
			"confidence_level": map[string]any{
				"type": "string",
				"enum": constants.ConfidenceLevels,
			},
			"key_positives": stringList(),
			"key_concerns":  stringList(),
			"forward_guidance": map[string]any{
				"type":     "object",
				"required": []string{"revenue", "margin", "capex"},
				"properties": map[string]any{
					"revenue": map[string]any{"type": "string", "minLength": 1},
					"margin":  map[string]any{"type": "string", "minLength": 1},
					"capex":   map[string]any{"type": "string", "minLength": 1},
				},
			},
			"capacity_utilization": map[string]any{"type": "string", "minLength": 1},
			"growth_initiatives":   stringList(),
		},
	}
}

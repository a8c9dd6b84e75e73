package classify

// BuildRuleSetJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the category rule-set artifact. We validate the
// artifact against it before compiling any pattern.
func BuildRuleSetJSONSchema() map[string]any {
	pattern := map[string]any{"type": "string", "minLength": 1}

	category := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1},
			"required_patterns": map[string]any{
				"type":     "array",
				"items":    pattern,
				"minItems": 1,
			},
			"supporting_patterns": map[string]any{
				"type":  "array",
				"items": pattern,
			},
		},
		"required": []string{"name", "required_patterns"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"version": map[string]any{"type": "integer", "minimum": 1},
			"categories": map[string]any{
				"type":     "array",
				"items":    category,
				"minItems": 1,
			},
		},
		"required": []string{"categories"},
	}
}

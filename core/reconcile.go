package core

import (
	"strconv"
	"strings"
)

// ReconstructThreadConfig rebuilds a thread's generation parameters from the
// fields stored on its origin message. It never fails: a missing or
// malformed field falls back to its default on its own, so a bad max_tokens
// does not discard a valid model.
//
// Field names are matched case-insensitively. defaultModel is used when the
// model field is absent or names a model outside the catalog; the token and
// temperature defaults follow the resolved model.
func ReconstructThreadConfig(fields map[string]string, defaultModel string) ThreadConfig {
	norm := make(map[string]string, len(fields))
	for k, v := range fields {
		norm[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	model := defaultModel
	if v, ok := norm[FieldModel]; ok {
		if _, known := LookupModel(v); known {
			model = v
		}
	}
	cfg := DefaultThreadConfig(model)

	if v, ok := norm[FieldMaxTokens]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= MinMaxTokens && n <= MaxMaxTokens {
			cfg.MaxTokens = n
		}
	}
	if v, ok := norm[FieldTemperature]; ok {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 && t <= 1 {
			cfg.Temperature = t
		}
	}
	return cfg
}

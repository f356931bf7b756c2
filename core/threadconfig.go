package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names stored on a thread's origin message.
const (
	FieldModel       = "model"
	FieldTemperature = "temperature"
	FieldMaxTokens   = "max_tokens"
)

// ThreadConfig holds the generation parameters bound to one thread.
type ThreadConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultThreadConfig returns the defaults for model.
func DefaultThreadConfig(model string) ThreadConfig {
	return ThreadConfig{
		Model:       model,
		MaxTokens:   ModelOrDefault(model).DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// Validate reports the first out-of-range value.
func (c ThreadConfig) Validate() error {
	if _, ok := LookupModel(c.Model); !ok {
		return fmt.Errorf("unknown model %q", c.Model)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("invalid temperature %s (0-1 required)", FormatTemperature(c.Temperature))
	}
	if c.MaxTokens < MinMaxTokens || c.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("invalid max_tokens %d (%d-%d required)", c.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}
	return nil
}

// Field is a named value displayed on a thread's origin message.
type Field struct {
	Name  string
	Value string
}

// Fields returns the config as origin-message fields, in display order.
func (c ThreadConfig) Fields() []Field {
	return []Field{
		{Name: FieldModel, Value: c.Model},
		{Name: FieldTemperature, Value: FormatTemperature(c.Temperature)},
		{Name: FieldMaxTokens, Value: strconv.Itoa(c.MaxTokens)},
	}
}

// FormatTemperature renders t with at least one decimal place ("1.0", "0.75").
func FormatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}

// IsConfigField reports whether name is one of the stored config fields.
func IsConfigField(name string) bool {
	switch name {
	case FieldModel, FieldTemperature, FieldMaxTokens:
		return true
	}
	return false
}

// Package settings holds the per-user solver preferences and their lenient JSON codec.
package settings

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Key is the storage key of the settings record.
const Key = "img-solve-settings"

// Defaults.
const (
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultPrompt      = "Interpret the problem in this image and solve it step by step. " +
		"Use Markdown and LaTeX ($…$, $$…$$). " +
		"Finish with an **Answer** section highlighting the final result."
)

// Settings are the solver preferences sent along with every solve request.
type Settings struct {
	Provider    string  `json:"provider" mapstructure:"provider"`
	Model       string  `json:"model" mapstructure:"model"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	Prompt      string  `json:"prompt" mapstructure:"prompt"`
}

// Default returns the settings used when nothing valid is stored.
func Default() Settings {
	return Settings{
		Provider:    DefaultProvider,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Prompt:      DefaultPrompt,
	}
}

// Decode reads a stored record. It never fails: absent or malformed data yields the
// defaults, and each field that does not have the expected type falls back on its own.
func Decode(data []byte) Settings {
	out := Default()
	if len(data) == 0 {
		return out
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return out
	}

	decodeField(raw, "provider", &out.Provider)
	decodeField(raw, "model", &out.Model)
	if v, ok := raw["temperature"].(float64); ok {
		out.Temperature = v
	}
	decodeField(raw, "prompt", &out.Prompt)
	return out
}

// decodeField copies raw[key] into dst when it has exactly the type of dst.
func decodeField[T any](raw map[string]any, key string, dst *T) {
	v, ok := raw[key]
	if !ok || v == nil {
		return
	}
	var tmp T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &tmp,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return
	}
	if err := dec.Decode(v); err != nil {
		return
	}
	*dst = tmp
}

// Encode serialises s as the stored JSON record.
func Encode(s Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return data, nil
}

// FromMap decodes a partial update (e.g. from a CLI flag set or a PUT body) over base.
// Unlike Decode it reports type mismatches.
func FromMap(base Settings, update map[string]any) (Settings, error) {
	out := base
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return base, err
	}
	if err := dec.Decode(update); err != nil {
		return base, fmt.Errorf("invalid settings: %w", err)
	}
	return out, nil
}

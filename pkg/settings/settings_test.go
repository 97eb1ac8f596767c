package settings_test

import (
	"testing"

	"github.com/aretw0/lousa/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	for _, in := range []string{"", "not json", "null", "[1,2]", `"str"`} {
		assert.Equal(t, settings.Default(), settings.Decode([]byte(in)), in)
	}
}

func TestDecode_FieldsFallBackIndependently(t *testing.T) {
	got := settings.Decode([]byte(`{"provider":"openrouter","model":42,"temperature":"hot","prompt":"solve it"}`))
	assert.Equal(t, "openrouter", got.Provider)
	assert.Equal(t, settings.DefaultModel, got.Model)
	assert.Equal(t, settings.DefaultTemperature, got.Temperature)
	assert.Equal(t, "solve it", got.Prompt)
}

func TestDecode_ZeroTemperatureIsKept(t *testing.T) {
	got := settings.Decode([]byte(`{"temperature":0}`))
	assert.Equal(t, 0.0, got.Temperature)
	assert.Equal(t, settings.DefaultProvider, got.Provider)
}

func TestEncodeDecode(t *testing.T) {
	s := settings.Settings{Provider: "openrouter", Model: "openai/gpt-4o", Temperature: 0.65, Prompt: "p"}
	data, err := settings.Encode(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"openrouter","model":"openai/gpt-4o","temperature":0.65,"prompt":"p"}`, string(data))
	assert.Equal(t, s, settings.Decode(data))
}

func TestFromMap(t *testing.T) {
	got, err := settings.FromMap(settings.Default(), map[string]any{"temperature": "0.5", "model": "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Temperature)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, settings.DefaultPrompt, got.Prompt)

	_, err = settings.FromMap(settings.Default(), map[string]any{"apiKey": "sk-123"})
	assert.Error(t, err)
}

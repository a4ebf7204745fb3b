package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_EventCatalog(t *testing.T) {
	v := NewSchemaValidator()

	tests := []struct {
		name      string
		data      string
		wantError bool
		errorMsg  string
	}{
		{
			name:      "empty catalog uses defaults",
			data:      `{}`,
			wantError: false,
		},
		{
			name: "valid daily and weather sections",
			data: `{
				"daily": {"priority": 10, "templates": [{"title": "Level Rush", "requirements": {"levels_completed": 5}, "rewards": {"coins": 100}}]},
				"weather": {"duration": "4h", "rewards": {"rain": {"coins": 150}}}
			}`,
			wantError: false,
		},
		{
			name:      "template without requirements",
			data:      `{"daily": {"templates": [{"title": "Nothing to do"}]}}`,
			wantError: true,
			errorMsg:  "/daily/templates/0",
		},
		{
			name:      "negative reward amount",
			data:      `{"seasonal": {"rewards": {"coins": -5}}}`,
			wantError: true,
			errorMsg:  "minimum",
		},
		{
			name:      "malformed duration",
			data:      `{"special": {"min_duration": "an hour"}}`,
			wantError: true,
			errorMsg:  "pattern",
		},
		{
			name:      "empty offer list",
			data:      `{"special": {"offers": []}}`,
			wantError: true,
			errorMsg:  "minItems",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tt.data), SchemaEventCatalog)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSchemaValidator_ValidateDocument(t *testing.T) {
	v := NewSchemaValidator()

	// YAML decoders hand back Go ints and nested maps
	doc := map[string]any{
		"weekly": map[string]any{
			"title":        "Weekly Tournament",
			"requirements": map[string]any{"tournament_points": 1000},
			"rewards": map[string]any{
				"first": map[string]any{"coins": 5000},
			},
		},
	}
	assert.NoError(t, v.ValidateDocument(doc, SchemaEventCatalog))

	doc["weekly"].(map[string]any)["requirements"] = map[string]any{}
	assert.Error(t, v.ValidateDocument(doc, SchemaEventCatalog))
}

func TestSchemaValidator_UnknownSchema(t *testing.T) {
	err := NewSchemaValidator().ValidateBytes([]byte(`{}`), "missing.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestSchemaValidator_InvalidJSON(t *testing.T) {
	err := NewSchemaValidator().ValidateBytes([]byte(`{not json`), SchemaEventCatalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON data")
}

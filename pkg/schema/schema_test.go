package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"owner": map[string]any{
				"type":        "string",
				"description": "Repository owner",
			},
			"repo": map[string]any{
				"type":        "string",
				"description": "Repository name",
			},
			"page": map[string]any{
				"type":    "integer",
				"minimum": float64(1),
			},
		},
		"required": []any{"owner", "repo"},
	}
}

func TestRoundTripPreservesStructure(t *testing.T) {
	doc := sampleSchema()

	native, err := FromJSON(doc)
	require.NoError(t, err)
	require.NotNil(t, native)

	back, err := ToJSON(native)
	require.NoError(t, err)

	assert.Equal(t, "object", back["type"])
	assert.ElementsMatch(t, []any{"owner", "repo"}, back["required"])

	props, ok := back["properties"].(map[string]any)
	require.True(t, ok, "properties survived as object")
	owner, ok := props["owner"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", owner["type"])
	assert.Equal(t, "Repository owner", owner["description"])
}

func TestFromJSONNil(t *testing.T) {
	native, err := FromJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, native)

	doc, err := ToJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestValidateArguments(t *testing.T) {
	doc := sampleSchema()

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{
			name: "valid",
			args: map[string]any{"owner": "ComposioHQ", "repo": "composio", "page": 1},
		},
		{
			name:    "missing required",
			args:    map[string]any{"owner": "ComposioHQ"},
			wantErr: true,
		},
		{
			name:    "wrong type",
			args:    map[string]any{"owner": "ComposioHQ", "repo": 42},
			wantErr: true,
		},
		{
			name:    "constraint violation",
			args:    map[string]any{"owner": "a", "repo": "b", "page": 0},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArguments(doc, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateArgumentsEmptySchema(t *testing.T) {
	assert.NoError(t, ValidateArguments(nil, map[string]any{"anything": true}))
}

func TestReflect(t *testing.T) {
	type sendEmailArgs struct {
		To      string `json:"to" jsonschema:"required,description=Recipient address"`
		Subject string `json:"subject" jsonschema:"required"`
		Body    string `json:"body"`
	}

	doc, err := Reflect[sendEmailArgs]()
	require.NoError(t, err)

	assert.Equal(t, "object", doc["type"])
	assert.NotContains(t, doc, "$schema")

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	to, ok := props["to"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Recipient address", to["description"])

	// Reflected schemas are valid input schemas for validation.
	err = ValidateArguments(doc, map[string]any{"to": "a@b.c", "subject": "hi", "body": ""})
	assert.NoError(t, err)
	err = ValidateArguments(doc, map[string]any{"body": "no recipient"})
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	doc := sampleSchema()
	cp := Clone(doc)
	require.NotNil(t, cp)

	cp["type"] = "string"
	props := cp["properties"].(map[string]any)
	props["owner"].(map[string]any)["type"] = "integer"

	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, "string", doc["properties"].(map[string]any)["owner"].(map[string]any)["type"])
}

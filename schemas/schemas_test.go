package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-agent/internal/schemas"
)

func TestConfigSchema_ValidJSON(t *testing.T) {
	var schemaObj map[string]any
	require.NoError(t, json.Unmarshal(Config, &schemaObj))

	assert.Equal(t, "object", schemaObj["type"])
	assert.Contains(t, schemaObj, "$schema")
	assert.Contains(t, schemaObj, "properties")
}

func TestConfigSchema_Documents(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty", `{}`, false},
		{"full", `{
			"model": "gemini-2.5-flash-lite",
			"embedding_model": "text-embedding-004",
			"temperature": 0.7,
			"request_timeout_seconds": 5,
			"page_load_timeout_seconds": 5,
			"render_timeout_seconds": 30,
			"max_job_description_length": 3000,
			"chunk_size": 1000,
			"chunk_overlap": 200,
			"top_k": 3,
			"static_content_dir": "static_content",
			"server": {"port": 8080, "max_upload_mb": 10},
			"log": {"level": "info", "format": "json"}
		}`, false},
		{"unknown key", `{"database_url": "postgres://"}`, true},
		{"temperature too high", `{"temperature": 3}`, true},
		{"fractional timeout", `{"request_timeout_seconds": 1.5}`, true},
		{"bad log level", `{"log": {"level": "loud"}}`, true},
		{"jd limit too small", `{"max_job_description_length": 50}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schemas.ValidateJSONString(string(Config), tt.doc)
			if tt.wantErr {
				var validationErr *schemas.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

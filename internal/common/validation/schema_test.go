package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicationSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"jobId", "studentId"},
	"properties": map[string]interface{}{
		"jobId":     map[string]interface{}{"type": "string", "minLength": 1},
		"studentId": map[string]interface{}{"type": "string"},
		"maxItems":  map[string]interface{}{"type": "integer", "minimum": 1},
	},
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name       string
		document   string
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid document",
			document:  `{"jobId":"job-1","studentId":"stu-1","maxItems":3}`,
			wantValid: true,
		},
		{
			name:       "missing required fields",
			document:   `{}`,
			wantValid:  false,
			wantFields: []string{"jobId", "studentId"},
		},
		{
			name:       "wrong type",
			document:   `{"jobId":"job-1","studentId":"stu-1","maxItems":"three"}`,
			wantValid:  false,
			wantFields: []string{"maxItems"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateJSON(applicationSchema, tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			for _, field := range tt.wantFields {
				assert.True(t, result.HasErrors(field), "expected error on %s, got %v", field, result.GetErrorMessages())
			}
		})
	}
}

func TestValidateJSON_EmptySchemaAcceptsAnything(t *testing.T) {
	result, err := ValidateJSON(nil, `{"anything":true}`)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	_, err := ValidateJSON(applicationSchema, `{not json`)
	assert.Error(t, err)
}

func TestValidateObject(t *testing.T) {
	result, err := ValidateObject(applicationSchema, map[string]interface{}{"jobId": ""})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("jobId"))
	assert.True(t, result.HasErrors("studentId"))
}

func TestValidateContactFormats(t *testing.T) {
	assert.True(t, ValidateEmail("student@example.com"))
	assert.False(t, ValidateEmail("student@"))
	assert.True(t, ValidatePhone("+14155550100"))
	assert.False(t, ValidatePhone("4155550100"))
}

package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name          string
		format        string
		supported     []string
		expectedError string
	}{
		{name: "json", format: "json", supported: supported},
		{name: "markdown", format: "markdown", supported: supported},
		{
			name:          "unknown format",
			format:        "xml",
			supported:     supported,
			expectedError: "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:          "case sensitive",
			format:        "JSON",
			supported:     supported,
			expectedError: "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:          "empty format",
			format:        "",
			supported:     supported,
			expectedError: "unsupported output format ''. Supported formats: [json text markdown]",
		},
		{name: "no restriction", format: "xml", supported: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.expectedError == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error but got none")
			}
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}

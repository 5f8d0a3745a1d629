package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
)

func TestAppErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeMissingHandle, "Please save your GitHub username first.", nil),
			expected: "MISSING_GITHUB_USERNAME: Please save your GitHub username first.",
		},
		{
			name:     "with cause",
			err:      NewNetworkError(ErrCodeBackendDown, "backend unreachable", fmt.Errorf("dial tcp: refused")),
			expected: "BACKEND_UNREACHABLE: backend unreachable (caused by: dial tcp: refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestIsConnectivity(t *testing.T) {
	network := NewNetworkError(ErrCodeBackendDown, "unreachable", nil)
	wrapped := fmt.Errorf("analyze: %w", network)
	business := NewBackendError(ErrCodeBackendRejected, "No GitHub data", nil)

	if !IsConnectivity(network) {
		t.Error("Expected network error to be connectivity")
	}
	if !IsConnectivity(wrapped) {
		t.Error("Expected wrapped network error to be connectivity")
	}
	if IsConnectivity(business) {
		t.Error("Expected backend error not to be connectivity")
	}
	if IsConnectivity(nil) {
		t.Error("Expected nil not to be connectivity")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"connectivity", NewNetworkError(ErrCodeNetworkTimeout, "timeout", nil), ConnectivityMessage},
		{"business verbatim", NewBackendError(ErrCodeBackendRejected, "No GitHub data", nil), "No GitHub data"},
		{"wrapped business", fmt.Errorf("plan: %w", NewBackendError(ErrCodeBackendRejected, "bad career", nil)), "bad career"},
		{"plain error", fmt.Errorf("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestLogErrorUnpacksAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelDebug, &buf)

	err := NewBackendError(ErrCodeBackendRejected, "No GitHub data", nil).WithContext("endpoint", "/analyze")
	logger.LogError(err, "Analysis failed", "user_id", "u1")

	var entry map[string]any
	if decodeErr := json.Unmarshal(buf.Bytes(), &entry); decodeErr != nil {
		t.Fatalf("Expected JSON log line, got error: %v", decodeErr)
	}
	if entry["error_type"] != string(ErrorTypeBackend) {
		t.Errorf("Expected error_type backend, got %v", entry["error_type"])
	}
	if entry["endpoint"] != "/analyze" {
		t.Errorf("Expected endpoint context, got %v", entry["endpoint"])
	}
	if entry["user_id"] != "u1" {
		t.Errorf("Expected user_id arg, got %v", entry["user_id"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Error("Expected error for unknown log level")
	}
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("Expected level %s to be accepted, got %v", level, err)
		}
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
	logger.LogError(fmt.Errorf("x"), "ignored")
}

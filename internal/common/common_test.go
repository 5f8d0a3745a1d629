package common

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"proedualt/internal/errors"
	"proedualt/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formats = []string{"json", "text", "markdown"}

func TestReadResume(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, content, 0600))
		return p
	}

	good := write("cv.pdf", []byte("%PDF-1.7\nbody"))
	notPDF := write("cv.txt", []byte("%PDF-1.7"))
	fake := write("fake.pdf", []byte("hello"))
	big := write("big.pdf", append([]byte("%PDF-1.7"), bytes.Repeat([]byte("x"), 2048)...))

	tests := []struct {
		name     string
		path     string
		maxSize  int64
		wantCode string
	}{
		{name: "valid", path: good, maxSize: 1024},
		{name: "no limit", path: big, maxSize: 0},
		{name: "missing", path: filepath.Join(dir, "nope.pdf"), wantCode: errors.ErrCodeFileNotFound},
		{name: "wrong extension", path: notPDF, wantCode: errors.ErrCodeInvalidFormat},
		{name: "not a pdf", path: fake, wantCode: errors.ErrCodeInvalidFormat},
		{name: "too large", path: big, maxSize: 1024, wantCode: errors.ErrCodeFileTooLarge},
	}

	fp := NewFileProcessor(errors.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := fp.ReadResume(tt.path, tt.maxSize)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
				return
			}
			appErr, ok := errors.As(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestRunCommandWritesFormattedOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := CommandConfig{OutputFormat: "text", SupportedFormats: formats}

	err := RunCommandTo(context.Background(), &buf, nil, cfg, func(ctx context.Context) (types.Message, error) {
		return types.Message{Message: "Projects synced."}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Projects synced.\n", buf.String())
}

func TestRunCommandRejectsFormatBeforeRunning(t *testing.T) {
	ran := false
	cfg := CommandConfig{OutputFormat: "xml", SupportedFormats: formats}

	err := RunCommandTo(context.Background(), &bytes.Buffer{}, nil, cfg, func(ctx context.Context) (types.Message, error) {
		ran = true
		return types.Message{}, nil
	})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.False(t, ran)
}

func TestRunCommandPropagatesErrors(t *testing.T) {
	cfg := CommandConfig{OutputFormat: "json", SupportedFormats: formats}
	err := RunCommandTo(context.Background(), &bytes.Buffer{}, nil, cfg, func(ctx context.Context) (types.Message, error) {
		return types.Message{}, fmt.Errorf("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestHandleOutputToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "result.json")
	oh := NewOutputHandlerTo(&bytes.Buffer{}, errors.NewNop())

	err := oh.HandleOutput(types.Message{Message: "ok"}, CommandConfig{OutputFile: out, OutputFormat: "json", SupportedFormats: formats})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"message": "ok"`))
}

package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsPDFFile(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"resume.pdf", true},
		{"RESUME.PDF", true},
		{"resume.pdf.txt", false},
		{"resume", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsPDFFile(tt.filename); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHasPDFMagic(t *testing.T) {
	if !HasPDFMagic([]byte("%PDF-1.7\n...")) {
		t.Error("Expected PDF header to be recognised")
	}
	if HasPDFMagic([]byte("PK\x03\x04")) {
		t.Error("Expected zip header to be rejected")
	}
	if HasPDFMagic(nil) {
		t.Error("Expected empty content to be rejected")
	}
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(file, []byte("%PDF-1.4"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing file", file, false},
		{"empty name", "", true},
		{"missing", filepath.Join(dir, "missing.pdf"), true},
		{"directory", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.size); got != tt.expected {
			t.Errorf("FormatFileSize(%d): expected %s, got %s", tt.size, tt.expected, got)
		}
	}
}

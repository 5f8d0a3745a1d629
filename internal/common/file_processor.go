package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"proedualt/internal/errors"
	"proedualt/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadResume reads a resume for upload. Only PDF documents up to maxSize
// bytes are accepted; maxSize <= 0 means no limit.
func (fp *FileProcessor) ReadResume(filename string, maxSize int64) ([]byte, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("Invalid file %s", filename), err)
	}
	if !utils.IsPDFFile(filename) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("%s is not a PDF file", filepath.Base(filename)), nil)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	var r io.Reader = file
	if maxSize > 0 {
		r = io.LimitReader(file, maxSize+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	if maxSize > 0 && int64(len(content)) > maxSize {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is larger than %s", filepath.Base(filename), utils.FormatFileSize(maxSize)), nil)
	}
	if !utils.HasPDFMagic(content) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("%s does not look like a PDF document", filepath.Base(filename)), nil)
	}

	fp.logger.Debug("Resume read", "filename", filename, "size", utils.FormatFileSize(int64(len(content))))
	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}

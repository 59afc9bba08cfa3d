package ocr

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrReadTimeout is returned when a read operation does not finish within the configured wait
	ErrReadTimeout = errors.New("ocr read timed out")
	// ErrReadFailed is returned when the OCR service reports the read as failed
	ErrReadFailed = errors.New("ocr read failed")
	// ErrMissingCredentials is returned by constructors that need a key or endpoint
	ErrMissingCredentials = errors.New("ocr credentials are required")
)

// Recognizer turns a receipt image into its text lines, top to bottom
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) ([]string, error)
}

// splitLines trims every line of text and drops the empty ones
func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Package document extracts the text layer of uploaded invoice documents.
// It does not perform OCR: image-only PDFs are reported as such.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

const (
	// DefaultMaxTextBytes caps the text read from one document
	DefaultMaxTextBytes = 256 * 1024
	// scannedThreshold is the characters per page below which a PDF is treated as image-only
	scannedThreshold = 50
)

// Extraction errors
var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrNoTextLayer   = errors.New("document has no text layer")
)

// PDFText is the text layer of a PDF document
type PDFText struct {
	PageCount int
	Text      string
	Truncated bool
}

// Lines returns the non-empty trimmed lines of the text
func (p *PDFText) Lines() []string {
	var lines []string
	for _, line := range strings.Split(p.Text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// ExtractPDFText reads the plain text of a PDF. Malformed documents yield an
// error wrapping shared.ErrInvalidInput; a panic inside the PDF parser is
// recovered and reported the same way. maxBytes <= 0 uses DefaultMaxTextBytes.
func ExtractPDFText(data []byte, maxBytes int) (result *PDFText, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, ErrEmptyDocument)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxTextBytes
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: malformed PDF: %v", shared.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open PDF reader: %w", shared.ErrInvalidInput, err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: extract plain text: %w", shared.ErrInvalidInput, err)
	}

	// One byte past the cap tells a truncated document from an exact fit.
	textBytes, err := io.ReadAll(io.LimitReader(plainText, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read plain text: %w", err)
	}

	result = &PDFText{PageCount: max(reader.NumPage(), 1)}
	if len(textBytes) > maxBytes {
		textBytes = textBytes[:maxBytes]
		result.Truncated = true
	}
	result.Text = string(textBytes)

	if isLikelyScanned(result.Text, result.PageCount) {
		return nil, fmt.Errorf("%w: %w (%d pages)", shared.ErrInvalidInput, ErrNoTextLayer, result.PageCount)
	}
	return result, nil
}

// isLikelyScanned reports whether the PDF appears to be an image-only scan
func isLikelyScanned(text string, pages int) bool {
	if pages <= 0 {
		pages = 1
	}
	return len(strings.TrimSpace(text))/pages < scannedThreshold
}

package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"aireas/internal/contextutil"
	"aireas/internal/service"
)

// PDFExtractor pulls plain text out of PDF files page by page.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads the PDF at path and returns its concatenated page text.
// A file that parses but yields no text returns ErrEmptyExtraction so the
// caller can report it distinctly from a corrupt file.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	fonts := make(map[string]*pdf.Font)
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page should not sink the document.
			logger.WarnContext(ctx, "skipping unreadable page", "path", path, "page", i, "error", err)
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", service.ErrEmptyExtraction, path)
	}

	logger.InfoContext(ctx, "extracted pdf text", "path", path, "pages", pages, "chars", len(text))
	return text, nil
}

package pdfutil

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfchat/src/log"
)

// Page holds the extracted plain text of a single PDF page.
// Pages are numbered from 1.
type Page struct {
	Number    int
	Text      string
	HasTables bool
}

// ExtractPages extracts the plain text of every page in the document.
// Pages whose extraction fails are skipped; when no page yields text the
// whole document is extracted as a single page 1. A document that cannot
// be opened, or that contains no extractable text at all, is an error.
func ExtractPages(data []byte) (pages []Page, err error) {
	// ledongthuc/pdf panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			log.Debug("skipping page with unreadable text", "page", i, "error", pageErr.Error())
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, Page{
			Number:    i,
			Text:      text,
			HasTables: strings.Contains(text, "|"),
		})
	}

	if len(pages) > 0 {
		return pages, nil
	}

	return extractWholeDocument(reader)
}

func extractWholeDocument(reader *pdf.Reader) ([]Page, error) {
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	out, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted text: %w", err)
	}

	text := string(out)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document contains no extractable text")
	}

	return []Page{{
		Number:    1,
		Text:      text,
		HasTables: strings.Contains(text, "|"),
	}}, nil
}

package ingestion

import (
	"bytes"
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
)

// pdfPages returns the plain text of every page in page order.
func pdfPages(ctx context.Context, name string, data []byte) ([]string, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, &ParseError{Name: name, Message: "failed to create PDF parser", Cause: err}
	}

	docs, err := p.Parse(ctx, bytes.NewReader(data), parser.WithURI(name))
	if err != nil {
		return nil, &ParseError{Name: name, Message: "invalid PDF", Cause: err}
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(doc.Content))
	}
	return pages, nil
}

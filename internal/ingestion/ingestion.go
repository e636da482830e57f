// Package ingestion turns résumé and reference files into plain text and
// retrieval documents. PDF and plain text are supported; anything else is
// rejected with an UnsupportedTypeError.
package ingestion

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonathan/cover-letter-agent/internal/retrieval"
)

// Kind is the resolved type of an input file.
type Kind string

const (
	KindUnknown Kind = ""
	KindPDF     Kind = "pdf"
	KindText    Kind = "text"
	KindDOCX    Kind = "docx"
)

const (
	pdfMIME  = "application/pdf"
	textMIME = "text/plain"
	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// File is an uploaded or on-disk input.
type File struct {
	Name string
	// ContentType is the type declared by the uploader, if any.
	ContentType string
	Data        []byte
}

// Detect resolves the file kind from its content, then the declared content
// type, then the file extension. Structured text such as HTML, XML or JSON is
// unsupported whatever the declared type or extension says.
func Detect(f File) Kind {
	if len(f.Data) > 0 {
		m := mimetype.Detect(f.Data)
		if k := kindFromMIME(m.String()); k != KindUnknown {
			return k
		}
		if structuredText(m) {
			return KindUnknown
		}
	}
	if k := kindFromMIME(f.ContentType); k != KindUnknown {
		return k
	}
	return kindFromExtension(f.Name)
}

// structuredText reports a text subtype other than text/plain.
func structuredText(m *mimetype.MIME) bool {
	if m.Is(textMIME) {
		return false
	}
	for p := m.Parent(); p != nil; p = p.Parent() {
		if p.Is(textMIME) {
			return true
		}
	}
	return false
}

func kindFromMIME(contentType string) Kind {
	if contentType == "" {
		return KindUnknown
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return KindUnknown
	}
	switch mediaType {
	case pdfMIME:
		return KindPDF
	case textMIME:
		return KindText
	case docxMIME:
		return KindDOCX
	}
	return KindUnknown
}

func kindFromExtension(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".txt":
		return KindText
	case ".docx":
		return KindDOCX
	}
	return KindUnknown
}

// ExtractText returns the plain text of f. PDF pages are joined with newlines
// in page order.
func ExtractText(ctx context.Context, f File) (string, error) {
	switch kind := Detect(f); kind {
	case KindPDF:
		pages, err := pdfPages(ctx, f.Name, f.Data)
		if err != nil {
			return "", err
		}
		return strings.Join(pages, "\n"), nil
	case KindText:
		return NormalizeText(string(f.Data)), nil
	default:
		return "", unsupported(f, kind)
	}
}

// LoadDocuments converts f into retrieval documents: one per non-blank PDF page,
// or one for a text file. Blank inputs yield no documents.
func LoadDocuments(ctx context.Context, f File) ([]retrieval.Document, error) {
	switch kind := Detect(f); kind {
	case KindPDF:
		pages, err := pdfPages(ctx, f.Name, f.Data)
		if err != nil {
			return nil, err
		}
		docs := make([]retrieval.Document, 0, len(pages))
		for i, page := range pages {
			if page == "" {
				continue
			}
			docs = append(docs, retrieval.Document{
				SourceID: fmt.Sprintf("%s#page-%d", f.Name, i+1),
				Content:  page,
			})
		}
		return docs, nil
	case KindText:
		text := NormalizeText(string(f.Data))
		if text == "" {
			return nil, nil
		}
		return []retrieval.Document{{SourceID: f.Name, Content: text}}, nil
	default:
		return nil, unsupported(f, kind)
	}
}

func unsupported(f File, kind Kind) error {
	typ := ""
	if kind == KindDOCX {
		typ = docxMIME
	} else if m := detected(f); m != nil && structuredText(m) {
		typ, _, _ = mime.ParseMediaType(m.String())
	} else if f.ContentType != "" {
		typ = f.ContentType
	} else if len(f.Data) > 0 {
		typ = mimetype.Detect(f.Data).String()
	}
	return &UnsupportedTypeError{Name: f.Name, Type: typ}
}

func detected(f File) *mimetype.MIME {
	if len(f.Data) == 0 {
		return nil
	}
	return mimetype.Detect(f.Data)
}

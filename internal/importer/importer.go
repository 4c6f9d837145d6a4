// Package importer converts source files into lumidoc documents: sections
// from the heading structure, one span per sentence, and inline formatting
// lowered into inner tags.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*lumidoc.Document, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFor strips the extension off a filename for use as a fallback title.
func titleFor(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// newTextContent wraps spans in a text block.
func newTextContent(tagName string, spans []lumidoc.Span) lumidoc.Content {
	return lumidoc.Content{
		ID:          lumidoc.NewID("c"),
		TextContent: &lumidoc.TextContent{TagName: tagName, Spans: spans},
	}
}

package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// TextParser imports plain .txt files. Paragraphs are blank-line separated;
// plain text carries no heading structure, so everything lands in a single
// section titled after the file.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*lumidoc.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				// Hard wraps inside a paragraph collapse to spaces.
				current.WriteString(" ")
			}
			current.WriteString(strings.TrimSpace(line))
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := &lumidoc.Document{
		Metadata: &lumidoc.Metadata{Title: titleFor(filename)},
	}

	var contents []lumidoc.Content
	for _, para := range paragraphs {
		if spans := BuildSpans(para, nil); len(spans) > 0 {
			contents = append(contents, newTextContent("p", spans))
		}
	}
	if len(contents) > 0 {
		doc.Sections = append(doc.Sections, lumidoc.Section{
			ID:       lumidoc.NewID("sec"),
			Heading:  lumidoc.Heading{HeadingLevel: 1, Text: doc.Metadata.Title},
			Contents: contents,
		})
	}
	return doc, nil
}

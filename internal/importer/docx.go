package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// DOCXParser imports .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*lumidoc.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "lumiread-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	wordDoc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &lumidoc.Document{
		Metadata: &lumidoc.Metadata{Title: titleFor(filename)},
	}

	var stack []sectionFrame
	var abstract []lumidoc.Content
	appendContent := func(c lumidoc.Content) {
		if len(stack) == 0 {
			abstract = append(abstract, c)
			return
		}
		top := stack[len(stack)-1].section
		top.Contents = append(top.Contents, c)
	}

	for _, item := range wordDoc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		level := docxHeadingLevel(para)
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level > 0 {
			sec := &lumidoc.Section{
				ID:      lumidoc.NewID("sec"),
				Heading: lumidoc.Heading{HeadingLevel: level, Text: text},
			}
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				finished := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				attachSection(doc, stack, finished.section)
			}
			stack = append(stack, sectionFrame{section: sec, level: level})
			continue
		}
		if spans := BuildSpans(text, nil); len(spans) > 0 {
			appendContent(newTextContent("p", spans))
		}
	}
	for len(stack) > 0 {
		finished := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		attachSection(doc, stack, finished.section)
	}
	if len(abstract) > 0 {
		doc.Abstract = &lumidoc.Abstract{Contents: abstract}
	}
	return doc, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(para.Properties.Style.Val)
	style = strings.ReplaceAll(style, " ", "")
	for level := 1; level <= 6; level++ {
		if style == fmt.Sprintf("heading%d", level) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

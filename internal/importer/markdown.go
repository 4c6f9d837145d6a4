package importer

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// MarkdownParser imports Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*lumidoc.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &lumidoc.Document{
		Metadata: &lumidoc.Metadata{Title: titleFor(filename)},
	}

	// Track the current section nesting with a stack, keyed by heading
	// level. Content before the first heading becomes the abstract.
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

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			headingText, _ := inlineContent(node, src)
			sec := &lumidoc.Section{
				ID:      lumidoc.NewID("sec"),
				Heading: lumidoc.Heading{HeadingLevel: node.Level, Text: headingText},
			}
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				finished := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				attachSection(doc, stack, finished.section)
			}
			stack = append(stack, sectionFrame{section: sec, level: node.Level})

		case *ast.List:
			if list := listContent(node, src); list != nil {
				appendContent(lumidoc.Content{ID: lumidoc.NewID("c"), ListContent: list})
			}

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			code := blockLines(n, src)
			if strings.TrimSpace(code) != "" {
				span := lumidoc.Span{ID: lumidoc.NewID("s"), Text: code}
				appendContent(newTextContent("code", []lumidoc.Span{span}))
			}

		default:
			blockText, tags := inlineContent(n, src)
			if spans := BuildSpans(blockText, tags); len(spans) > 0 {
				appendContent(newTextContent("p", spans))
			}
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

// sectionFrame is one open section on the heading stack.
type sectionFrame struct {
	section *lumidoc.Section
	level   int
}

// attachSection hangs a finished section under the innermost open section,
// or at the document's top level when the stack is empty.
func attachSection(doc *lumidoc.Document, stack []sectionFrame, sec *lumidoc.Section) {
	if len(stack) == 0 {
		doc.Sections = append(doc.Sections, *sec)
		return
	}
	parent := stack[len(stack)-1].section
	parent.SubSections = append(parent.SubSections, *sec)
}

// listContent converts a markdown list, recursing into nested sub-lists.
func listContent(list *ast.List, src []byte) *lumidoc.ListContent {
	out := &lumidoc.ListContent{IsOrdered: list.IsOrdered()}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var li lumidoc.ListItem
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				li.SubListContent = listContent(nested, src)
				continue
			}
			blockText, tags := inlineContent(child, src)
			li.Spans = append(li.Spans, BuildSpans(blockText, tags)...)
		}
		if len(li.Spans) > 0 || li.SubListContent != nil {
			out.ListItems = append(out.ListItems, li)
		}
	}
	if len(out.ListItems) == 0 {
		return nil
	}
	return out
}

// inlineContent walks a block's inline children, producing the plain text
// and the inner tags covering it. Tag offsets are rune indices; child tag
// offsets are relative to their parent tag's start.
func inlineContent(n ast.Node, src []byte) (string, []lumidoc.InnerTag) {
	var sb strings.Builder
	var tags []lumidoc.InnerTag
	runes := 0

	var walk func(n ast.Node)
	emit := func(s string) {
		sb.WriteString(s)
		runes += len([]rune(s))
	}
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				emit(string(node.Value(src)))
				if node.HardLineBreak() || node.SoftLineBreak() {
					emit("\n")
				}
			case *ast.String:
				emit(string(node.Value))
			case *ast.Emphasis:
				kind := lumidoc.TagEm
				if node.Level >= 2 {
					kind = lumidoc.TagStrong
				}
				tags = append(tags, nestedTag(c, src, kind, nil, &sb, &runes))
			case *ast.CodeSpan:
				tags = append(tags, nestedTag(c, src, lumidoc.TagCode, nil, &sb, &runes))
			case *ast.Link:
				meta := map[string]string{"href": string(node.Destination)}
				tags = append(tags, nestedTag(c, src, lumidoc.TagLink, meta, &sb, &runes))
			case *ast.AutoLink:
				url := string(node.URL(src))
				start := runes
				emit(url)
				tags = append(tags, lumidoc.InnerTag{
					ID:       lumidoc.NewID("t"),
					TagName:  lumidoc.TagLink,
					Metadata: map[string]string{"href": url},
					Position: lumidoc.Position{StartIndex: start, EndIndex: runes},
				})
			case *ast.Image:
				// Block-level concern; inline images contribute no text.
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String(), tags
}

// nestedTag captures an inline container node as a tag whose children are
// the tags found inside it.
func nestedTag(n ast.Node, src []byte, kind lumidoc.TagKind, meta map[string]string, sb *strings.Builder, runes *int) lumidoc.InnerTag {
	innerText, childTags := inlineContent(n, src)
	start := *runes
	sb.WriteString(innerText)
	*runes += len([]rune(innerText))
	return lumidoc.InnerTag{
		ID:       lumidoc.NewID("t"),
		TagName:  kind,
		Metadata: meta,
		Position: lumidoc.Position{StartIndex: start, EndIndex: *runes},
		Children: childTags,
	}
}

// blockLines joins the raw source lines of a literal block.
func blockLines(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

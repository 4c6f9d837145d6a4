package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// HTMLParser imports HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*lumidoc.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &lumidoc.Document{
		Metadata: &lumidoc.Metadata{Title: titleFor(filename)},
	}
	if title := findElementText(root, "title"); title != "" {
		doc.Metadata.Title = title
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

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				sec := &lumidoc.Section{
					ID:      lumidoc.NewID("sec"),
					Heading: lumidoc.Heading{HeadingLevel: level, Text: nodeText(n)},
				}
				for len(stack) > 0 && stack[len(stack)-1].level >= level {
					finished := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					attachSection(doc, stack, finished.section)
				}
				stack = append(stack, sectionFrame{section: sec, level: level})
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "blockquote", "td":
				text, tags := htmlInline(n)
				if spans := BuildSpans(text, tags); len(spans) > 0 {
					appendContent(newTextContent("p", spans))
				}
				return
			case "pre":
				if code := nodeText(n); code != "" {
					span := lumidoc.Span{ID: lumidoc.NewID("s"), Text: code}
					appendContent(newTextContent("code", []lumidoc.Span{span}))
				}
				return
			case "ul", "ol":
				if list := htmlList(n); list != nil {
					appendContent(lumidoc.Content{ID: lumidoc.NewID("c"), ListContent: list})
				}
				return
			case "figure":
				if fig := htmlFigure(n); fig != nil {
					appendContent(*fig)
				}
				return
			case "img":
				appendContent(lumidoc.Content{ID: lumidoc.NewID("c"), ImageContent: htmlImage(n)})
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
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

// inlineKinds maps inline HTML elements to tag kinds.
var inlineKinds = map[string]lumidoc.TagKind{
	"b":      lumidoc.TagBold,
	"strong": lumidoc.TagStrong,
	"i":      lumidoc.TagItalic,
	"em":     lumidoc.TagEm,
	"u":      lumidoc.TagUnderline,
	"code":   lumidoc.TagCode,
	"a":      lumidoc.TagLink,
}

// htmlInline extracts a block element's plain text and inner tags. Child tag
// offsets are relative to their parent tag's start.
func htmlInline(n *html.Node) (string, []lumidoc.InnerTag) {
	return htmlInlineNodes(childNodes(n))
}

func htmlInlineNodes(nodes []*html.Node) (string, []lumidoc.InnerTag) {
	var sb strings.Builder
	var tags []lumidoc.InnerTag
	runes := 0

	for _, c := range nodes {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
			runes += len([]rune(c.Data))
		case c.Type == html.ElementNode:
			if kind, ok := inlineKinds[c.Data]; ok {
				innerText, childTags := htmlInline(c)
				start := runes
				sb.WriteString(innerText)
				runes += len([]rune(innerText))
				var meta map[string]string
				if kind == lumidoc.TagLink {
					meta = map[string]string{"href": attrValue(c, "href")}
				}
				tags = append(tags, lumidoc.InnerTag{
					ID:       lumidoc.NewID("t"),
					TagName:  kind,
					Metadata: meta,
					Position: lumidoc.Position{StartIndex: start, EndIndex: runes},
					Children: childTags,
				})
				continue
			}
			// Unknown inline elements contribute their text and lift any
			// tags found inside them to this level.
			innerText, childTags := htmlInline(c)
			for i := range childTags {
				childTags[i].Position.StartIndex += runes
				childTags[i].Position.EndIndex += runes
			}
			tags = append(tags, childTags...)
			sb.WriteString(innerText)
			runes += len([]rune(innerText))
		}
	}
	return sb.String(), tags
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// htmlList converts ul/ol elements, recursing into nested lists.
func htmlList(n *html.Node) *lumidoc.ListContent {
	out := &lumidoc.ListContent{IsOrdered: n.Data == "ol"}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var item lumidoc.ListItem
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				item.SubListContent = htmlList(c)
			}
		}
		text, tags := htmlItemInline(li)
		item.Spans = BuildSpans(text, tags)
		if len(item.Spans) > 0 || item.SubListContent != nil {
			out.ListItems = append(out.ListItems, item)
		}
	}
	if len(out.ListItems) == 0 {
		return nil
	}
	return out
}

// htmlItemInline is htmlInline minus nested list elements, which are lifted
// into sub-lists instead.
func htmlItemInline(li *html.Node) (string, []lumidoc.InnerTag) {
	var keep []*html.Node
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		keep = append(keep, c)
	}
	return htmlInlineNodes(keep)
}

// htmlFigure converts a figure element into image or figure content.
func htmlFigure(n *html.Node) *lumidoc.Content {
	var images []lumidoc.ImageContent
	var caption *lumidoc.Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "img":
			images = append(images, *htmlImage(c))
		case "figcaption":
			if text := nodeText(c); text != "" {
				caption = &lumidoc.Span{ID: lumidoc.NewID("s"), Text: text}
			}
		}
	}
	switch {
	case len(images) == 0:
		return nil
	case len(images) == 1:
		img := images[0]
		img.Caption = caption
		return &lumidoc.Content{ID: lumidoc.NewID("c"), ImageContent: &img}
	default:
		return &lumidoc.Content{
			ID:            lumidoc.NewID("c"),
			FigureContent: &lumidoc.FigureContent{Images: images, Caption: caption},
		}
	}
}

func htmlImage(n *html.Node) *lumidoc.ImageContent {
	return &lumidoc.ImageContent{
		StoragePath: attrValue(n, "src"),
		AltText:     attrValue(n, "alt"),
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findElementText(n *html.Node, tag string) string {
	if el := findElement(n, tag); el != nil {
		return nodeText(el)
	}
	return ""
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

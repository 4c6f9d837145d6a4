package answer

import (
	"regexp"
	"strings"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

var citationRe = regexp.MustCompile(regexp.QuoteMeta(CitationPrefix) + `([^\]\s]+)` + regexp.QuoteMeta(CitationSuffix))

// RewriteCitations replaces citation markers in the response contents with
// zero-width spanref tags pointing at the cited span. Markers naming a span
// the document does not contain are removed without a tag. Existing tag
// offsets are shifted to account for the removed marker text.
func RewriteCitations(contents []lumidoc.Content, known map[string]struct{}) {
	for i := range contents {
		rewriteContent(&contents[i], known)
	}
}

func rewriteContent(c *lumidoc.Content, known map[string]struct{}) {
	if c.TextContent != nil {
		for i := range c.TextContent.Spans {
			rewriteSpan(&c.TextContent.Spans[i], known)
		}
	}
	if c.ListContent != nil {
		rewriteList(c.ListContent, known)
	}
}

func rewriteList(list *lumidoc.ListContent, known map[string]struct{}) {
	for i := range list.ListItems {
		for j := range list.ListItems[i].Spans {
			rewriteSpan(&list.ListItems[i].Spans[j], known)
		}
		if sub := list.ListItems[i].SubListContent; sub != nil {
			rewriteList(sub, known)
		}
	}
}

// edit records one removed marker: its rune range in the original text and
// the span id it cited (empty when the citation was invalid).
type edit struct {
	start, end int
	spanID     string
}

func rewriteSpan(span *lumidoc.Span, known map[string]struct{}) {
	matches := citationRe.FindAllStringSubmatchIndex(span.Text, -1)
	if len(matches) == 0 {
		return
	}

	// Byte offsets from the regexp convert to rune offsets for editing.
	byteToRune := make(map[int]int, len(span.Text)+1)
	r := 0
	for b := range span.Text {
		byteToRune[b] = r
		r++
	}
	byteToRune[len(span.Text)] = r

	var edits []edit
	for _, m := range matches {
		id := span.Text[m[2]:m[3]]
		e := edit{start: byteToRune[m[0]], end: byteToRune[m[1]]}
		if _, ok := known[id]; ok {
			e.spanID = id
		}
		edits = append(edits, e)
	}

	runes := []rune(span.Text)
	var sb strings.Builder
	var tags []lumidoc.InnerTag
	removed := 0
	prev := 0
	for _, e := range edits {
		sb.WriteString(string(runes[prev:e.start]))
		at := e.start - removed
		if e.spanID != "" {
			tags = append(tags, lumidoc.InnerTag{
				ID:       lumidoc.NewID("t"),
				TagName:  lumidoc.TagSpanRef,
				Metadata: map[string]string{"span_id": e.spanID},
				Position: lumidoc.Position{StartIndex: at, EndIndex: at},
			})
		}
		removed += e.end - e.start
		prev = e.end
	}
	sb.WriteString(string(runes[prev:]))

	// Shift pre-existing formatting tags left past the removed markers.
	for _, tag := range span.InnerTags {
		tag.Position.StartIndex = shiftOffset(tag.Position.StartIndex, edits)
		tag.Position.EndIndex = shiftOffset(tag.Position.EndIndex, edits)
		tags = append(tags, tag)
	}

	span.Text = sb.String()
	span.InnerTags = tags
}

// shiftOffset maps an offset in the original text to the edited text.
func shiftOffset(off int, edits []edit) int {
	removed := 0
	for _, e := range edits {
		if off <= e.start {
			break
		}
		if off >= e.end {
			removed += e.end - e.start
			continue
		}
		// Inside a marker: snap to its start.
		return e.start - removed
	}
	return off - removed
}

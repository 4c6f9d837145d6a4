// Package selection reconstructs which document spans a raw text selection
// covers. It operates on the rendered tree, which follows a fixed
// convention: each span renders as a UnitTag element carrying the span id,
// whose children are one "span" element per character interleaved with
// non-character marker elements (citation and footnote badges) at their
// insertion offsets. The resolver is stateless and purely functional; every
// failure mode returns nil rather than an error, since it runs inside a
// live selection-change handler.
package selection

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

const (
	// UnitTag is the element name of a span-rendering unit.
	UnitTag = "lumi-span"
	// SpanIDAttr carries the rendered span's document id.
	SpanIDAttr = "span-id"
	// AnchorTag is the plain element the follow-up UI anchors to.
	AnchorTag = "span"
)

// markerTags are the non-character inline elements interleaved between
// character containers. They occupy child positions but no text offsets.
var markerTags = map[string]bool{
	"lumi-ref":      true,
	"lumi-footnote": true,
}

// Selection is the host's live selection: the stringified text plus the
// boundary nodes of its active range (either text nodes or elements inside a
// span-rendering unit).
type Selection struct {
	Text  string
	Start *html.Node
	End   *html.Node
}

// SpanRange is one selected sub-range of one span, half-open in text space.
type SpanRange struct {
	SpanID   string
	Position lumidoc.Position
}

// Result describes a resolved selection.
type Result struct {
	Text   string
	Anchor *html.Node
	Spans  []SpanRange
}

// Resolve maps a selection to span ids and text-space offsets. It returns
// nil when the selection is empty after trimming, a boundary does not sit
// inside an identifiable span-rendering unit, no anchor element exists, or
// the start and end units are not flat siblings of the same container.
func Resolve(sel Selection) *Result {
	text := strings.TrimSpace(sel.Text)
	if text == "" || sel.Start == nil || sel.End == nil {
		return nil
	}

	startUnit, startID := closestUnit(sel.Start)
	endUnit, endID := closestUnit(sel.End)
	if startUnit == nil || endUnit == nil || startID == "" || endID == "" {
		return nil
	}

	anchor := closestElement(sel.Start, AnchorTag)
	if anchor == nil {
		return nil
	}

	startOffset, ok := charOffset(startUnit, sel.Start)
	if !ok {
		return nil
	}
	endOffset, ok := charOffset(endUnit, sel.End)
	if !ok {
		return nil
	}

	if startUnit == endUnit {
		return &Result{
			Text:   text,
			Anchor: anchor,
			Spans: []SpanRange{{
				SpanID:   startID,
				Position: lumidoc.Position{StartIndex: startOffset, EndIndex: endOffset + 1},
			}},
		}
	}

	// Walk forward through sibling units until the end unit. Middle units
	// are fully selected. End boundaries are inclusive and converted to
	// half-open with +1; a unit selected through its end takes the
	// end-of-text position, so its range ends at text length + 1.
	spans := []SpanRange{{
		SpanID:   startID,
		Position: lumidoc.Position{StartIndex: startOffset, EndIndex: unitTextLen(startUnit) + 1},
	}}
	for unit := nextUnit(startUnit); ; unit = nextUnit(unit) {
		if unit == nil {
			return nil
		}
		id := spanID(unit)
		if id == "" {
			return nil
		}
		if unit == endUnit {
			spans = append(spans, SpanRange{
				SpanID:   id,
				Position: lumidoc.Position{StartIndex: 0, EndIndex: endOffset + 1},
			})
			break
		}
		spans = append(spans, SpanRange{
			SpanID:   id,
			Position: lumidoc.Position{StartIndex: 0, EndIndex: unitTextLen(unit) + 1},
		})
	}
	return &Result{Text: text, Anchor: anchor, Spans: spans}
}

// charOffset computes a boundary's offset in text space: the index of its
// character container among the unit's element children, minus the marker
// elements preceding it.
func charOffset(unit, boundary *html.Node) (int, bool) {
	container := directChild(unit, boundary)
	if container == nil {
		return 0, false
	}
	index := 0
	markers := 0
	for child := unit.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if child == container {
			return index - markers, true
		}
		if markerTags[child.Data] {
			markers++
		}
		index++
	}
	return 0, false
}

// unitTextLen counts a unit's character containers, i.e. its rendered text
// length.
func unitTextLen(unit *html.Node) int {
	n := 0
	for child := unit.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && !markerTags[child.Data] {
			n++
		}
	}
	return n
}

// directChild ascends from a boundary node to the unit's immediate child
// containing it, or nil when the boundary is outside the unit.
func directChild(unit, n *html.Node) *html.Node {
	for n != nil && n.Parent != unit {
		n = n.Parent
	}
	return n
}

// closestUnit finds the nearest ancestor-or-self span-rendering unit and its
// span id.
func closestUnit(n *html.Node) (*html.Node, string) {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == UnitTag {
			return n, spanID(n)
		}
	}
	return nil, ""
}

// closestElement finds the nearest ancestor-or-self element with the given
// tag. The anchor lookup uses this with the plain span tag, which is
// distinct from the unit element lookup.
func closestElement(n *html.Node, tag string) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

// nextUnit returns the next sibling span-rendering unit, skipping interleaved
// non-element nodes. Only flat siblings are considered.
func nextUnit(n *html.Node) *html.Node {
	for n = n.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == UnitTag {
			return n
		}
	}
	return nil
}

func spanID(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == SpanIDAttr {
			return attr.Val
		}
	}
	return ""
}

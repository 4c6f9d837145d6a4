// Package compose turns a span's text, its inline tags, and any overlaid
// highlights into a per-character rendering decision: which formatting kinds
// and highlight colors are active at each index, where reference markers are
// inserted, and which math runs render as single equation units.
package compose

import "github.com/lumiread/lumiread/internal/lumidoc"

// Flatten normalizes a span's nested inner tags into a flat list with
// offsets in the span's own coordinate space. Each tag is emitted first,
// with its Children cleared, immediately followed by its flattened subtree,
// then its siblings. Child offsets are rebased onto the parent's absolute
// start. Out-of-range or overlapping offsets are passed through untouched;
// consumers clip defensively.
func Flatten(tags []lumidoc.InnerTag) []lumidoc.InnerTag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]lumidoc.InnerTag, 0, len(tags))
	flattenInto(tags, 0, &out)
	return out
}

func flattenInto(tags []lumidoc.InnerTag, base int, out *[]lumidoc.InnerTag) {
	for _, tag := range tags {
		abs := tag
		abs.Position.StartIndex = base + tag.Position.StartIndex
		abs.Position.EndIndex = base + tag.Position.EndIndex
		children := tag.Children
		abs.Children = nil
		*out = append(*out, abs)
		flattenInto(children, abs.Position.StartIndex, out)
	}
}

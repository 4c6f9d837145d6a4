package compose

import "github.com/lumiread/lumiread/internal/lumidoc"

// ActiveTag is one formatting kind active at a character, carrying the
// metadata of the earliest tag of that kind to mark the position.
type ActiveTag struct {
	Kind     lumidoc.TagKind
	TagID    string
	Metadata map[string]string
}

// CharDecision is the merged rendering decision for one character.
type CharDecision struct {
	Tags       []ActiveTag
	Highlights []lumidoc.Highlight
}

// Composition is the full decision table for one span. Offsets are rune
// indices. Insertions maps an offset to the reference-like tags anchored
// there, in tag-declaration order; offset len(runes) anchors after the last
// character.
type Composition struct {
	Text       string
	Plain      bool
	Chars      []CharDecision
	Insertions map[int][]lumidoc.InnerTag

	runes []rune
}

// Compose builds the decision table for a span's text. Tags must already be
// flattened (see Flatten); highlights with a nil position cover the whole
// span. Marks outside [0, len) are dropped, so malformed tag offsets cannot
// corrupt neighboring characters. When there is nothing to compose, the
// plain fast path skips the table entirely.
func Compose(text string, tags []lumidoc.InnerTag, highlights []lumidoc.Highlight) *Composition {
	c := &Composition{Text: text, runes: []rune(text)}

	if len(tags) == 0 && len(highlights) == 0 {
		c.Plain = true
		return c
	}

	n := len(c.runes)
	c.Chars = make([]CharDecision, n)
	c.Insertions = make(map[int][]lumidoc.InnerTag)

	for _, tag := range tags {
		// Every tag kind is either a character-range formatting mark or an
		// insertion anchored at its start offset. The case lists are the
		// closed TagKind set; a new kind must be added to one of them.
		switch tag.TagName {
		case lumidoc.TagReference, lumidoc.TagSpanRef, lumidoc.TagFootnote:
			at := clamp(tag.Position.StartIndex, 0, n)
			c.Insertions[at] = append(c.Insertions[at], tag)
		case lumidoc.TagBold, lumidoc.TagStrong, lumidoc.TagItalic, lumidoc.TagEm,
			lumidoc.TagUnderline, lumidoc.TagCode, lumidoc.TagLink,
			lumidoc.TagMath, lumidoc.TagMathDisplay, lumidoc.TagConcept:
			c.markTag(tag, n)
		}
	}

	for _, h := range highlights {
		start, end := 0, n
		if h.Position != nil {
			start = clamp(h.Position.StartIndex, 0, n)
			end = clamp(h.Position.EndIndex, 0, n)
		}
		for i := start; i < end; i++ {
			c.Chars[i].Highlights = append(c.Chars[i].Highlights, h)
		}
	}

	if len(c.Insertions) == 0 {
		plain := true
		for i := range c.Chars {
			if len(c.Chars[i].Tags) != 0 || len(c.Chars[i].Highlights) != 0 {
				plain = false
				break
			}
		}
		c.Plain = plain
	}
	return c
}

func (c *Composition) markTag(tag lumidoc.InnerTag, n int) {
	start := clamp(tag.Position.StartIndex, 0, n)
	end := clamp(tag.Position.EndIndex, 0, n)
	for i := start; i < end; i++ {
		if c.Chars[i].hasKind(tag.TagName) {
			// Earlier-registered metadata for the same kind wins.
			continue
		}
		c.Chars[i].Tags = append(c.Chars[i].Tags, ActiveTag{
			Kind:     tag.TagName,
			TagID:    tag.ID,
			Metadata: tag.Metadata,
		})
	}
}

func (d *CharDecision) hasKind(kind lumidoc.TagKind) bool {
	for _, t := range d.Tags {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

func (d *CharDecision) mathKind() (lumidoc.TagKind, bool) {
	for _, t := range d.Tags {
		if t.Kind == lumidoc.TagMath || t.Kind == lumidoc.TagMathDisplay {
			return t.Kind, true
		}
	}
	return "", false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

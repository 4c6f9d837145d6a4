package importer

import (
	"strings"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// Sentence splitting and span construction. Block text is split into one
// span per sentence; inner tags (offsets relative to the block text) are
// distributed to the sentences they overlap, clamped to sentence bounds.

type sentenceRange struct {
	start, end int // rune offsets into the block text
}

// splitSentences finds sentence boundaries: a period, exclamation, or
// question mark followed by whitespace ends a sentence. Offsets are rune
// indices; leading/trailing whitespace is excluded from each range.
func splitSentences(text string) []sentenceRange {
	runes := []rune(text)
	var out []sentenceRange
	start := 0
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && isSpace(runes[i+1]) {
			if rng, ok := trimRange(runes, start, i+1); ok {
				out = append(out, rng)
			}
			start = i + 1
		}
	}
	if rng, ok := trimRange(runes, start, len(runes)); ok {
		out = append(out, rng)
	}
	return out
}

func trimRange(runes []rune, start, end int) (sentenceRange, bool) {
	for start < end && isSpace(runes[start]) {
		start++
	}
	for end > start && isSpace(runes[end-1]) {
		end--
	}
	if start == end {
		return sentenceRange{}, false
	}
	return sentenceRange{start: start, end: end}, true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// BuildSpans splits block text into sentence spans and distributes the
// block's inner tags onto them. A tag overlapping several sentences is
// copied to each with its range clamped; a tag that lands in no sentence
// (e.g. a trailing zero-width reference) becomes an empty span of its own so
// the marker is not lost.
func BuildSpans(text string, tags []lumidoc.InnerTag) []lumidoc.Span {
	if strings.TrimSpace(text) == "" && len(tags) == 0 {
		return nil
	}

	runes := []rune(text)
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return []lumidoc.Span{{ID: lumidoc.NewID("s"), Text: text, InnerTags: tags}}
	}

	spans := make([]lumidoc.Span, 0, len(sentences))
	placed := make(map[string]bool)
	for _, sent := range sentences {
		sentTags := adjustTags(tags, 0, sent.start, sent.end-sent.start)
		for _, tag := range sentTags {
			placed[tag.ID] = true
		}
		spans = append(spans, lumidoc.Span{
			ID:        lumidoc.NewID("s"),
			Text:      string(runes[sent.start:sent.end]),
			InnerTags: sentTags,
		})
	}

	for _, tag := range tags {
		if placed[tag.ID] {
			continue
		}
		orphan := tag
		orphan.Position = lumidoc.Position{}
		orphan.Children = nil
		spans = append(spans, lumidoc.Span{
			ID:        lumidoc.NewID("s"),
			InnerTags: []lumidoc.InnerTag{orphan},
		})
	}
	return spans
}

// adjustTags recursively rebases tags onto one output coordinate space.
// parentAbs is the absolute start of the enclosing tag (0 at the top level),
// origin the absolute offset of the output space, and limit its length.
// Child offsets stay relative to their clamped parent.
func adjustTags(tags []lumidoc.InnerTag, parentAbs, origin, limit int) []lumidoc.InnerTag {
	var out []lumidoc.InnerTag
	for _, tag := range tags {
		absStart := parentAbs + tag.Position.StartIndex
		absEnd := parentAbs + tag.Position.EndIndex
		if absStart > origin+limit || absEnd < origin {
			continue
		}
		adjusted := tag
		adjusted.Position = lumidoc.Position{
			StartIndex: max(0, absStart-origin),
			EndIndex:   min(limit, absEnd-origin),
		}
		if len(tag.Children) > 0 {
			adjusted.Children = adjustTags(tag.Children, absStart,
				origin+adjusted.Position.StartIndex,
				adjusted.Position.EndIndex-adjusted.Position.StartIndex)
		}
		out = append(out, adjusted)
	}
	return out
}

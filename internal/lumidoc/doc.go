// Package lumidoc defines the in-memory document model consumed by the
// reading engine: a tree of sections, content blocks, and addressable text
// spans with nested inline annotations. Values are constructed once at
// document-load time and treated as immutable afterwards.
package lumidoc

// Position is a half-open [StartIndex, EndIndex) character range. Offsets are
// rune indices into the owning text.
type Position struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// Highlight is a colored interval overlaid on a span. A nil Position means
// the whole span. AnswerID carries the originating answer for highlights
// derived from Q&A history.
type Highlight struct {
	Color    string    `json:"color"`
	SpanID   string    `json:"span_id"`
	Position *Position `json:"position,omitempty"`
	AnswerID string    `json:"answer_id,omitempty"`
}

// TagKind identifies an inline annotation. The set is closed: the compositor
// switches exhaustively over these values, so adding a kind is a compile-time
// decision, not a silently ignored default.
type TagKind string

const (
	TagBold        TagKind = "b"
	TagStrong      TagKind = "strong"
	TagItalic      TagKind = "i"
	TagEm          TagKind = "em"
	TagUnderline   TagKind = "u"
	TagCode        TagKind = "code"
	TagLink        TagKind = "a"
	TagMath        TagKind = "math"
	TagMathDisplay TagKind = "math_display"
	TagReference   TagKind = "ref"
	TagSpanRef     TagKind = "spanref"
	TagFootnote    TagKind = "footnote"
	TagConcept     TagKind = "concept"
)

// InnerTag annotates a sub-range of a span's text. Position is relative to
// the parent's coordinate space: the span itself for top-level tags, the
// enclosing tag's start for children. Child ranges are not validated against
// their parent's range; malformed input is tolerated and clipped downstream.
type InnerTag struct {
	ID       string            `json:"id"`
	TagName  TagKind           `json:"tag_name"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Position Position          `json:"position"`
	Children []InnerTag        `json:"children,omitempty"`
}

// Span is the atomic addressable unit of document text. IDs are unique
// across the whole document; Text is immutable once constructed.
type Span struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	InnerTags []InnerTag `json:"inner_tags"`
}

// Heading is a section heading. Level is 1-6; Text may be empty.
type Heading struct {
	HeadingLevel int    `json:"heading_level"`
	Text         string `json:"text"`
}

// TextContent is a run of spans under a block tag (p, code, pre, caption...).
type TextContent struct {
	TagName string `json:"tag_name"`
	Spans   []Span `json:"spans"`
}

// ImageContent is a single image with an optional caption span.
type ImageContent struct {
	StoragePath string  `json:"storage_path"`
	AltText     string  `json:"alt_text"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Caption     *Span   `json:"caption,omitempty"`
}

// FigureContent groups several images under one caption.
type FigureContent struct {
	Images  []ImageContent `json:"images"`
	Caption *Span          `json:"caption,omitempty"`
}

// HTMLFigureContent is a raw HTML figure with an optional caption span.
type HTMLFigureContent struct {
	HTML    string `json:"html"`
	Caption *Span  `json:"caption,omitempty"`
}

// ListItem holds the spans of one list entry plus an optional nested list.
type ListItem struct {
	Spans          []Span       `json:"spans"`
	SubListContent *ListContent `json:"sub_list_content,omitempty"`
}

// ListContent is an ordered or unordered list, recursively nestable.
type ListContent struct {
	ListItems []ListItem `json:"list_items"`
	IsOrdered bool       `json:"is_ordered"`
}

// Content is a tagged union of block variants: exactly one field is non-nil.
type Content struct {
	ID                string             `json:"id"`
	TextContent       *TextContent       `json:"text_content,omitempty"`
	ListContent       *ListContent       `json:"list_content,omitempty"`
	ImageContent      *ImageContent      `json:"image_content,omitempty"`
	FigureContent     *FigureContent     `json:"figure_content,omitempty"`
	HTMLFigureContent *HTMLFigureContent `json:"html_figure_content,omitempty"`
}

// Section is a heading plus its content blocks and subsections, to arbitrary
// depth. Collapse state lives outside the node (see internal/viewstate).
type Section struct {
	ID          string    `json:"id"`
	Heading     Heading   `json:"heading"`
	Contents    []Content `json:"contents"`
	SubSections []Section `json:"sub_sections,omitempty"`
}

// Abstract holds the content blocks preceding the first section.
type Abstract struct {
	Contents []Content `json:"contents"`
}

// Reference is one bibliography entry.
type Reference struct {
	ID   string `json:"id"`
	Span Span   `json:"span"`
}

// Footnote is one footnote body, addressed by footnote markers in the text.
type Footnote struct {
	ID   string `json:"id"`
	Span Span   `json:"span"`
}

// ConceptEntry is a label/value pair inside a concept card.
type ConceptEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Concept is an extracted key concept with its card contents.
type Concept struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Contents []ConceptEntry `json:"contents"`
}

// Metadata describes the source paper.
type Metadata struct {
	PaperID   string   `json:"paper_id"`
	Version   string   `json:"version"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Summary   string   `json:"summary"`
	Published string   `json:"published_timestamp,omitempty"`
	Updated   string   `json:"updated_timestamp,omitempty"`
}

// Document is the immutable root: abstract, top-level sections, references,
// footnotes, and concepts. Span IDs are unique across all of them.
type Document struct {
	Abstract   *Abstract   `json:"abstract,omitempty"`
	Sections   []Section   `json:"sections"`
	References []Reference `json:"references,omitempty"`
	Footnotes  []Footnote  `json:"footnotes,omitempty"`
	Concepts   []Concept   `json:"concepts,omitempty"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
}

// Title returns the document title, falling back to empty when no metadata
// was supplied by the importer.
func (d *Document) Title() string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	return d.Metadata.Title
}

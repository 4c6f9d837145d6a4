package lumidoc

// HighlightSelection names one highlighted sub-range of a span inside an
// answer request. A nil Position selects the whole span.
type HighlightSelection struct {
	SpanID   string    `json:"span_id"`
	Position *Position `json:"position,omitempty"`
}

// ImageInfo points an answer request at an image instead of text.
type ImageInfo struct {
	ImageStoragePath string `json:"image_storage_path"`
	Caption          string `json:"caption,omitempty"`
}

// AnswerRequest is what the user asked: a free-form query, highlighted text,
// the span ranges the highlight covers, an image, or a combination.
type AnswerRequest struct {
	Query            string               `json:"query,omitempty"`
	Highlight        string               `json:"highlight,omitempty"`
	HighlightedSpans []HighlightSelection `json:"highlighted_spans,omitempty"`
	Image            *ImageInfo           `json:"image,omitempty"`
}

// Answer is one generated answer: the originating request plus the response
// rendered as document content blocks so it shares the span machinery.
type Answer struct {
	ID              string        `json:"id"`
	Request         AnswerRequest `json:"request"`
	ResponseContent []Content     `json:"response_content"`
	Timestamp       int64         `json:"timestamp"`
}

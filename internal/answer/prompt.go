package answer

import (
	"fmt"
	"strings"

	"github.com/lumiread/lumiread/internal/lumidoc"
)

// Citation markers the model is instructed to emit. A citation names the id
// of the sentence span the statement is drawn from.
const (
	CitationPrefix = "[[cite-"
	CitationSuffix = "]]"
)

const answerPreamble = `You are a helpful research assistant. You will be given a list of sentences from a document, and a user request.
Your task is to respond to the user's request based on general knowledge and on the information contained in the provided sentences.

Be concise and do not make up information. Open with an 8-10 word quick response in markdown bold; the whole answer should be 1-2 sentences (10-50 words). Put important words in markdown bold to make the answer easier to scan.

Rules:
- Preserve bold and italic formatting from the source sentences.
- Wrap all mathematical formulas, equations, and variables in dollar signs, e.g. $E = mc^2$.
- When you use information from a sentence, cite it by appending ` + CitationPrefix + `id` + CitationSuffix + ` where id is the id of that sentence. Example: some text ` + CitationPrefix + `s1` + CitationSuffix + `.
- Multiple citations in a row appear one after another: ` + CitationPrefix + `s1` + CitationSuffix + ` ` + CitationPrefix + `s2` + CitationSuffix + `.`

// BuildPrompt selects the prompt shape for the request: a question, a
// highlighted passage to define, both, or an image question. spansString is
// the formatted sentence context.
func BuildPrompt(doc *lumidoc.Document, req *lumidoc.AnswerRequest, spansString string) (string, error) {
	var sb strings.Builder
	sb.WriteString(answerPreamble)
	sb.WriteString("\n\n")
	sb.WriteString(metadataBlock(doc))
	sb.WriteString("Here are the sentences from the document:\n")
	sb.WriteString(spansString)
	sb.WriteString("\n")

	highlight := req.Highlight

	switch {
	case req.Image != nil && req.Query != "":
		fmt.Fprintf(&sb, "\nThe user has asked the following question about a figure: %q\nThe figure has the following caption: %q\n\nPlease provide a concise answer to the question, using the figure's caption as context.\n",
			req.Query, req.Image.Caption)
	case req.Image != nil:
		fmt.Fprintf(&sb, "\nThe user has a question about a figure with the following caption: %q\n\nPlease provide a concise explanation of the figure, using the caption as context.\n",
			req.Image.Caption)
	case req.Query != "" && highlight != "":
		fmt.Fprintf(&sb, "\nThe user has highlighted the following text: %q\nAnd has asked the following question: %q\n\nPlease provide a concise answer to the question, using the highlighted text as context.\n",
			highlight, req.Query)
	case req.Query != "":
		fmt.Fprintf(&sb, "\nThe user has asked the following question: %q\n\nPlease provide a concise answer to the question.\n", req.Query)
	case highlight != "":
		fmt.Fprintf(&sb, "\nThe user has highlighted the following text and wants a definition: %q\n\nPlease provide a concise definition or explanation of the highlighted text.\n", highlight)
	default:
		return "", fmt.Errorf("request must include a query, a highlight, or an image")
	}
	return sb.String(), nil
}

func metadataBlock(doc *lumidoc.Document) string {
	if doc == nil || doc.Metadata == nil {
		return ""
	}
	m := doc.Metadata
	var sb strings.Builder
	sb.WriteString("Document Metadata:\n")
	fmt.Fprintf(&sb, "Title: %s\n", m.Title)
	if len(m.Authors) > 0 {
		fmt.Fprintf(&sb, "Authors: %s\n", strings.Join(m.Authors, ", "))
	}
	if m.Published != "" {
		fmt.Fprintf(&sb, "Published: %s\n", m.Published)
	}
	sb.WriteString("\n")
	return sb.String()
}

package vision

import (
	"context"
	"io"
)

// SuggestionPrompt is the shared prompt used by all vision backends. The
// pipe-separated line format keeps parsing trivial across models.
const SuggestionPrompt = `This is a product photo from a sweet shop (candy store).
Identify each distinct confectionery product you can see. For each one provide:
name, category (e.g. Chocolate, Gummies, Hard Candy, Fudge, Licorice), and any
relevant notes (flavour, packaging, count). Respond in plain text, one product
per line, format: name | category | notes`

// Analyzer turns a product photo into suggested catalog entries. It backs the
// admin flow that pre-fills the new-sweet form from an uploaded picture.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*Result, error)
}

type Result struct {
	Suggestions []Suggestion
	RawResponse string
}

// Suggestion is one proposed catalog entry. All fields are free text; the
// administrator confirms or edits before anything is stored.
type Suggestion struct {
	Name     string
	Category string
	Notes    string
}

// Package vision suggests clothing attributes from a photo using a
// multimodal model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vbonduro/wardrobe/internal/domain"
)

// SuggestionPrompt is the shared prompt used by all vision adapters.
var SuggestionPrompt = fmt.Sprintf(`Describe the single piece of clothing in this photo.
Respond in plain text with exactly one line,
format: name | category | color | size | season
Category is one of: %s.
Season is one of: %s.
Size is one of: %s, or leave it empty if you cannot tell.
The name is a short description such as "Striped linen shirt".`,
	strings.Join(domain.Categories, ", "),
	strings.Join(domain.Seasons, ", "),
	strings.Join(domain.Sizes, ", "))

// ErrNoSuggestion is returned when the model reply has no usable line.
var ErrNoSuggestion = errors.New("no clothing item recognised in the reply")

type Suggester interface {
	Suggest(ctx context.Context, r io.Reader, mimeType string) (*Suggestion, error)
}

// Suggestion holds attributes proposed for a new item. Size and Season are
// empty when the model could not tell.
type Suggestion struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Size        string `json:"size,omitempty"`
	Season      string `json:"season,omitempty"`
	RawResponse string `json:"-"`
}

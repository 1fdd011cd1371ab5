package vision

import (
	"strings"

	"github.com/vbonduro/wardrobe/internal/domain"
)

var preambles = []string{"Here", "I see", "Based on", "Sure", "This"}

// unknownValues are replies that mean "could not tell".
var unknownValues = map[string]struct{}{
	"": {}, "-": {}, "n/a": {}, "na": {}, "none": {}, "unknown": {},
}

// ParseLine parses one "name | category | color | size | season" line. Lines
// without a pipe or without a name return nil.
func ParseLine(line string) *Suggestion {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}
	for _, p := range preambles {
		if strings.HasPrefix(line, p) {
			return nil
		}
	}

	parts := strings.Split(line, "|")
	field := func(i int) string {
		if i >= len(parts) {
			return ""
		}
		v := strings.Trim(strings.TrimSpace(parts[i]), `"*`)
		if _, ok := unknownValues[strings.ToLower(v)]; ok {
			return ""
		}
		return v
	}

	s := &Suggestion{
		Name:     field(0),
		Category: snap(domain.Categories, field(1)),
		Color:    field(2),
		Size:     snapStrict(domain.Sizes, field(3)),
		Season:   snapStrict(domain.Seasons, field(4)),
	}
	if s.Name == "" {
		return nil
	}
	return s
}

// ParseResponse returns the first usable suggestion in a model reply, or nil.
func ParseResponse(raw string) *Suggestion {
	for _, line := range strings.Split(raw, "\n") {
		if s := ParseLine(line); s != nil {
			s.RawResponse = raw
			return s
		}
	}
	return nil
}

// snap returns the vocabulary spelling of v, or v unchanged when no entry
// matches.
func snap(vocab []string, v string) string {
	if c := domain.Canonical(vocab, v); c != "" {
		return c
	}
	return v
}

// snapStrict drops values outside the vocabulary.
func snapStrict(vocab []string, v string) string {
	return domain.Canonical(vocab, v)
}

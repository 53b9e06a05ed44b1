package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"podscout/internal/logging"
	"podscout/internal/services"
	"podscout/internal/services/llm"
)

// extractionPrompt instructs the model to distill a free-form interest
// description into short search phrases.
const extractionPrompt = `You extract search keywords from a listener's description of what they want to hear about.

Respond with JSON only, in this exact shape:
{"keywords": ["...", "..."]}

Rules:
- Each keyword is a short search phrase of one to four words.
- Order keywords from most to least central to the description.
- Do not include the words "podcast" or "episode".
- Return between one and eight keywords.`

// Completer is the slice of the LLM client the extractor needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor turns free-form interest descriptions into search keywords.
type Extractor struct {
	completer Completer
	logger    *slog.Logger
}

// NewExtractor builds an extractor over the supplied completer.
func NewExtractor(completer Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract asks the model for search keywords describing the supplied text.
// Keywords come back trimmed, deduplicated case-insensitively, and in the
// model's order of importance.
func (e *Extractor) Extract(ctx context.Context, description string) ([]string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, services.Wrap(services.ErrConfiguration, "keywords", "extract", "description required", nil)
	}
	if e.completer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "keywords", "extract", "llm client not configured", nil)
	}

	content, err := e.completer.CompleteJSON(ctx, extractionPrompt, description)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "keywords", "extract", "completion failed", err)
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, services.Wrap(services.ErrMalformed, "keywords", "extract", "parse payload", err)
	}

	cleaned := cleanKeywords(parsed.Keywords)
	if len(cleaned) == 0 {
		return nil, services.Wrap(services.ErrMalformed, "keywords", "extract", "no usable keywords in response", nil)
	}
	e.logger.Debug("extracted keywords",
		logging.Int("count", len(cleaned)),
		logging.String("first", cleaned[0]))
	return cleaned, nil
}

// cleanKeywords trims entries, drops empties, and deduplicates
// case-insensitively while preserving order.
func cleanKeywords(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	cleaned := make([]string, 0, len(raw))
	for _, keyword := range raw {
		keyword = strings.Join(strings.Fields(keyword), " ")
		if keyword == "" {
			continue
		}
		folded := strings.ToLower(keyword)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		cleaned = append(cleaned, keyword)
	}
	return cleaned
}

// ParseList splits a comma-separated keyword list supplied directly on the
// command line, applying the same cleanup as Extract.
func ParseList(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	cleaned := cleanKeywords(parts)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("keywords: no usable keywords in %q", raw)
	}
	return cleaned, nil
}

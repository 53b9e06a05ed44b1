package keywords

import (
	"context"
	"errors"
	"testing"

	"podscout/internal/services"
)

type stubCompleter struct {
	content string
	err     error
	prompts []string
}

func (s *stubCompleter) CompleteJSON(_ context.Context, _, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.content, s.err
}

func TestExtractReturnsCleanedKeywords(t *testing.T) {
	completer := &stubCompleter{
		content: `{"keywords": [" salary negotiation ", "Career Growth", "salary  negotiation", "", "remote work"]}`,
	}
	extractor := NewExtractor(completer, nil)

	got, err := extractor.Extract(context.Background(), "I want episodes about growing my career")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := []string{"salary negotiation", "Career Growth", "remote work"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
	if len(completer.prompts) != 1 || completer.prompts[0] != "I want episodes about growing my career" {
		t.Errorf("user prompt = %v", completer.prompts)
	}
}

func TestExtractToleratesCodeFences(t *testing.T) {
	completer := &stubCompleter{content: "```json\n{\"keywords\": [\"startups\"]}\n```"}
	extractor := NewExtractor(completer, nil)

	got, err := extractor.Extract(context.Background(), "startup stories")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 1 || got[0] != "startups" {
		t.Errorf("keywords = %v", got)
	}
}

func TestExtractRequiresDescription(t *testing.T) {
	extractor := NewExtractor(&stubCompleter{}, nil)
	_, err := extractor.Extract(context.Background(), "   ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}

func TestExtractCompletionFailureIsTransient(t *testing.T) {
	extractor := NewExtractor(&stubCompleter{err: errors.New("boom")}, nil)
	_, err := extractor.Extract(context.Background(), "anything")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error = %v, want ErrTransient", err)
	}
}

func TestExtractUnparseablePayloadIsMalformed(t *testing.T) {
	extractor := NewExtractor(&stubCompleter{content: "sorry, no json today"}, nil)
	_, err := extractor.Extract(context.Background(), "anything")
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
}

func TestExtractEmptyKeywordListIsMalformed(t *testing.T) {
	extractor := NewExtractor(&stubCompleter{content: `{"keywords": ["", "  "]}`}, nil)
	_, err := extractor.Extract(context.Background(), "anything")
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList(" interview prep , Salary,interview  prep ,")
	if err != nil {
		t.Fatalf("ParseList failed: %v", err)
	}
	if len(got) != 2 || got[0] != "interview prep" || got[1] != "Salary" {
		t.Errorf("ParseList = %v", got)
	}

	if _, err := ParseList(" , ,"); err == nil {
		t.Error("expected error for empty list")
	}
}

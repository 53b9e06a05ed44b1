package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrTransient, "youtube", "search", "request failed", cause)

	if !errors.Is(err, ErrTransient) {
		t.Error("expected wrapped error to match ErrTransient")
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to retain the cause")
	}
	if !strings.Contains(err.Error(), "youtube: search: request failed") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "youtube", "search", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Error("nil marker should default to ErrTransient")
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrQuotaExhausted, "youtube", "search", "daily budget spent", nil)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Error("expected ErrQuotaExhausted")
	}
	if errors.Is(err, ErrTransient) {
		t.Error("quota errors must not classify as transient")
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrMalformed, "", "", "", nil)
	if got := err.Error(); !strings.Contains(got, "service failure") {
		t.Errorf("expected fallback detail, got %q", got)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrTransient, ErrQuotaExhausted, ErrMalformed, ErrNotFound, ErrConfiguration}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(fmt.Errorf("%w", a), b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}

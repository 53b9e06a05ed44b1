package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"podscout/internal/config"
	"podscout/internal/quota"
	"podscout/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckSearchProvider(t *testing.T) {
	if result := CheckSearchProvider(config.YouTube{}); result.Passed {
		t.Fatal("expected failure for missing api key")
	}
	if result := CheckSearchProvider(config.YouTube{APIKey: "key"}); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckQuota(t *testing.T) {
	if result := CheckQuota(nil); result.Passed {
		t.Fatal("expected failure for nil tracker")
	}

	tracker := quota.NewTracker("", 2, nil)
	if result := CheckQuota(tracker); !result.Passed {
		t.Fatalf("expected pass with budget left, got: %s", result.Detail)
	}

	for i := 0; i < 2; i++ {
		if err := tracker.Record(); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if result := CheckQuota(tracker); result.Passed {
		t.Fatal("expected failure once the budget is spent")
	}
}

func TestCheckMediaInfo_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckMediaInfo(context.Background(), config.Streams{BaseURL: srv.URL})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckMediaInfo_MissingURL(t *testing.T) {
	result := CheckMediaInfo(context.Background(), config.Streams{})
	if result.Passed {
		t.Fatal("expected failure for missing base url")
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), "Keyword LLM", config.LLM{})
	if result.Passed {
		t.Fatal("expected failure for missing API key")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, func(cfg *config.Config) {
		cfg.Streams.BaseURL = srv.URL
		cfg.LLM.APIKey = ""
	})

	tracker := quota.NewTracker("", 0, nil)
	results := RunAll(context.Background(), cfg, tracker)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if !AllPassed(results) {
		t.Error("AllPassed should report true")
	}
}

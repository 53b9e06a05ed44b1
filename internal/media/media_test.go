package media

import "testing"

func TestCandidateValid(t *testing.T) {
	if (Candidate{}).Valid() {
		t.Error("candidate without a video id must be invalid")
	}
	if !(Candidate{VideoID: "vid-1"}).Valid() {
		t.Error("candidate with a video id must be valid")
	}
}

func TestCandidateWatchURL(t *testing.T) {
	candidate := Candidate{VideoID: "abc123"}
	if got := candidate.WatchURL(); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("WatchURL = %q", got)
	}
}

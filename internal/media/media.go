// Package media defines the value types shared by the recommendation
// pipeline. Candidates are immutable once parsed from a provider response
// and carry no back-references to the call that produced them.
package media

import "strings"

// Candidate is a single recommendable media item returned by the search
// provider. Identity is VideoID: two candidates with the same VideoID are
// the same item regardless of other field differences.
type Candidate struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Channel     string `json:"channel"`
}

// Valid reports whether the candidate carries a usable identity.
func (c Candidate) Valid() bool {
	return strings.TrimSpace(c.VideoID) != ""
}

// WatchURL returns the public watch page for the candidate.
func (c Candidate) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + c.VideoID
}

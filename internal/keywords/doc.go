// Package keywords distills free-form interest descriptions into short
// search phrases, either via the LLM or from a comma-separated list the
// user supplies directly.
package keywords

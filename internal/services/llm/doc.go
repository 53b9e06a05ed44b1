// Package llm provides a small client for OpenRouter-compatible chat
// completion endpoints. Responses are requested in JSON mode and callers
// decode them with DecodeJSON, which tolerates the usual model formatting
// quirks (code fences, leading prose).
package llm

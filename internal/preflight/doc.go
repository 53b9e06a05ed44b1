// Package preflight validates the runtime environment before pipeline
// commands run: state directory access and space, search provider
// configuration, remaining daily quota, and the media-info and LLM
// endpoints.
package preflight

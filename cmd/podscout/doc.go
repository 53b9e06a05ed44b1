// Package main hosts the podscout CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into calls
// against the internal packages: keyword extraction, cached search,
// quota inspection, stream resolution, and configuration scaffolding. It
// centralizes configuration resolution, the state-directory lock, and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
package main

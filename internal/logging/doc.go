// Package logging centralizes slog construction and attribute helpers.
//
// Components receive a *slog.Logger and tag themselves via
// NewComponentLogger; handlers (compact console or JSON) are chosen from
// configuration. NewNop returns a logger safe to use in tests.
package logging

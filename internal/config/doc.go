// Package config loads, normalizes and validates the podscout TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/podscout/config.toml,
// then a project-local podscout.toml), decodes it over repository defaults,
// expands paths, applies environment fallbacks for API keys, and validates
// the result. A missing file yields the defaults, which still require a
// YouTube API key to pass validation.
package config

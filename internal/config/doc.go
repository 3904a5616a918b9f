// Package config loads, normalizes, and validates jumpcut configuration.
//
// Configuration is read from TOML. Lookup order is the explicit --config path,
// then ./jumpcut.toml, then ~/.config/jumpcut/config.toml; when none exists
// the built-in defaults apply. Secrets (OPENROUTER_API_KEY) come from the
// environment so config files can be shared.
package config

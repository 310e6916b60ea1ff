// Package config loads, normalizes, and validates mediato115 configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment overrides such as MEDIATO_DISCORD_TOKEN or JELLYFIN_API_KEY. The
// Config type centralizes every knob the bot and CLI need so the allow-list,
// index backend, transfer queue and chat channels are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

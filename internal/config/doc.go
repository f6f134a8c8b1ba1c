// Package config loads, normalizes, and validates photoreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHOTOREEL_ALBUMS_DIR and the standard AWS_* credentials. The Config type
// centralizes every knob the CLI needs: the album tree, thumbnail tool,
// origin target, and gallery client endpoints.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

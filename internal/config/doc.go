// Package config loads, normalizes, and validates mixport configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MIXXX_DB_PATH. When no database is configured the platform's default Mixxx
// settings directory is probed.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enumerations, and clear validation errors.
package config

// Package config loads, normalizes, and validates sbomstat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file from the working directory,
// and honours environment overrides such as CSAF_DATA. The Config type
// centralizes every knob the pipeline, handlers, and report sinks need, so
// corpus locations and worker settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config

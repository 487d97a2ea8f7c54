// Package config loads, normalizes, and validates storyreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// post-processing pipeline and CLI need: external tool binaries, scene
// detection sensitivity, trim mode, mix gains, and the encode profile shared
// by every aligned segment.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config

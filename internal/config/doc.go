// Package config provides configuration loading and validation for the
// transcription pipeline. It handles YAML-based configuration with
// per-section struct validation.
package config

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete pipeline configuration
type Config struct {
	Remote    RemoteConfig    `yaml:"remote"`
	Direct    DirectConfig    `yaml:"direct"`
	Audio     AudioConfig     `yaml:"audio"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Limits    LimitsConfig    `yaml:"limits"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RemoteConfig contains the chunked-upload job protocol configuration
type RemoteConfig struct {
	Enabled      bool   `yaml:"enabled"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	Timeout      int    `yaml:"timeout"`       // seconds, per HTTP request
	PollInterval int    `yaml:"poll_interval"` // seconds
	KickInterval int    `yaml:"kick_interval"` // seconds
	PollBudget   int    `yaml:"poll_budget"`   // seconds
}

// DirectConfig contains the single-shot transcription call configuration
type DirectConfig struct {
	Endpoint       string  `yaml:"endpoint"`
	Timeout        int     `yaml:"timeout"` // seconds
	Language       string  `yaml:"language"`
	Model          string  `yaml:"model"`
	Prompt         string  `yaml:"prompt"`
	Temperature    float32 `yaml:"temperature"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
}

// AudioConfig contains local chunking parameters
type AudioConfig struct {
	TargetSampleRate int     `yaml:"target_sample_rate"`
	MaxChunkBytes    int     `yaml:"max_chunk_bytes"`
	OverlapSeconds   float64 `yaml:"overlap_seconds"`
}

// SchedulerConfig contains admission and retry configuration
type SchedulerConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	MaxRetries    int `yaml:"max_retries"`
}

// LimitsConfig contains input ceilings
type LimitsConfig struct {
	MaxInputBytes int64 `yaml:"max_input_bytes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Remote.Validate(); err != nil {
		return fmt.Errorf("remote config: %w", err)
	}

	if err := c.Direct.Validate(); err != nil {
		return fmt.Errorf("direct config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler config: %w", err)
	}

	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates the job protocol configuration
func (r *RemoteConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if r.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty when remote is enabled")
	}

	if r.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", r.Timeout)
	}

	if r.PollInterval < 1 {
		return fmt.Errorf("poll_interval must be at least 1 second, got %d", r.PollInterval)
	}

	if r.KickInterval < r.PollInterval {
		return fmt.Errorf("kick_interval (%d) must not be shorter than poll_interval (%d)", r.KickInterval, r.PollInterval)
	}

	if r.PollBudget < r.PollInterval {
		return fmt.Errorf("poll_budget (%d) must not be shorter than poll_interval (%d)", r.PollBudget, r.PollInterval)
	}

	return nil
}

// Validate validates the direct call configuration
func (d *DirectConfig) Validate() error {
	if d.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if d.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", d.Timeout)
	}

	if d.Temperature < 0 || d.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", d.Temperature)
	}

	if d.MaxUploadBytes < 1024 {
		return fmt.Errorf("max_upload_bytes must be at least 1024, got %d", d.MaxUploadBytes)
	}

	return nil
}

// Validate validates the local chunking configuration
func (a *AudioConfig) Validate() error {
	if a.TargetSampleRate < 8000 || a.TargetSampleRate > 48000 {
		return fmt.Errorf("target_sample_rate must be between 8000 and 48000 Hz, got %d", a.TargetSampleRate)
	}

	if a.MaxChunkBytes < 1024 {
		return fmt.Errorf("max_chunk_bytes must be at least 1024, got %d", a.MaxChunkBytes)
	}

	if a.OverlapSeconds < 0 {
		return fmt.Errorf("overlap_seconds cannot be negative, got %f", a.OverlapSeconds)
	}

	return nil
}

// Validate validates the scheduler configuration
func (s *SchedulerConfig) Validate() error {
	if s.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", s.MaxConcurrent)
	}

	if s.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", s.MaxRetries)
	}

	return nil
}

// Validate validates the input ceilings
func (l *LimitsConfig) Validate() error {
	if l.MaxInputBytes < 1024 {
		return fmt.Errorf("max_input_bytes must be at least 1024, got %d", l.MaxInputBytes)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the per-request timeout as a time.Duration
func (r *RemoteConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}

// GetPollInterval returns the polling interval as a time.Duration
func (r *RemoteConfig) GetPollInterval() time.Duration {
	return time.Duration(r.PollInterval) * time.Second
}

// GetKickInterval returns the keepalive interval as a time.Duration
func (r *RemoteConfig) GetKickInterval() time.Duration {
	return time.Duration(r.KickInterval) * time.Second
}

// GetPollBudget returns the polling deadline as a time.Duration
func (r *RemoteConfig) GetPollBudget() time.Duration {
	return time.Duration(r.PollBudget) * time.Second
}

// GetTimeoutDuration returns the direct call timeout as a time.Duration
func (d *DirectConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Default configuration values for a sync job.
const (
	DefaultHandbook  = "handbook"
	DefaultSubdomain = "make"
	DefaultOutputDir = "en/"

	// NoSubdomain is the subdomain value that maps to the bare wordpress.org host.
	NoSubdomain = "w.org"

	// PageSize is the number of items requested per collection page.
	PageSize = 100
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "handbook-sync/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// RequestsPerSecond paces page requests. Zero or less means unlimited.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"rate"`
}

// SyncConfig holds settings for one handbook sync job.
type SyncConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Team is the team path segment (e.g. "core"). Empty means no segment.
	Team string `json:"team" yaml:"team" mapstructure:"team"`

	// Handbook is the collection name exposed by the content API.
	Handbook string `json:"handbook" yaml:"handbook" mapstructure:"handbook"`

	// Subdomain is the wordpress.org subdomain. NoSubdomain selects the bare host.
	Subdomain string `json:"subdomain" yaml:"subdomain" mapstructure:"subdomain"`

	// BaseURL overrides the scheme and host derived from Subdomain
	// (e.g. "http://127.0.0.1:8080"). Used for mirrors and tests.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// OutputDir is the directory that receives the markdown tree.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Regenerate removes OutputDir before the run starts.
	Regenerate bool `json:"regenerate" yaml:"regenerate" mapstructure:"regenerate"`

	// StateDB is the path of the SQLite sync-state index. Empty disables recording.
	StateDB string `json:"state_db,omitempty" yaml:"state_db,omitempty" mapstructure:"state_db"`

	// ReportPath is where the YAML run report is written. Empty disables the report.
	ReportPath string `json:"report,omitempty" yaml:"report,omitempty" mapstructure:"report"`
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c SyncConfig) WithDefaults() SyncConfig {
	if c.Handbook == "" {
		c.Handbook = DefaultHandbook
	}
	if c.Subdomain == "" {
		c.Subdomain = DefaultSubdomain
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	return c
}

// Config is the layout of the handbook-sync config file. Top-level keys
// configure the default job; Handbooks lists jobs run by "sync --all".
type Config struct {
	SyncConfig `yaml:",inline" mapstructure:",squash"`

	Handbooks []SyncConfig `json:"handbooks,omitempty" yaml:"handbooks,omitempty" mapstructure:"handbooks"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "filings-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DownloadConfig holds settings for the acquisition run.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutDir is the flat destination directory for this run's artifacts.
	// Downstream tooling enumerates this one directory; no per-category
	// subfolders are created.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// DownloadDelay is the delay between consecutive downloads within a
	// category (default 1s), to stay polite to the origin servers.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// Parallelism bounds how many categories are processed at once
	// (default 3). Categories are independent failure domains.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// RenderConfig holds settings for the headless rendering handle used by the
// HTML normalization path and the forum assembler.
type RenderConfig struct {
	// Timeout bounds a single page load + print (default 60s). A timeout
	// surfaces as a fetch error on the reference being normalized.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// PaperWidth and PaperHeight are the print page size in inches
	// (default A4: 8.27 x 11.69).
	PaperWidth  float64 `json:"paper_width" yaml:"paper_width"`
	PaperHeight float64 `json:"paper_height" yaml:"paper_height"`

	// Margin is applied to all four edges, in inches (default 0.4).
	Margin float64 `json:"margin" yaml:"margin"`
}

// WithDefaults fills zero fields with the standard A4 print setup.
func (c RenderConfig) WithDefaults() RenderConfig {
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.PaperWidth == 0 {
		c.PaperWidth = 8.27
	}
	if c.PaperHeight == 0 {
		c.PaperHeight = 11.69
	}
	if c.Margin == 0 {
		c.Margin = 0.4
	}
	return c
}

// ForumConfig holds settings for the forum thread assembler.
type ForumConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the number of posts requested per page (default 50).
	// Assembly stops when a page returns fewer posts than this.
	PageSize int `json:"page_size" yaml:"page_size"`

	// APIKey and APIUsername are optional forum API credentials, loaded
	// from the secrets directory when present.
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIUsername string `json:"api_username,omitempty" yaml:"api_username,omitempty"`
}

// EngineConfig groups all stage configurations for the engine.
type EngineConfig struct {
	Download DownloadConfig `json:"download" yaml:"download"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Forum    ForumConfig    `json:"forum" yaml:"forum"`
}

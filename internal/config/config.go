package config

import "time"

// DefaultProxy is used when --proxy is given without a value.
const DefaultProxy = "http://127.0.0.1:8080"

// DefaultJSCheckFile is the page written for the manual JavaScript API check.
const DefaultJSCheckFile = "jsapi_test.html"

// Options holds all configuration for a gmapsprobe scan.
type Options struct {
	// Target
	APIKey  string // single-key mode
	KeyList string // batch mode: newline- or comma-delimited keys

	// Performance
	Threads          int
	Timeout          time.Duration
	Delay            time.Duration
	AdaptiveThrottle bool

	// HTTP
	Proxy     string
	UserAgent string

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv", "yaml"
	Quiet        bool
	NoColor      bool
	Debug        bool

	// Manual JavaScript API check (single-key mode only)
	NoJSCheck   bool
	JSCheckFile string

	// Hooks
	OnVulnerableCmd string
}

// Batch reports whether the options select batch mode.
func (o *Options) Batch() bool {
	return o.KeyList != ""
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-coa/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScholarBackend selects the profile data source.
type ScholarBackend string

const (
	BackendScrape  ScholarBackend = "scrape"
	BackendSerpAPI ScholarBackend = "serpapi"
)

// ScholarConfig holds settings for profile and publication retrieval.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the data source: scrape or serpapi.
	Backend ScholarBackend `json:"backend" yaml:"backend"`

	// UseBrowser routes scrape-backend page loads through a headless
	// Chrome session instead of plain HTTP. Helps when Scholar serves
	// the unusual-traffic interstitial to direct requests.
	UseBrowser bool `json:"use_browser" yaml:"use_browser"`

	// PageSize is the number of publications requested per profile page
	// (Scholar caps this at 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxPages bounds profile pagination as a runaway guard (default 20).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// FetchDelay is the pause between consecutive publication fetches
	// (default 1s). Scholar rate-limits aggressively.
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// Cookie is an optional Cookie header value for scrape requests,
	// typically loaded from the scholar-cookie secret.
	Cookie string `json:"-" yaml:"-"`

	// SerpAPIKey authenticates serpapi backend requests.
	SerpAPIKey string `json:"serpapi_api_key,omitempty" yaml:"serpapi_api_key,omitempty"`
}

// ReportConfig holds settings for coauthor aggregation and output.
type ReportConfig struct {
	// YearsBack is the lookback window in years. Zero means no limit.
	YearsBack int `json:"years_back" yaml:"years_back"`

	// OutputPath is the CSV destination. "-" writes a table to stdout.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// IncludeSelf keeps the profile owner's own name in the report.
	IncludeSelf bool `json:"include_self" yaml:"include_self"`
}

// CacheConfig holds settings for the local publication cache.
type CacheConfig struct {
	// Dir is the cache directory (contains coauthors.db and profile
	// snapshots). Default "cache".
	Dir string `json:"dir" yaml:"dir"`

	// Disabled bypasses the cache entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scholar ScholarConfig `json:"scholar" yaml:"scholar"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
}

// Package am loads eavto configuration from TOML files and EAVTO_*
// environment variables.
package am

// Config represents the eavto configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database" yaml:"database"`
	Ontology OntologyConfig `mapstructure:"ontology" toml:"ontology" yaml:"ontology"`
	Query    QueryConfig    `mapstructure:"query" toml:"query" yaml:"query"`
	Server   ServerConfig   `mapstructure:"server" toml:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" toml:"log" yaml:"log"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" yaml:"path"`
}

// OntologyConfig configures the definition directory and its watcher
type OntologyConfig struct {
	Dir               string `mapstructure:"dir" toml:"dir" yaml:"dir"`                                                    // definition sources, scanned recursively
	Watch             bool   `mapstructure:"watch" toml:"watch" yaml:"watch"`                                              // re-sync on file changes while serving
	DebounceMS        int    `mapstructure:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms"`                            // quiet period before a sync
	MaxSyncsPerMinute int    `mapstructure:"max_syncs_per_minute" toml:"max_syncs_per_minute" yaml:"max_syncs_per_minute"` // watcher rate limit
}

// QueryConfig configures the query surface
type QueryConfig struct {
	SearchLimit     int      `mapstructure:"search_limit" toml:"search_limit" yaml:"search_limit"`
	MaxSearchLimit  int      `mapstructure:"max_search_limit" toml:"max_search_limit" yaml:"max_search_limit"`
	BacklinkExclude []string `mapstructure:"backlink_exclude" toml:"backlink_exclude" yaml:"backlink_exclude"` // predicates hidden from backlinks; empty uses the presentational set
	CacheSize       int      `mapstructure:"cache_size" toml:"cache_size" yaml:"cache_size"`                   // resolved views kept per session
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port           int      `mapstructure:"port" toml:"port" yaml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins" yaml:"allowed_origins"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" yaml:"json"`
}

// Server port constants
const (
	DefaultServerPort = 8877
)

package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// File and directory permissions
const (
	DefaultDirPermissions  = 0750
	DefaultFilePermissions = 0644
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "eavto.db")

	v.SetDefault("ontology.dir", "ontology")
	v.SetDefault("ontology.watch", false)
	v.SetDefault("ontology.debounce_ms", 500)
	v.SetDefault("ontology.max_syncs_per_minute", 12)

	v.SetDefault("query.search_limit", 20)
	v.SetDefault("query.max_search_limit", 200)
	v.SetDefault("query.backlink_exclude", []string{})
	v.SetDefault("query.cache_size", 512)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})

	v.SetDefault("log.json", false)
}

// bindEnvVars binds settings commonly overridden per process to explicit variables
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "EAVTO_DATABASE_PATH")
	v.BindEnv("ontology.dir", "EAVTO_ONTOLOGY_DIR")
	v.BindEnv("server.port", "EAVTO_SERVER_PORT")
}

// Defaults returns the configuration with only built-in defaults applied
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "eavto.db" // Fallback default
	}
	return c.Database.Path
}

// Debounce returns the watcher quiet period
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Ontology.DebounceMS) * time.Millisecond
}

// GetServerPort returns the configured port, or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == 0 {
		return DefaultServerPort
	}
	return c.Server.Port
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Ontology: {Dir: %s, Watch: %t}, Server: {Port: %d}}",
		c.Database.Path, c.Ontology.Dir, c.Ontology.Watch, c.Server.Port)
}

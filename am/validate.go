package am

import "github.com/teranos/eavto/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}

	// Watcher needs a directory to watch
	if c.Ontology.Watch && c.Ontology.Dir == "" {
		return errors.New("ontology.dir cannot be empty when ontology.watch is enabled")
	}
	if c.Ontology.DebounceMS < 0 {
		return errors.Newf("ontology.debounce_ms must be >= 0, got %d", c.Ontology.DebounceMS)
	}
	if c.Ontology.MaxSyncsPerMinute < 0 {
		return errors.Newf("ontology.max_syncs_per_minute must be >= 0, got %d", c.Ontology.MaxSyncsPerMinute)
	}

	// Query limits: 0 = use default, negative = invalid
	if c.Query.SearchLimit < 0 {
		return errors.Newf("query.search_limit must be >= 0, got %d", c.Query.SearchLimit)
	}
	if c.Query.MaxSearchLimit < 0 {
		return errors.Newf("query.max_search_limit must be >= 0, got %d", c.Query.MaxSearchLimit)
	}
	if c.Query.MaxSearchLimit > 0 && c.Query.SearchLimit > c.Query.MaxSearchLimit {
		return errors.Newf("query.search_limit (%d) exceeds query.max_search_limit (%d)",
			c.Query.SearchLimit, c.Query.MaxSearchLimit)
	}
	if c.Query.CacheSize < 0 {
		return errors.Newf("query.cache_size must be >= 0, got %d", c.Query.CacheSize)
	}

	return nil
}

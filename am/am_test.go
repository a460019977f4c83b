package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config location at temp dirs and returns the
// project directory, which is also the working directory.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)

	oldSystem := SystemConfigPath
	SystemConfigPath = filepath.Join(t.TempDir(), "absent.toml")
	t.Cleanup(func() {
		SystemConfigPath = oldSystem
		Reset()
	})

	t.Chdir(project)
	Reset()
	return home, project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	// Create isolated viper instance without loading user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Database.Path != "eavto.db" {
		t.Errorf("expected default database path 'eavto.db', got %q", cfg.Database.Path)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Ontology.DebounceMS != 500 {
		t.Errorf("expected default debounce 500ms, got %d", cfg.Ontology.DebounceMS)
	}
	if cfg.Query.SearchLimit != 20 || cfg.Query.MaxSearchLimit != 200 {
		t.Errorf("unexpected search limits %d/%d", cfg.Query.SearchLimit, cfg.Query.MaxSearchLimit)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".eavto", ConfigFileName), `
[database]
path = "user.db"

[server]
port = 9001
`)
	writeFile(t, filepath.Join(project, ConfigFileName), `
[server]
port = 9002

[ontology]
dir = "defs"
`)
	t.Setenv("EAVTO_ONTOLOGY_DIR", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user.db", cfg.Database.Path, "user file below project")
	assert.Equal(t, 9002, cfg.Server.Port, "project file wins over user")
	assert.Equal(t, "from-env", cfg.Ontology.Dir, "environment wins over files")
	assert.Equal(t, 500, cfg.Ontology.DebounceMS, "untouched keys keep defaults")
}

func TestLoad_ProjectFoundUpward(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ConfigFileName), "[query]\nsearch_limit = 7\n")

	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)
	Reset()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Query.SearchLimit)
}

func TestLoad_Cached(t *testing.T) {
	isolate(t)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoad_InvalidRejected(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ConfigFileName), "[query]\nsearch_limit = -1\n")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query.search_limit")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[log]\njson = true\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "eavto.db", cfg.Database.Path)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "watch without dir", mutate: func(c *Config) { c.Ontology.Watch = true; c.Ontology.Dir = "" }, wantErr: "ontology.dir"},
		{name: "negative debounce", mutate: func(c *Config) { c.Ontology.DebounceMS = -1 }, wantErr: "debounce_ms"},
		{name: "limit above max", mutate: func(c *Config) { c.Query.SearchLimit = 500 }, wantErr: "exceeds"},
		{name: "zero limits use defaults", mutate: func(c *Config) { c.Query.SearchLimit = 0; c.Query.MaxSearchLimit = 0 }},
		{name: "negative cache", mutate: func(c *Config) { c.Query.CacheSize = -3 }, wantErr: "cache_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIntrospection_Sources(t *testing.T) {
	home, project := isolate(t)
	userPath := filepath.Join(home, ".eavto", ConfigFileName)
	projectPath := filepath.Join(project, ConfigFileName)
	writeFile(t, userPath, "[database]\npath = \"user.db\"\n")
	writeFile(t, projectPath, "[server]\nport = 9100\n")
	t.Setenv("EAVTO_QUERY_CACHE_SIZE", "64")

	info := GetConfigIntrospection()

	byKey := make(map[string]SettingInfo)
	for _, s := range info.Settings {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceUser, byKey["database.path"].Source)
	assert.Equal(t, userPath, byKey["database.path"].SourcePath)
	assert.Equal(t, SourceProject, byKey["server.port"].Source)
	assert.Equal(t, SourceEnvironment, byKey["query.cache_size"].Source)
	assert.Equal(t, "EAVTO_QUERY_CACHE_SIZE", byKey["query.cache_size"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["ontology.debounce_ms"].Source)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "EAVTO_ONTOLOGY_MAX_SYNCS_PER_MINUTE", EnvKey("ontology.max_syncs_per_minute"))
}

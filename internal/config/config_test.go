package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDatabasePath(t *testing.T) {
	tests := []struct {
		name     string
		override string
		mode     string
		dataDir  string
		want     string
	}{
		{
			name:     "override wins",
			override: "/tmp/custom.db",
			mode:     ModeProduction,
			dataDir:  "/home/u/.local/share/vocab-flashcards",
			want:     "/tmp/custom.db",
		},
		{
			name: "development uses project-local path",
			mode: ModeDevelopment,
			want: filepath.Join("db", DatabaseFileName),
		},
		{
			name:    "production uses data dir",
			mode:    ModeProduction,
			dataDir: "/home/u/.local/share/vocab-flashcards",
			want:    filepath.Join("/home/u/.local/share/vocab-flashcards", DatabaseFileName),
		},
		{
			name: "production falls back to working directory",
			mode: ModeProduction,
			want: filepath.Join(".", DatabaseFileName),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveDatabasePath(tt.override, tt.mode, tt.dataDir))
		})
	}
}

func TestAppDataDir(t *testing.T) {
	env := map[string]string{"HOME": "/home/u", "APPDATA": `C:\Users\u\AppData\Roaming`}
	getenv := func(k string) string { return env[k] }

	assert.Equal(t, filepath.Join("/home/u", "Library", "Application Support", AppName), appDataDir("darwin", getenv))
	assert.Equal(t, filepath.Join(`C:\Users\u\AppData\Roaming`, AppName), appDataDir("windows", getenv))
	assert.Equal(t, filepath.Join("/home/u", ".local", "share", AppName), appDataDir("linux", getenv))
	assert.Empty(t, appDataDir("plan9", getenv))
	assert.Empty(t, appDataDir("linux", func(string) string { return "" }))
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("DATABASE_URL", "/tmp/env.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("VOCAB_ENV", "production")
	t.Setenv("LOG_DIR", "/tmp/vocab-logs")

	cfg := NewConfig(nil)

	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/vocab-logs", cfg.Log.Dir)
	assert.Equal(t, DefaultPort, cfg.HTTP.Port)
	assert.Empty(t, cfg.HTTP.AllowedOrigins)
}

func TestNewConfig_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://localhost:1420, ,tauri://localhost ")

	cfg := NewConfig(nil)

	assert.Equal(t, []string{"http://localhost:1420", "tauri://localhost"}, cfg.HTTP.AllowedOrigins)
}

func TestNewConfig_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "/tmp/env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--db", "/tmp/flag.db"}))

	cfg := NewConfig(flags)

	assert.Equal(t, "/tmp/flag.db", cfg.Database.Path)
}

func TestNewConfig_UnknownModeIsDevelopment(t *testing.T) {
	t.Setenv("VOCAB_ENV", "staging")
	t.Setenv("DATABASE_URL", "")

	cfg := NewConfig(nil)

	assert.Equal(t, ModeDevelopment, cfg.Mode)
	assert.Equal(t, filepath.Join("db", DatabaseFileName), cfg.Database.Path)
}

func TestLoadDotEnv(t *testing.T) {
	// Register restores, then clear so the file can set them
	t.Setenv("DICTIONARY_URL", "")
	t.Setenv("API_TOKEN", "from-env")
	require.NoError(t, os.Unsetenv("DICTIONARY_URL"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DICTIONARY_URL=http://localhost:9999\nAPI_TOKEN=from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))

	cfg := NewConfig(nil)
	assert.Equal(t, "http://localhost:9999", cfg.Dictionary.BaseURL)
	assert.Equal(t, "from-env", cfg.HTTP.APIToken)
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}

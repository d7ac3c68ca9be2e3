package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/knowflow/internal/llm"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
[store]
driver = "postgres"
dsn = "postgres://localhost/knowflow"

[log]
level = "debug"

[server]
addr = ":9000"
allowed_origins = ["http://example.test"]

[quiz]
questions = 5

[llm]
provider = "ollama"
model = "qwen2.5"
temperature = 0.2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/knowflow", cfg.Store.DSN)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://example.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Quiz.Questions)

	level, err := ParseLevel(cfg.Log.Level)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	seed := cfg.LLMDefaults()
	assert.Equal(t, llm.ProviderOllama, seed.Provider)
	assert.Equal(t, "qwen2.5", seed.Model)
	assert.InDelta(t, 0.2, seed.Temperature, 1e-9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "[quiz]\nquestions = 5\n")
	t.Setenv("KNOWFLOW_DB", "/tmp/other.db")
	t.Setenv("KNOWFLOW_DB_DRIVER", "sqlite")
	t.Setenv("KNOWFLOW_LOG_LEVEL", "warn")
	t.Setenv("KNOWFLOW_ADDR", ":7000")
	t.Setenv("KNOWFLOW_QUIZ_QUESTIONS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Store.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 7, cfg.Quiz.Questions)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"driver":      "[store]\ndriver = \"mysql\"\n",
		"level":       "[log]\nlevel = \"loud\"\n",
		"questions":   "[quiz]\nquestions = 11\n",
		"provider":    "[llm]\nprovider = \"claude\"\n",
		"temperature": "[llm]\ntemperature = 2.5\n",
		"syntax":      "[store\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadQuestionEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KNOWFLOW_QUIZ_QUESTIONS", "three")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLLMDefaults_Empty(t *testing.T) {
	assert.Equal(t, llm.DefaultConfig(), Default().LLMDefaults())
}

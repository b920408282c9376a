package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline/internal/config"
	"github.com/PabloGalante/lifeline/internal/domain"
)

// isolate points the .env lookup at an empty temp dir and unsets the vars Load reads.
// t.Setenv registers the restore; the unset matters because godotenv never
// overrides a variable that exists, even when it is empty.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LIFELINE_ENV_FILE", filepath.Join(dir, ".env"))
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "PORT",
		"LIFELINE_PORT", "LIFELINE_DEBUG", "LIFELINE_LLM_PROVIDER", "LIFELINE_MODEL_NAME",
		"LIFELINE_GEMINI_BACKEND", "LIFELINE_GEMINI_BASE_URL", "LIFELINE_GCP_PROJECT", "LIFELINE_GCP_LOCATION",
		"LIFELINE_TOKENIZER_PATH", "LIFELINE_MODEL_PATH", "LIFELINE_SCORER_ADDR",
		"LIFELINE_GENERATE_TIMEOUT", "LIFELINE_MAX_CONCURRENT_GENERATIONS", "LIFELINE_STORAGE_BACKEND",
		"LIFELINE_REDIS_URL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	isolate(t)

	_, err := config.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, config.ProviderGemini, cfg.Provider)
	assert.Equal(t, config.GeminiBackendAPI, cfg.GeminiBackend)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
	assert.Equal(t, "tokenizer.json", cfg.TokenizerPath)
	assert.Equal(t, "model.json", cfg.ModelPath)
	assert.Equal(t, 30*time.Second, cfg.GenerateTimeout)
	assert.EqualValues(t, 8, cfg.MaxConcurrentGenerations)
	assert.Equal(t, config.StorageNone, cfg.StorageBackend)
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GEMINI_API_KEY=from-file\nLIFELINE_DEBUG=true\nLIFELINE_PORT=9000\n"), 0o600))
	t.Setenv("LIFELINE_PORT", "7000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoadProviderSpecificCredentials(t *testing.T) {
	isolate(t)
	t.Setenv("LIFELINE_LLM_PROVIDER", "openai")

	_, err := config.Load()
	require.ErrorIs(t, err, domain.ErrConfiguration)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
}

func TestLoadVertexNeedsProject(t *testing.T) {
	isolate(t)
	t.Setenv("LIFELINE_GEMINI_BACKEND", "vertex")

	_, err := config.Load()
	require.ErrorIs(t, err, domain.ErrConfiguration)

	t.Setenv("LIFELINE_GCP_PROJECT", "proj")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "us-central1", cfg.GCPLocation)
}

func TestLoadMockNeedsNoCredentials(t *testing.T) {
	isolate(t)
	t.Setenv("LIFELINE_LLM_PROVIDER", "mock")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderMock, cfg.Provider)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"LIFELINE_GENERATE_TIMEOUT":           "soon",
		"LIFELINE_MAX_CONCURRENT_GENERATIONS": "-1",
		"LIFELINE_STORAGE_BACKEND":            "postgres",
		"LIFELINE_LLM_PROVIDER":               "bard",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv("GEMINI_API_KEY", "k")
			t.Setenv(key, val)

			_, err := config.Load()
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadFirestoreNeedsProject(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("LIFELINE_STORAGE_BACKEND", "firestore")

	_, err := config.Load()
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoadRedisBackend(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("LIFELINE_STORAGE_BACKEND", "Redis")

	_, err := config.Load()
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "LIFELINE_REDIS_URL")

	t.Setenv("LIFELINE_REDIS_URL", "redis://localhost:6379/0")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

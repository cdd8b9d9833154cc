package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FAYDAGEN_TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("FAYDAGEN_OCR_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Telegram.BotToken)
	assert.Equal(t, "test-key", cfg.OCR.APIKey)
	assert.Equal(t, "https://api.ocr.space/parse/image", cfg.OCR.Endpoint)
	assert.Equal(t, 2, cfg.OCR.Engine)
	assert.Equal(t, 30, cfg.Session.TTLMinutes)
	assert.False(t, cfg.Session.UseSampleOnMiss)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("FAYDAGEN_TELEGRAM_BOT_TOKEN", "")
	t.Setenv("FAYDAGEN_OCR_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "faydagen.yaml")
	content := `
telegram:
  bot_token: file-token
  allow_list: [1001, 1002]
ocr:
  api_key: file-key
  engine: 1
session:
  ttl_minutes: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.BotToken)
	assert.Equal(t, []int64{1001, 1002}, cfg.Telegram.AllowList)
	assert.Equal(t, "file-key", cfg.OCR.APIKey)
	assert.Equal(t, 1, cfg.OCR.Engine)
	assert.Equal(t, 5, cfg.Session.TTLMinutes)
}

func TestValidateRejectsMissingToken(t *testing.T) {
	t.Setenv("FAYDAGEN_TELEGRAM_BOT_TOKEN", "")
	t.Setenv("FAYDAGEN_OCR_API_KEY", "key")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faydagen.yaml")
	content := `
telegram:
  bot_token: file-token
ocr:
  api_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("FAYDAGEN_TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("FAYDAGEN_OCR_API_KEY", "env-key")
	t.Setenv("FAYDAGEN_SESSION_TTL_MINUTES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "env-key", cfg.OCR.APIKey)
	assert.Equal(t, 7, cfg.Session.TTLMinutes)
}

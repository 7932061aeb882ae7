package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidateWithNotary(t *testing.T) {
	cfg := Defaults()
	cfg.Ledger.Notary = "operator"
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Ledger.FaucetAmount = 0
	cfg.Redis.Addr = ""
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "notary must not be empty")
	assert.Contains(t, err.Error(), "faucet_amount")
	assert.Contains(t, err.Error(), "redis: addr")
	assert.Contains(t, err.Error(), "server: port")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
mode = "migrate"

[ledger]
notary = "operator"
faucet_amount = 500

[redis]
cache_ttl = "90s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "migrate", cfg.Mode)
	assert.Equal(t, "operator", cfg.Ledger.Notary)
	assert.Equal(t, uint64(500), cfg.Ledger.FaucetAmount)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL.Duration)
	// Untouched fields keep their defaults.
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[ledger]
notary = "operator"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("WAGERD_LEDGER_NOTARY", "env-operator")
	t.Setenv("WAGERD_LEDGER_FAUCET_AMOUNT", "42")
	t.Setenv("WAGERD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WAGERD_POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-operator", cfg.Ledger.Notary)
	assert.Equal(t, uint64(42), cfg.Ledger.FaucetAmount)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "hunter2"
	cfg.Redis.Password = "redispw"
	cfg.Server.APIKey = "key"
	cfg.Notify.TelegramToken = "tok"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Server.APIKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// Originals untouched.
	assert.Equal(t, "hunter2", cfg.Postgres.Password)

	// Empty secrets stay empty rather than becoming "***".
	assert.Empty(t, red.Postgres.DSN)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv(EnvLedger, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".solvault", cfg.Ledger)
	assert.Equal(t, DefaultProgramID, cfg.ProgramID)
	assert.Equal(t, AmountRaw, cfg.AmountUnit)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solvault.yaml")
	content := "ledger: /tmp/ledger.db\namount_unit: scaled\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv(EnvLedger, "")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ledger.db", cfg.Ledger)
	assert.Equal(t, AmountScaled, cfg.AmountUnit)
	assert.Equal(t, "error", cfg.LogLevel, "environment overrides the file")
	assert.Equal(t, ".solvault-keys", cfg.KeystoreDir, "unset keys keep defaults")
}

func TestLoad_InvalidAmountUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solvault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("amount_unit: sol\n"), 0600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidAmountUnit)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solvault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger: [unterminated\n"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("Acme Lettings")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Acme Lettings", cfg.Agency.Name)
	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, 85, cfg.Ledger.MatchThreshold)

	rate, err := cfg.CommissionRate()
	require.NoError(t, err)
	assert.Equal(t, "0.1", rate.String())

	vat, err := cfg.VATRate()
	require.NoError(t, err)
	assert.Equal(t, "0.2", vat.String())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lettbooks.yaml")

	cfg := Default("Acme Lettings")
	cfg.Ledger.DefaultCommissionRate = "0.15"
	cfg.Ledger.MatchThreshold = 90
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lettbooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agency: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate(t *testing.T) {
	cfg := Default("x")
	cfg.Database.Path = ""
	require.Error(t, cfg.Validate())

	cfg = Default("x")
	cfg.Ledger.DefaultCommissionRate = "not-a-number"
	require.Error(t, cfg.Validate())

	cfg = Default("x")
	cfg.Ledger.VATRate = "nope"
	require.Error(t, cfg.Validate())

	cfg = Default("x")
	cfg.Ledger.MatchThreshold = 101
	require.Error(t, cfg.Validate())

	cfg = Default("x")
	cfg.Ledger.MatchThreshold = -1
	require.Error(t, cfg.Validate())
}

func TestRates_EmptyUseDefaults(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "ledger.db"}}

	rate, err := cfg.CommissionRate()
	require.NoError(t, err)
	assert.Equal(t, "0.1", rate.String())

	vat, err := cfg.VATRate()
	require.NoError(t, err)
	assert.Equal(t, "0.2", vat.String())
}

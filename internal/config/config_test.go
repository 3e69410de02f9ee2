package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	cfg := Default("Bardstown Chamber")
	cfg.Organization.Address = "1 Court Square"
	cfg.Invoices.PaymentTermsDays = 15

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Bardstown Chamber", got.Organization.Name)
	assert.Equal(t, "1 Court Square", got.Organization.Address)
	assert.Equal(t, 15, got.Invoices.PaymentTermsDays)
	assert.Equal(t, "duesbook.db", got.Database.Path)
	assert.Equal(t, "bank_import", got.Import.PaymentMethod)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Chamber")

	assert.Equal(t, "My Chamber", cfg.Organization.Name)
	assert.Equal(t, 30, cfg.Invoices.PaymentTermsDays)
	assert.Equal(t, "import", cfg.Import.InboxDir)
	assert.Equal(t, "Imported from CSV", cfg.Import.Notes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("organization:\n  name: Tiny Chamber\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Tiny Chamber", cfg.Organization.Name)
	assert.Equal(t, 30, cfg.Invoices.PaymentTermsDays)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default("Env Chamber")))

	t.Setenv("DUESBOOK_LOG_LEVEL", "debug")
	t.Setenv("DUESBOOK_DB_PATH", "/var/lib/duesbook/ledger.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/var/lib/duesbook/ledger.db", cfg.DatabasePath(dir))
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default("Env Chamber")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DUESBOOK_PAYMENT_TERMS_DAYS=45\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DUESBOOK_PAYMENT_TERMS_DAYS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Invoices.PaymentTermsDays)
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := Default("")
	cfg.Logging.Format = "xml"
	cfg.Invoices.PaymentTermsDays = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization name cannot be empty")
	assert.Contains(t, err.Error(), "invalid log format 'xml'")
	assert.Contains(t, err.Error(), "invalid payment terms -1")
}

func TestPathsResolveAgainstRoot(t *testing.T) {
	cfg := Default("x")
	assert.Equal(t, filepath.Join("/srv/chamber", "duesbook.db"), cfg.DatabasePath("/srv/chamber"))
	assert.Equal(t, filepath.Join("/srv/chamber", "import"), cfg.InboxPath("/srv/chamber"))
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Test Chamber")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Chamber")
	assert.Contains(t, contents, "payment_terms_days: 30")
	assert.Contains(t, contents, "inbox_dir: import")
}

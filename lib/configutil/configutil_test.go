package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Identity string `json:"identity"`
	Interval int    `json:"interval"`
	Sink     struct {
		Token string `json:"token"`
	} `json:"sink"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// committed defaults
		identity: "2112000",
		interval: 30,
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		sink: { token: "secret" },
		interval: 10,
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "2112000", cfg.Identity)
	require.Equal(t, 10, cfg.Interval)
	require.Equal(t, "secret", cfg.Sink.Token)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("GRADEWATCH_TEST_IDENTITY", "override")
	t.Setenv("GRADEWATCH_TEST_EMPTY", "")

	identity := "original"
	empty := "kept"
	OverrideFromEnv(map[string]*string{
		"GRADEWATCH_TEST_IDENTITY": &identity,
		"GRADEWATCH_TEST_EMPTY":    &empty,
	})
	require.Equal(t, "override", identity)
	require.Equal(t, "kept", empty)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(path, []byte("GRADEWATCH_TEST_DOTENV=from-file\n"), 0600)
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("GRADEWATCH_TEST_DOTENV") })

	LoadDotenv(path, filepath.Join(t.TempDir(), "missing.env"))
	require.Equal(t, "from-file", os.Getenv("GRADEWATCH_TEST_DOTENV"))
}

package globals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestLoadConfigMergesLocalAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	writeFile(t, path, `{
		// shared settings
		identity: "2112000",
		semester_id: "4324",
		interval_minutes: 10,
		targets: [{identity: "2112001", secret: "s2"}],
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{secret: "s1"}`)

	t.Setenv("GRADEWATCH_SEMESTER", "4263")
	t.Setenv("GRADEWATCH_INTERVAL", "15")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, defaultSnapshotDir, config.SnapshotDir)

	expected := []Target{
		{Identity: "2112000", Secret: "s1", SemesterID: "4263", IntervalMinutes: 15},
		{Identity: "2112001", Secret: "s2", SemesterID: "4263", IntervalMinutes: 15},
	}
	if diff := cmp.Diff(expected, config.AllTargets()); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigEnvironmentOnly(t *testing.T) {
	t.Setenv("GRADEWATCH_IDENTITY", "2112000")
	t.Setenv("GRADEWATCH_SECRET", "secret")
	t.Setenv("GRADEWATCH_DATABASE_URL", "libsql://grades.example.com")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json5"))
	require.NoError(t, err)
	require.Equal(t, "libsql://grades.example.com", config.Database.Url)

	value := &Value{Config: config}
	target, err := value.Target()
	require.NoError(t, err)
	require.Equal(t, "2112000", target.Identity)
}

func TestLoadConfigBadInterval(t *testing.T) {
	t.Setenv("GRADEWATCH_INTERVAL", "soon")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json5"))
	require.Error(t, err)
}

func TestTargetRequiresSecret(t *testing.T) {
	value := &Value{Config: Config{Identity: "2112000"}}
	_, err := value.Target()
	require.Error(t, err)

	value = &Value{}
	_, err = value.Target()
	require.Error(t, err)
}

func TestAuthenticatorVerdict(t *testing.T) {
	_, err := Config{Gateway: GatewayConfig{LoginVerdict: "structured"}}.Authenticator(false)
	require.NoError(t, err)

	_, err = Config{Gateway: GatewayConfig{LoginVerdict: "strict"}}.Authenticator(false)
	require.Error(t, err)
}

package devenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPassthrough(t *testing.T) {
	got, err := ResolvePath("snapshots/last.json")
	require.NoError(t, err)
	require.Equal(t, "snapshots/last.json", got)
}

func TestResolvePathDevState(t *testing.T) {
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	got, err := ResolvePath("<dev_state>/resty/webvpn")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "resty", "webvpn"), got)
}

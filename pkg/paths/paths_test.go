package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDir(t *testing.T) {
	dataDir := t.TempDir()
	outsideDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "plain file name", path: ".callisto.json"},
		{name: "nested file", path: "profiles/work.json"},
		{name: "absolute path within dir", path: filepath.Join(dataDir, "x.json")},
		{name: "path traversal attempt", path: "../../../etc/passwd", wantErr: true, errMsg: "access denied"},
		{name: "absolute path outside dir", path: filepath.Join(outsideDir, "x.json"), wantErr: true, errMsg: "access denied"},
		{name: "sibling with shared prefix", path: dataDir + "-evil/x.json", wantErr: true, errMsg: "access denied"},
		{name: "path with .. in middle", path: "sub/../../secret", wantErr: true, errMsg: "access denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePathWithinDir(tt.path, dataDir)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))
		})
	}
}

func TestConfigPath(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "app", "callisto")

	path, err := ConfigPath(dataDir, ".callisto.json")
	require.NoError(t, err)
	assert.Equal(t, ".callisto.json", filepath.Base(path))

	info, err := os.Stat(dataDir)
	require.NoError(t, err, "data directory must be created")
	assert.True(t, info.IsDir())

	_, err = ConfigPath(dataDir, "")
	assert.Error(t, err)

	_, err = ConfigPath(dataDir, ".")
	assert.Error(t, err)

	_, err = ConfigPath(dataDir, "../escape.json")
	assert.Error(t, err)
}

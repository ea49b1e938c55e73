package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBinary(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		dirs    []string
		want    string
		wantErr bool
	}{
		{name: "at root", files: []string{"ox", "README.md"}, want: "ox"},
		{name: "nested", files: []string{"pkg/v1/bin/ox", "pkg/LICENSE"}, want: "pkg/v1/bin/ox"},
		{name: "exact name only", files: []string{"oxide", "ox.sha256", "box"}, wantErr: true},
		{name: "directory named ox ignored", dirs: []string{"ox"}, files: []string{"ox/readme"}, wantErr: true},
		{name: "empty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, d := range tt.dirs {
				require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
			}
			for _, f := range tt.files {
				p := filepath.Join(root, filepath.FromSlash(f))
				require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
				require.NoError(t, os.WriteFile(p, []byte(f), 0o755))
			}

			got, err := FindBinary(root, "ox")
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrBinaryNotFound), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestFindBinary_DeepTree(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, filepath.FromSlash(strings.Repeat("d/", 64)))
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "ox"), nil, 0o755))

	got, err := FindBinary(root, "ox")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(deep, "ox"), got)
}

func TestFindBinary_WindowsName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ox"), nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ox.exe"), nil, 0o755))

	got, err := FindBinary(root, BinaryName("windows"))
	require.NoError(t, err)
	assert.Equal(t, "ox.exe", filepath.Base(got))
}

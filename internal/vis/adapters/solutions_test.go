package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arraydata/visibility.report/internal/jones"
	"github.com/arraydata/visibility.report/internal/pos"
)

func writeSolutionsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solutions.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

const solutionsHeader = "antenna,channel,xx_re,xx_im,xy_re,xy_im,yx_re,yx_im,yy_re,yy_im\n"

func TestLoadJonesSolutions(t *testing.T) {
	path := writeSolutionsFile(t, solutionsHeader+
		"0,0,1,0,0,0,0,0,1,0\n"+
		"0,1,2,0.5,0,0,0,0,2,-0.5\n"+
		"3,0,1,0,0,0,0,0,1,0\n"+
		"3,1,1,0,0.1,0,0.1,0,1,0\n")

	set, err := LoadJonesSolutions(path, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, set.NumChannels())
	assert.Equal(t, []int{0, 3}, set.Antennas())

	sols, ok := set.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, jones.Identity(), sols[0])
	assert.Equal(t, jones.Jones{complex(2, 0.5), 0, 0, complex(2, -0.5)}, sols[1])

	_, ok = set.Lookup(1)
	assert.False(t, ok, "antenna 1 never appeared, so it has no solution")
}

func TestLoadJonesSolutionsErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"wrong header", "ant,chan,a,b,c,d,e,f,g,h\n"},
		{"channel out of range", solutionsHeader + "0,5,1,0,0,0,0,0,1,0\n"},
		{"negative channel", solutionsHeader + "0,-1,1,0,0,0,0,0,1,0\n"},
		{"duplicate entry", solutionsHeader + "0,0,1,0,0,0,0,0,1,0\n0,0,2,0,0,0,0,0,2,0\n"},
		{"missing channel", solutionsHeader + "0,0,1,0,0,0,0,0,1,0\n"},
		{"bad float", solutionsHeader + "0,0,abc,0,0,0,0,0,1,0\n0,1,1,0,0,0,0,0,1,0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSolutionsFile(t, tt.csv)
			_, err := LoadJonesSolutions(path, 2)
			require.Error(t, err)
			var cfg *pos.ConfigError
			assert.True(t, errors.As(err, &cfg), "want ConfigError, got %T", err)
		})
	}
}

func TestLoadJonesSolutionsMissingFile(t *testing.T) {
	_, err := LoadJonesSolutions("/nonexistent/solutions.csv", 2)
	require.Error(t, err)
}

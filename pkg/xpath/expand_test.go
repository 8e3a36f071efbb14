package xpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	for in, expected := range map[string]string{
		"~/.screenrecorder.yaml": filepath.Join(home, ".screenrecorder.yaml"),
		"~":                      home,
		"/tmp/out.mp4":           "/tmp/out.mp4",
		"rel/~/out.mp4":          "rel/~/out.mp4",
	} {
		out, err := Expand(in)
		require.NoError(t, err)
		require.Equal(t, expected, out, in)
	}
}

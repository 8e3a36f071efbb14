package filepicker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZenityArgs(t *testing.T) {
	require.Equal(t, []string{
		"--file-selection",
		"--save",
		"--confirm-overwrite",
		"--title=Set Output File",
		"--filename=out.mp4",
	}, NewZenity().args("out.mp4"))
}

func writeScript(t *testing.T, body string) string {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts only")
	}
	path := filepath.Join(t.TempDir(), "zenity")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestZenityPickSaveFile(t *testing.T) {
	z := NewZenity()
	z.ExecPath = writeScript(t, `echo "/home/user/rec.webm"`)

	path, err := z.PickSaveFile(context.Background(), "out.mp4")
	require.NoError(t, err)
	require.Equal(t, "/home/user/rec.webm", path)
}

func TestZenityCancelled(t *testing.T) {
	z := NewZenity()
	z.ExecPath = writeScript(t, `exit 1`)

	_, err := z.PickSaveFile(context.Background(), "out.mp4")
	require.ErrorIs(t, err, ErrCancelled)
}

func TestZenityNotFound(t *testing.T) {
	z := NewZenity()
	z.ExecPath = filepath.Join(t.TempDir(), "no-such-zenity")

	_, err := z.PickSaveFile(context.Background(), "out.mp4")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrCancelled)
}

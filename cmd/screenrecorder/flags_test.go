package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
	"github.com/xaionaro-go/screenrecorder/pkg/config"
)

func TestRecordFlagsOverrideOnlyWhatIsSet(t *testing.T) {
	cmd := &cobra.Command{Use: "record"}
	var f recordFlags
	addRecordFlags(cmd.Flags(), &f)
	require.NoError(t, cmd.Flags().Parse([]string{"-o", "rec.webm", "--width", "800", "--mic"}))

	cfg := config.NewConfig()
	cfg.Capture.Rect = types.Rect{X: 10, Y: 20, Width: 100, Height: 100}
	cfg.Capture.FramesToSkip = 7
	f.apply(cmd, &cfg)

	require.Equal(t, "rec.webm", cfg.OutputPath)
	require.Equal(t, types.Rect{X: 10, Y: 20, Width: 800, Height: 100}, cfg.Capture.Rect)
	require.True(t, cfg.Capture.CaptureMic)
	require.False(t, cfg.Capture.CaptureDesktopAudio)
	require.Equal(t, 7, cfg.Capture.FramesToSkip)
}

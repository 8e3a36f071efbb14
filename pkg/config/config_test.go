package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func TestConfigRoundTrip(t *testing.T) {
	cfg := NewSampleConfig()
	cfg.Devices.MicDevice = "alsa_input.usb-mic"
	cfg.Capture.VideoEncoderOptions = types.Options{{Key: "preset", Value: "ultrafast"}}

	var buf bytes.Buffer
	n, err := cfg.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Contains(t, buf.String(), "capture_desktop_audio: true")

	var parsed Config
	_, err = parsed.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, cfg, parsed)
}

func TestReadFillsDefaults(t *testing.T) {
	var cfg Config
	_, err := cfg.Read([]byte("capture:\n  rect: {x: 1, y: 2, width: 101, height: 51}\n"))
	require.NoError(t, err)
	require.Equal(t, types.Rect{X: 1, Y: 2, Width: 100, Height: 50}, cfg.Capture.Rect)
	require.NotZero(t, cfg.Capture.FPS)
	require.NotZero(t, cfg.Capture.SampleRate)
}

func TestWriteConfigToPath(t *testing.T) {
	ctx := context.Background()
	cfgPath := filepath.Join(t.TempDir(), "screenrecorder.yaml")

	cfg, err := ReadOrDefault(ctx, cfgPath)
	require.NoError(t, err)
	require.Equal(t, NewConfig(), cfg)

	cfg.OutputPath = "/tmp/rec.webm"
	require.NoError(t, WriteConfigToPath(ctx, cfgPath, cfg))
	require.NoFileExists(t, cfgPath+".new")

	read, err := ReadOrDefault(ctx, cfgPath)
	require.NoError(t, err)
	require.Equal(t, cfg, read)

	require.NoError(t, os.WriteFile(cfgPath, []byte("capture: [\n"), 0640))
	_, err = ReadOrDefault(ctx, cfgPath)
	require.Error(t, err)
}

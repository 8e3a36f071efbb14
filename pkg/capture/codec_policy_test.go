package capture

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/fake"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func TestContainerCodecs(t *testing.T) {
	for formatName, expected := range map[string][2]types.CodecID{
		"mp4":      {types.CodecIDH264, types.CodecIDAAC},
		"asf":      {types.CodecIDMSMPEG4V3, types.CodecIDMP3},
		"gif":      {types.CodecIDGIF, types.CodecIDNone},
		"apng":     {types.CodecIDAPNG, types.CodecIDNone},
		"webm":     {types.CodecIDVP9, types.CodecIDOpus},
		"mpeg":     {types.CodecIDMPEG1Video, types.CodecIDMP2},
		"matroska": {types.CodecIDNone, types.CodecIDNone},
	} {
		t.Run(formatName, func(t *testing.T) {
			video, audio := ContainerCodecs(formatName)
			require.Equal(t, expected[0], video)
			require.Equal(t, expected[1], audio)
		})
	}
}

func TestChooseEncoder(t *testing.T) {
	backend := fake.NewBackend()

	codecID, err := chooseEncoder(backend, types.CodecIDVP9)
	require.NoError(t, err)
	require.Equal(t, types.CodecIDVP8, codecID)

	_, err = chooseEncoder(backend, types.CodecIDNone)
	require.Error(t, err)

	backend.MissingEncoders = map[types.CodecID]struct{}{types.CodecIDMP3: {}}
	codecID, err = chooseEncoder(backend, types.CodecIDMP3)
	require.NoError(t, err)
	require.Equal(t, types.CodecIDMP2, codecID)

	backend.MissingEncoders[types.CodecIDMP2] = struct{}{}
	_, err = chooseEncoder(backend, types.CodecIDMP3)
	require.Error(t, err)
}

func TestNearestSampleRate(t *testing.T) {
	require.Equal(t, 48000, NearestSampleRate(types.CodecIDOpus, 44100))
	require.Equal(t, 44100, NearestSampleRate(types.CodecIDAAC, 44100))
	require.Equal(t, 8000, NearestSampleRate(types.CodecIDMP3, 7000))
	require.Equal(t, 12345, NearestSampleRate(types.CodecIDPCMS16LE, 12345))
}

func TestPixelAndSampleFormats(t *testing.T) {
	require.Equal(t, types.PixelFormatRGB8, pixelFormatFor(types.CodecIDGIF))
	require.Equal(t, types.PixelFormatRGBA, pixelFormatFor(types.CodecIDAPNG))
	require.Equal(t, types.PixelFormatYUV420P, pixelFormatFor(types.CodecIDH264))
	require.Equal(t, types.SampleFormatS16, sampleFormatFor(types.CodecIDOpus))
	require.Equal(t, types.SampleFormatFLTP, sampleFormatFor(types.CodecIDAAC))
}

func TestAutoBitRates(t *testing.T) {
	require.Equal(t, int64(1280*720*30*8), AutoVideoBitRate(1280, 720, 30))
	require.Equal(t, int64(141120), AutoAudioBitRate(44100, 2))
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 30, cfg.FramesToSkip)
	require.False(t, cfg.AudioEnabled())

	cfg = Config{FramesToSkip: -1, Rect: types.Rect{Width: 3, Height: 5}}.WithDefaults()
	require.Equal(t, DefaultFPS, cfg.FPS)
	require.Equal(t, DefaultSampleRate, cfg.SampleRate)
	require.Zero(t, cfg.FramesToSkip)
	require.Equal(t, types.Rect{Width: 2, Height: 4}, cfg.Rect)
}

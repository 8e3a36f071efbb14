package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type staticLister struct {
	devices []audiodevices.Device
	err     error
	calls   int
}

func (l *staticLister) ListSources(ctx context.Context) ([]audiodevices.Device, error) {
	l.calls++
	return l.devices, l.err
}

func TestX11Screen(t *testing.T) {
	selector, err := X11Screen{Display: ":1"}.ScreenSelector(
		context.Background(),
		types.Rect{X: 10, Y: 20, Width: 640, Height: 480},
		25,
	)
	require.NoError(t, err)
	require.Equal(t, "x11grab", selector.Format)
	require.Equal(t, ":1", selector.URL)

	for key, expected := range map[string]string{
		"video_size": "640x480",
		"framerate":  "25",
		"grab_x":     "10",
		"grab_y":     "20",
	} {
		value, ok := selector.Options.Get(key)
		require.True(t, ok, key)
		require.Equal(t, expected, value, key)
	}
}

func TestX11ScreenNoDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	_, err := X11Screen{}.ScreenSelector(context.Background(), types.Rect{Width: 2, Height: 2}, 30)
	require.Error(t, err)
}

func TestGDIScreen(t *testing.T) {
	selector, err := GDIScreen{}.ScreenSelector(
		context.Background(),
		types.Rect{X: 1, Y: 2, Width: 100, Height: 50},
		30,
	)
	require.NoError(t, err)
	require.Equal(t, "gdigrab", selector.Format)
	require.Equal(t, "desktop", selector.URL)
	value, ok := selector.Options.Get("offset_y")
	require.True(t, ok)
	require.Equal(t, "2", value)
}

func TestPulseAudio(t *testing.T) {
	lister := &staticLister{devices: []audiodevices.Device{
		{ID: "alsa_input.mic"},
		{ID: "alsa_output.speakers.monitor"},
	}}
	source := &PulseAudio{Devices: audiodevices.NewService(lister)}

	selector, err := source.AudioSelector(context.Background(), types.AudioDeviceDesktop, 44100)
	require.NoError(t, err)
	require.Equal(t, types.DeviceSelector{Format: "pulse", URL: "alsa_output.speakers.monitor"}, selector)

	selector, err = source.AudioSelector(context.Background(), types.AudioDeviceMic, 44100)
	require.NoError(t, err)
	require.Equal(t, "alsa_input.mic", selector.URL)

	source.Config.MicDevice = "custom_mic"
	selector, err = source.AudioSelector(context.Background(), types.AudioDeviceMic, 44100)
	require.NoError(t, err)
	require.Equal(t, "custom_mic", selector.URL)
	require.Equal(t, 2, lister.calls)
}

func TestPulseAudioErrors(t *testing.T) {
	_, err := (&PulseAudio{Devices: audiodevices.NewService(&staticLister{})}).AudioSelector(context.Background(), types.AudioDeviceMic, 44100)
	require.Error(t, err)

	errBoom := errors.New("boom")
	_, err = (&PulseAudio{Devices: audiodevices.NewService(&staticLister{err: errBoom})}).AudioSelector(context.Background(), types.AudioDeviceDesktop, 44100)
	require.ErrorIs(t, err, errBoom)
}

func TestDirectShow(t *testing.T) {
	_, err := DirectShow{}.AudioSelector(context.Background(), types.AudioDeviceMic, 44100)
	require.ErrorIs(t, err, types.ErrNotImplemented)

	selector, err := DirectShow{Config: Config{MicDevice: "Microphone (USB)"}}.AudioSelector(context.Background(), types.AudioDeviceMic, 48000)
	require.NoError(t, err)
	require.Equal(t, "dshow", selector.Format)
	require.Equal(t, "audio=Microphone (USB)", selector.URL)
}

// Package devices builds the libavdevice selectors of the screen grabber
// and the audio devices of the current platform.
package devices

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Config overrides the automatically chosen devices.
type Config struct {
	// X11 display for x11grab; $DISPLAY by default.
	Display string `yaml:"display,omitempty"`

	DesktopAudioDevice string `yaml:"desktop_audio_device,omitempty"`
	MicDevice          string `yaml:"mic_device,omitempty"`
}

func (cfg Config) audioOverride(kind types.AudioDeviceKind) string {
	switch kind {
	case types.AudioDeviceDesktop:
		return cfg.DesktopAudioDevice
	case types.AudioDeviceMic:
		return cfg.MicDevice
	}
	return ""
}

func grabOptions(rect types.Rect, fps int) types.Options {
	return types.Options{
		{Key: "video_size", Value: fmt.Sprintf("%dx%d", rect.Width, rect.Height)},
		{Key: "framerate", Value: strconv.Itoa(fps)},
	}
}

// X11Screen captures an area of an X11 display; Wayland is not supported.
type X11Screen struct {
	Display string
}

var _ types.ScreenSource = (*X11Screen)(nil)

func (s X11Screen) ScreenSelector(
	ctx context.Context,
	rect types.Rect,
	fps int,
) (types.DeviceSelector, error) {
	display := s.Display
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		return types.DeviceSelector{}, fmt.Errorf("no X11 display is defined")
	}
	return types.DeviceSelector{
		Format: "x11grab",
		URL:    display,
		Options: append(grabOptions(rect, fps),
			types.Option{Key: "grab_x", Value: strconv.Itoa(rect.X)},
			types.Option{Key: "grab_y", Value: strconv.Itoa(rect.Y)},
		),
	}, nil
}

// GDIScreen captures an area of the Windows desktop.
type GDIScreen struct{}

var _ types.ScreenSource = (*GDIScreen)(nil)

func (GDIScreen) ScreenSelector(
	ctx context.Context,
	rect types.Rect,
	fps int,
) (types.DeviceSelector, error) {
	return types.DeviceSelector{
		Format: "gdigrab",
		URL:    "desktop",
		Options: append(grabOptions(rect, fps),
			types.Option{Key: "offset_x", Value: strconv.Itoa(rect.X)},
			types.Option{Key: "offset_y", Value: strconv.Itoa(rect.Y)},
		),
	}, nil
}

// PulseAudio captures the PulseAudio sources; the desktop audio is taken
// from a monitor of an output.
type PulseAudio struct {
	Config  Config
	Devices *audiodevices.Service
}

var _ types.AudioSource = (*PulseAudio)(nil)

func (a *PulseAudio) AudioSelector(
	ctx context.Context,
	kind types.AudioDeviceKind,
	sampleRate int,
) (types.DeviceSelector, error) {
	deviceID := a.Config.audioOverride(kind)
	if deviceID == "" {
		if err := a.Devices.Refresh(ctx); err != nil {
			return types.DeviceSelector{}, err
		}
		devices := a.Devices.Devices(ctx)
		var (
			dev audiodevices.Device
			ok  bool
		)
		switch kind {
		case types.AudioDeviceDesktop:
			dev, ok = devices.DesktopDevice()
		case types.AudioDeviceMic:
			dev, ok = devices.MicDevice()
		default:
			return types.DeviceSelector{}, fmt.Errorf("unexpected audio device kind: %s", kind)
		}
		if !ok {
			return types.DeviceSelector{}, fmt.Errorf("no %s audio device found", kind)
		}
		deviceID = dev.ID
	}
	return types.DeviceSelector{
		Format: "pulse",
		URL:    deviceID,
	}, nil
}

// DirectShow captures the Windows audio devices; they have to be
// configured explicitly.
type DirectShow struct {
	Config Config
}

var _ types.AudioSource = (*DirectShow)(nil)

func (a DirectShow) AudioSelector(
	ctx context.Context,
	kind types.AudioDeviceKind,
	sampleRate int,
) (types.DeviceSelector, error) {
	deviceName := a.Config.audioOverride(kind)
	if deviceName == "" {
		return types.DeviceSelector{}, fmt.Errorf("the %s audio device is not configured: %w", kind, types.ErrNotImplemented)
	}
	return types.DeviceSelector{
		Format: "dshow",
		URL:    "audio=" + deviceName,
		Options: types.Options{
			{Key: "sample_rate", Value: strconv.Itoa(sampleRate)},
		},
	}, nil
}

type unsupportedPlatform struct{}

func (unsupportedPlatform) ScreenSelector(context.Context, types.Rect, int) (types.DeviceSelector, error) {
	return types.DeviceSelector{}, fmt.Errorf("unsupported capture platform: %w", types.ErrNotImplemented)
}

func (unsupportedPlatform) AudioSelector(context.Context, types.AudioDeviceKind, int) (types.DeviceSelector, error) {
	return types.DeviceSelector{}, fmt.Errorf("unsupported capture platform: %w", types.ErrNotImplemented)
}

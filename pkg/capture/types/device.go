package types

import (
	"context"
	"fmt"
)

// DeviceSelector addresses a capture device through a libav input format.
type DeviceSelector struct {
	Format  string
	URL     string
	Options Options
}

func (s DeviceSelector) String() string {
	return fmt.Sprintf("%s:%s%v", s.Format, s.URL, s.Options)
}

type AudioDeviceKind int

const (
	AudioDeviceUndefined = AudioDeviceKind(iota)
	AudioDeviceDesktop
	AudioDeviceMic
)

func (k AudioDeviceKind) String() string {
	switch k {
	case AudioDeviceUndefined:
		return "undefined"
	case AudioDeviceDesktop:
		return "desktop"
	case AudioDeviceMic:
		return "mic"
	default:
		return fmt.Sprintf("unexpected_audio_device_kind_%d", int(k))
	}
}

type ScreenSource interface {
	ScreenSelector(ctx context.Context, rect Rect, fps int) (DeviceSelector, error)
}

type AudioSource interface {
	AudioSelector(ctx context.Context, kind AudioDeviceKind, sampleRate int) (DeviceSelector, error)
}

package fake

import (
	"context"
	"strconv"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

const ScreenURL = "screen"

type ScreenSource struct {
	LastRect types.Rect
}

var _ types.ScreenSource = (*ScreenSource)(nil)

func (s *ScreenSource) ScreenSelector(
	ctx context.Context,
	rect types.Rect,
	fps int,
) (types.DeviceSelector, error) {
	s.LastRect = rect
	return types.DeviceSelector{
		Format: "fakescreen",
		URL:    ScreenURL,
		Options: types.Options{
			{Key: "video_size", Value: strconv.Itoa(rect.Width) + "x" + strconv.Itoa(rect.Height)},
			{Key: "framerate", Value: strconv.Itoa(fps)},
		},
	}, nil
}

// AudioSource addresses the devices by the kind name ("desktop" or "mic").
type AudioSource struct{}

var _ types.AudioSource = (*AudioSource)(nil)

func (AudioSource) AudioSelector(
	ctx context.Context,
	kind types.AudioDeviceKind,
	sampleRate int,
) (types.DeviceSelector, error) {
	return types.DeviceSelector{
		Format: "fakeaudio",
		URL:    kind.String(),
	}, nil
}

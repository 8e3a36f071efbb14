//go:build linux
// +build linux

package devices

import (
	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices"
	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices/pulseaudio"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func NewScreenSource(cfg Config) types.ScreenSource {
	return X11Screen{Display: cfg.Display}
}

func NewAudioSource(cfg Config) types.AudioSource {
	return &PulseAudio{
		Config:  cfg,
		Devices: audiodevices.NewService(pulseaudio.NewLister()),
	}
}

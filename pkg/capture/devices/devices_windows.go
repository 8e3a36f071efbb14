//go:build windows
// +build windows

package devices

import (
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func NewScreenSource(cfg Config) types.ScreenSource {
	return GDIScreen{}
}

func NewAudioSource(cfg Config) types.AudioSource {
	return DirectShow{Config: cfg}
}

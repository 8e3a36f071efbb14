//go:build !linux && !windows
// +build !linux,!windows

package devices

import (
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func NewScreenSource(cfg Config) types.ScreenSource {
	return unsupportedPlatform{}
}

func NewAudioSource(cfg Config) types.AudioSource {
	return unsupportedPlatform{}
}

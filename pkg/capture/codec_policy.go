package capture

import (
	"fmt"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type containerCodecs struct {
	Video types.CodecID
	Audio types.CodecID
}

// default codecs of the muxers reachable through the supported extensions
var containerDefaults = map[string]containerCodecs{
	"mp4":  {Video: types.CodecIDH264, Audio: types.CodecIDAAC},
	"mov":  {Video: types.CodecIDH264, Audio: types.CodecIDAAC},
	"asf":  {Video: types.CodecIDMSMPEG4V3, Audio: types.CodecIDMP3},
	"gif":  {Video: types.CodecIDGIF},
	"webm": {Video: types.CodecIDVP9, Audio: types.CodecIDOpus},
	"avi":  {Video: types.CodecIDMPEG4, Audio: types.CodecIDMP3},
	"flv":  {Video: types.CodecIDFLV1, Audio: types.CodecIDMP3},
	"apng": {Video: types.CodecIDAPNG},
	"mpeg": {Video: types.CodecIDMPEG1Video, Audio: types.CodecIDMP2},
}

// codecs the recorder never runs, mapped to a compatible substitute
var codecSubstitutes = map[types.CodecID]types.CodecID{
	types.CodecIDVP9: types.CodecIDVP8,
}

// used when the build of libav has no encoder for the codec
var encoderFallbacks = map[types.CodecID]types.CodecID{
	types.CodecIDH264: types.CodecIDMPEG4,
	types.CodecIDMP3:  types.CodecIDMP2,
}

var supportedSampleRates = map[types.CodecID][]int{
	types.CodecIDOpus: {48000, 24000, 16000, 12000, 8000},
	types.CodecIDMP2:  {44100, 48000, 32000, 22050, 24000, 16000},
	types.CodecIDMP3:  {44100, 48000, 32000, 22050, 24000, 16000, 11025, 12000, 8000},
	types.CodecIDAAC:  {96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000, 7350},
}

// ContainerCodecs returns the default codecs of a muxer;
// types.CodecIDNone means the medium is not supported.
func ContainerCodecs(formatName string) (video, audio types.CodecID) {
	c := containerDefaults[formatName]
	return c.Video, c.Audio
}

func chooseEncoder(
	backend types.Backend,
	codecID types.CodecID,
) (types.CodecID, error) {
	if codecID == types.CodecIDNone {
		return types.CodecIDNone, fmt.Errorf("no codec is defined")
	}
	if substitute, ok := codecSubstitutes[codecID]; ok {
		codecID = substitute
	}
	if backend.HasEncoder(codecID) {
		return codecID, nil
	}
	fallback, ok := encoderFallbacks[codecID]
	if ok && backend.HasEncoder(fallback) {
		return fallback, nil
	}
	return types.CodecIDNone, fmt.Errorf("no encoder available for codec '%s'", codecID)
}

func pixelFormatFor(codecID types.CodecID) types.PixelFormat {
	switch codecID {
	case types.CodecIDGIF:
		return types.PixelFormatRGB8
	case types.CodecIDAPNG:
		return types.PixelFormatRGBA
	default:
		return types.PixelFormatYUV420P
	}
}

func sampleFormatFor(codecID types.CodecID) types.SampleFormat {
	switch codecID {
	case types.CodecIDMP2, types.CodecIDOpus:
		return types.SampleFormatS16
	default:
		return types.SampleFormatFLTP
	}
}

// NearestSampleRate returns the rate supported by the codec closest to the requested one.
func NearestSampleRate(codecID types.CodecID, sampleRate int) int {
	rates := supportedSampleRates[codecID]
	if len(rates) == 0 {
		return sampleRate
	}
	best := rates[0]
	for _, rate := range rates[1:] {
		if abs(rate-sampleRate) < abs(best-sampleRate) {
			best = rate
		}
	}
	return best
}

func AutoVideoBitRate(width, height, fps int) int64 {
	return int64(width) * int64(height) * int64(fps) * 8
}

func AutoAudioBitRate(sampleRate, channels int) int64 {
	return int64(sampleRate) * 16 * int64(channels) / 10
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package libav

import (
	"errors"
	"fmt"
	"io"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

var codecIDs = map[types.CodecID]astiav.CodecID{
	types.CodecIDH264:       astiav.CodecIDH264,
	types.CodecIDMPEG4:      astiav.CodecIDMpeg4,
	types.CodecIDMSMPEG4V3:  astiav.CodecIDMsmpeg4V3,
	types.CodecIDMPEG1Video: astiav.CodecIDMpeg1Video,
	types.CodecIDFLV1:       astiav.CodecIDFlv1,
	types.CodecIDVP8:        astiav.CodecIDVp8,
	types.CodecIDVP9:        astiav.CodecIDVp9,
	types.CodecIDGIF:        astiav.CodecIDGif,
	types.CodecIDAPNG:       astiav.CodecIDApng,
	types.CodecIDAAC:        astiav.CodecIDAac,
	types.CodecIDMP2:        astiav.CodecIDMp2,
	types.CodecIDMP3:        astiav.CodecIDMp3,
	types.CodecIDOpus:       astiav.CodecIDOpus,
	types.CodecIDVorbis:     astiav.CodecIDVorbis,
}

func codecIDToAstiav(codecID types.CodecID) (astiav.CodecID, error) {
	id, ok := codecIDs[codecID]
	if !ok {
		return astiav.CodecIDNone, fmt.Errorf("unsupported codec '%s'", codecID)
	}
	return id, nil
}

func codecIDFromAstiav(codecID astiav.CodecID) types.CodecID {
	return types.CodecID(codecID.Name())
}

func mediaTypeFromAstiav(mediaType astiav.MediaType) types.MediaType {
	switch mediaType {
	case astiav.MediaTypeVideo:
		return types.MediaTypeVideo
	case astiav.MediaTypeAudio:
		return types.MediaTypeAudio
	default:
		return types.MediaTypeUnknown
	}
}

func pixelFormatToAstiav(pixFmt types.PixelFormat) (astiav.PixelFormat, error) {
	result := astiav.FindPixelFormatByName(string(pixFmt))
	if result == astiav.PixelFormatNone {
		return result, fmt.Errorf("unknown pixel format '%s'", pixFmt)
	}
	return result, nil
}

func pixelFormatFromAstiav(pixFmt astiav.PixelFormat) types.PixelFormat {
	if pixFmt == astiav.PixelFormatNone {
		return types.PixelFormatNone
	}
	return types.PixelFormat(pixFmt.Name())
}

var sampleFormats = []astiav.SampleFormat{
	astiav.SampleFormatS16,
	astiav.SampleFormatS16P,
	astiav.SampleFormatFlt,
	astiav.SampleFormatFltp,
	astiav.SampleFormatS32,
	astiav.SampleFormatS32P,
	astiav.SampleFormatU8,
	astiav.SampleFormatDbl,
}

func sampleFormatToAstiav(sampleFmt types.SampleFormat) (astiav.SampleFormat, error) {
	for _, candidate := range sampleFormats {
		if candidate.Name() == string(sampleFmt) {
			return candidate, nil
		}
	}
	return astiav.SampleFormatNone, fmt.Errorf("unknown sample format '%s'", sampleFmt)
}

func sampleFormatFromAstiav(sampleFmt astiav.SampleFormat) types.SampleFormat {
	if sampleFmt == astiav.SampleFormatNone {
		return types.SampleFormatNone
	}
	return types.SampleFormat(sampleFmt.Name())
}

var channelLayouts = map[string]astiav.ChannelLayout{
	"mono":   astiav.ChannelLayoutMono,
	"stereo": astiav.ChannelLayoutStereo,
	"2.1":    astiav.ChannelLayout2Point1,
	"quad":   astiav.ChannelLayoutQuad,
	"5.1":    astiav.ChannelLayout5Point1,
	"7.1":    astiav.ChannelLayout7Point1,
}

var defaultChannelLayouts = map[int]astiav.ChannelLayout{
	1: astiav.ChannelLayoutMono,
	2: astiav.ChannelLayoutStereo,
	3: astiav.ChannelLayout2Point1,
	4: astiav.ChannelLayoutQuad,
	6: astiav.ChannelLayout5Point1,
	8: astiav.ChannelLayout7Point1,
}

// channelLayoutToAstiav falls back to the default layout of the channel
// count if the layout name is unknown.
func channelLayoutToAstiav(f types.AudioFormat) (astiav.ChannelLayout, error) {
	if layout, ok := channelLayouts[f.Layout()]; ok {
		return layout, nil
	}
	if layout, ok := defaultChannelLayouts[f.Channels]; ok {
		return layout, nil
	}
	return astiav.ChannelLayout{}, fmt.Errorf("unsupported channel layout '%s' (%d channels)", f.ChannelLayout, f.Channels)
}

func channelLayoutFromAstiav(layout astiav.ChannelLayout) (string, int) {
	channels := layout.Channels()
	for name, candidate := range channelLayouts {
		if candidate.Equal(layout) {
			return name, channels
		}
	}
	return types.DefaultChannelLayout(channels), channels
}

func rationalToAstiav(r types.Rational) astiav.Rational {
	return astiav.NewRational(r.Num, r.Den)
}

func rationalFromAstiav(r astiav.Rational) types.Rational {
	return types.NewRational(r.Num(), r.Den())
}

func videoFormatFromCodecParameters(cp *astiav.CodecParameters, timeBase astiav.Rational) types.VideoFormat {
	return types.VideoFormat{
		Width:       cp.Width(),
		Height:      cp.Height(),
		PixelFormat: pixelFormatFromAstiav(cp.PixelFormat()),
		TimeBase:    rationalFromAstiav(timeBase),
	}
}

func audioFormatFromCodecParameters(cp *astiav.CodecParameters, timeBase astiav.Rational) types.AudioFormat {
	layout, channels := channelLayoutFromAstiav(cp.ChannelLayout())
	return types.AudioFormat{
		SampleRate:    cp.SampleRate(),
		SampleFormat:  sampleFormatFromAstiav(cp.SampleFormat()),
		Channels:      channels,
		ChannelLayout: layout,
		TimeBase:      rationalFromAstiav(timeBase),
	}
}

// convertError maps the libav "try again" and "end of file" conditions
// to the errors the pipeline understands.
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, astiav.ErrEagain):
		return fmt.Errorf("%w: %w", types.ErrAgain, err)
	case errors.Is(err, astiav.ErrEof):
		return fmt.Errorf("%w: %w", io.EOF, err)
	default:
		return err
	}
}

func frameFromTypes(f types.Frame) (*astiav.Frame, error) {
	if f == nil {
		return nil, nil
	}
	frame, ok := f.(*astiav.Frame)
	if !ok {
		return nil, fmt.Errorf("unexpected frame type %T", f)
	}
	return frame, nil
}

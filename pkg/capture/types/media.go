package types

import (
	"fmt"
)

type MediaType int

const (
	MediaTypeUnknown = MediaType(iota)
	MediaTypeVideo
	MediaTypeAudio
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeUnknown:
		return "unknown"
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	default:
		return fmt.Sprintf("unexpected_media_type_%d", int(t))
	}
}

// CodecID is the libav short name of a codec (e.g. "h264", "aac").
type CodecID string

const (
	CodecIDNone       = CodecID("")
	CodecIDH264       = CodecID("h264")
	CodecIDMPEG4      = CodecID("mpeg4")
	CodecIDMSMPEG4V3  = CodecID("msmpeg4v3")
	CodecIDMPEG1Video = CodecID("mpeg1video")
	CodecIDFLV1       = CodecID("flv1")
	CodecIDVP8        = CodecID("vp8")
	CodecIDVP9        = CodecID("vp9")
	CodecIDGIF        = CodecID("gif")
	CodecIDAPNG       = CodecID("apng")
	CodecIDAAC        = CodecID("aac")
	CodecIDMP2        = CodecID("mp2")
	CodecIDMP3        = CodecID("mp3")
	CodecIDOpus       = CodecID("opus")
	CodecIDVorbis     = CodecID("vorbis")
	CodecIDRawVideo   = CodecID("rawvideo")
	CodecIDPCMS16LE   = CodecID("pcm_s16le")
)

// PixelFormat is the libav name of a pixel format (e.g. "yuv420p").
type PixelFormat string

const (
	PixelFormatNone    = PixelFormat("")
	PixelFormatYUV420P = PixelFormat("yuv420p")
	PixelFormatRGB8    = PixelFormat("rgb8")
	PixelFormatRGBA    = PixelFormat("rgba")
	PixelFormatBGR0    = PixelFormat("bgr0")
)

// SampleFormat is the libav name of a sample format (e.g. "s16", "fltp").
type SampleFormat string

const (
	SampleFormatNone = SampleFormat("")
	SampleFormatS16  = SampleFormat("s16")
	SampleFormatS16P = SampleFormat("s16p")
	SampleFormatFLT  = SampleFormat("flt")
	SampleFormatFLTP = SampleFormat("fltp")
)

type Rect struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d|%dx%d)", r.X, r.Y, r.Width, r.Height)
}

type VideoFormat struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
	TimeBase    Rational
}

type AudioFormat struct {
	SampleRate    int
	SampleFormat  SampleFormat
	Channels      int
	ChannelLayout string
	TimeBase      Rational
}

// Layout returns the channel layout, derived from the channel count
// if the layout is not set.
func (f AudioFormat) Layout() string {
	if f.ChannelLayout != "" {
		return f.ChannelLayout
	}
	return DefaultChannelLayout(f.Channels)
}

func DefaultChannelLayout(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%dc", channels)
	}
}

type StreamInfo struct {
	Index     int
	MediaType MediaType
	CodecID   CodecID
	TimeBase  Rational
	Video     VideoFormat
	Audio     AudioFormat
}

// Option is a key/value pair passed to libav as a dictionary entry.
type Option struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type Options []Option

func (opts Options) Get(key string) (string, bool) {
	for _, opt := range opts {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return "", false
}

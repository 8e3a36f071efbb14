package capture

import (
	"time"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

const (
	DefaultFPS          = 30
	DefaultVideoBitRate = 4_000_000
	DefaultSampleRate   = 44100
	DefaultAudioBitRate = 64000
	OutputChannels      = 2
	DefaultWarmUp       = time.Second

	videoGOPSize = 12

	// audio frame capacity for variable-frame-size encoders
	variableFrameSize = 10000
)

// Config is the capture configuration. It is copied at the start of a
// recording and never changes until the recording ends.
type Config struct {
	Rect                types.Rect    `yaml:"rect"`
	FPS                 int           `yaml:"fps"`
	VideoBitRate        int64         `yaml:"video_bit_rate"` // 0 means auto
	SampleRate          int           `yaml:"sample_rate"`
	AudioBitRate        int64         `yaml:"audio_bit_rate"` // 0 means auto
	CaptureDesktopAudio bool          `yaml:"capture_desktop_audio"`
	CaptureMic          bool          `yaml:"capture_mic"`
	FramesToSkip        int           `yaml:"frames_to_skip"`
	VideoEncoderOptions types.Options `yaml:"video_encoder_options,omitempty"`
	AudioEncoderOptions types.Options `yaml:"audio_encoder_options,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		FPS:          DefaultFPS,
		VideoBitRate: DefaultVideoBitRate,
		SampleRate:   DefaultSampleRate,
		AudioBitRate: DefaultAudioBitRate,
		FramesToSkip: int(DefaultWarmUp * DefaultFPS / time.Second),
	}
}

func (cfg Config) AudioEnabled() bool {
	return cfg.CaptureDesktopAudio || cfg.CaptureMic
}

// WithDefaults fills the zero-valued rates with the defaults and forces
// even frame dimensions.
func (cfg Config) WithDefaults() Config {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.FramesToSkip < 0 {
		cfg.FramesToSkip = 0
	}
	cfg.Rect = EvenRect(cfg.Rect)
	return cfg
}

// EvenRect decrements odd dimensions: YUV420 requires even ones.
func EvenRect(r types.Rect) types.Rect {
	if r.Width%2 != 0 {
		r.Width--
	}
	if r.Height%2 != 0 {
		r.Height--
	}
	return r
}

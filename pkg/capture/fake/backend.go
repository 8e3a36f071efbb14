// Package fake implements an in-memory capture backend that counts its
// resources; it is used to test the pipeline without libav.
package fake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type Stage string

const (
	StageOpenInput    = Stage("open_input")
	StageDecoder      = Stage("decoder")
	StageRescaler     = Stage("rescaler")
	StageResampler    = Stage("resampler")
	StageMixGraph     = Stage("mix_graph")
	StageVideoEncoder = Stage("video_encoder")
	StageAudioEncoder = Stage("audio_encoder")
	StageOutput       = Stage("output")
	StageNewStream    = Stage("new_stream")
	StageWriteHeader  = Stage("write_header")
	StageWritePacket  = Stage("write_packet")
)

// Source describes what a fake device produces.
type Source struct {
	MediaType types.MediaType

	// Packets is the amount of packets before io.EOF; negative means infinite.
	Packets int

	Width  int
	Height int
	FPS    int

	SampleRate       int
	Channels         int
	ChannelLayout    string
	SamplesPerPacket int
}

type Backend struct {
	Resources Resources

	// Sources is keyed by the URL of a DeviceSelector.
	Sources map[string]*Source

	// FailOn makes the stage return the error.
	FailOn map[Stage]error

	// MissingEncoders lists codecs the backend has no encoder for.
	MissingEncoders map[types.CodecID]struct{}

	// OnOutputClose is called when an output gets closed.
	OnOutputClose func(url string)

	// AudioFrameSize is the frame size of audio encoders, zero means variable.
	AudioFrameSize int

	// VideoStreamTimeBase overrides the time base of video muxer streams
	// (like mp4 does); zero means the encoder time base.
	VideoStreamTimeBase types.Rational

	locker  sync.Mutex
	outputs []*Output
}

var _ types.Backend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{
		Sources: map[string]*Source{
			ScreenURL: {
				MediaType: types.MediaTypeVideo,
				Packets:   -1,
				Width:     1920,
				Height:    1080,
				FPS:       30,
			},
			types.AudioDeviceDesktop.String(): {
				MediaType:        types.MediaTypeAudio,
				Packets:          -1,
				SampleRate:       48000,
				Channels:         2,
				SamplesPerPacket: 940,
			},
			types.AudioDeviceMic.String(): {
				MediaType:        types.MediaTypeAudio,
				Packets:          -1,
				SampleRate:       48000,
				Channels:         1,
				SamplesPerPacket: 480,
			},
		},
		FailOn:         map[Stage]error{},
		AudioFrameSize: 1024,
	}
}

func (b *Backend) fail(stage Stage) error {
	if err, ok := b.FailOn[stage]; ok {
		return fmt.Errorf("fake failure at stage '%s': %w", stage, err)
	}
	return nil
}

// Outputs returns every output created by the backend.
func (b *Backend) Outputs() []*Output {
	b.locker.Lock()
	defer b.locker.Unlock()
	return append([]*Output{}, b.outputs...)
}

func (b *Backend) LastOutput() *Output {
	outputs := b.Outputs()
	if len(outputs) == 0 {
		return nil
	}
	return outputs[len(outputs)-1]
}

func (b *Backend) OpenInput(
	ctx context.Context,
	selector types.DeviceSelector,
) (types.Demuxer, error) {
	if err := b.fail(StageOpenInput); err != nil {
		return nil, err
	}
	source, ok := b.Sources[selector.URL]
	if !ok {
		return nil, fmt.Errorf("device '%s' not found", selector.URL)
	}
	b.Resources.acquire("demuxer")
	return &Demuxer{backend: b, source: *source}, nil
}

func (b *Backend) NewDecoder(
	ctx context.Context,
	input types.Demuxer,
	streamIndex int,
) (types.Decoder, error) {
	if err := b.fail(StageDecoder); err != nil {
		return nil, err
	}
	demuxer, ok := input.(*Demuxer)
	if !ok {
		return nil, fmt.Errorf("unexpected demuxer type %T", input)
	}
	streams := demuxer.Streams()
	if streamIndex < 0 || streamIndex >= len(streams) {
		return nil, fmt.Errorf("stream #%d not found", streamIndex)
	}
	b.Resources.acquire("decoder")
	return &Decoder{backend: b, info: streams[streamIndex]}, nil
}

func (b *Backend) NewRescaler(
	ctx context.Context,
	src, dst types.VideoFormat,
) (types.Rescaler, error) {
	if err := b.fail(StageRescaler); err != nil {
		return nil, err
	}
	b.Resources.acquire("rescaler")
	return &Rescaler{backend: b, Src: src, Dst: dst}, nil
}

func (b *Backend) NewResampler(
	ctx context.Context,
	src, dst types.AudioFormat,
	frameSize int,
) (types.Resampler, error) {
	if err := b.fail(StageResampler); err != nil {
		return nil, err
	}
	if src.SampleRate <= 0 || dst.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: %d -> %d", src.SampleRate, dst.SampleRate)
	}
	b.Resources.acquire("resampler")
	return &Resampler{backend: b, Src: src, Dst: dst, FrameSize: frameSize}, nil
}

func (b *Backend) NewMixGraph(
	ctx context.Context,
	inputs []types.MixInput,
	output types.AudioFormat,
) (types.MixGraph, error) {
	if err := b.fail(StageMixGraph); err != nil {
		return nil, err
	}
	b.Resources.acquire("mix_graph")
	return &MixGraph{
		backend:  b,
		Inputs:   inputs,
		Output:   output,
		Pushed:   make([]int, len(inputs)),
		buffered: make([]int, len(inputs)),
		ended:    make([]bool, len(inputs)),
	}, nil
}

func (b *Backend) HasEncoder(codecID types.CodecID) bool {
	_, missing := b.MissingEncoders[codecID]
	return !missing
}

func (b *Backend) NewEncoder(
	ctx context.Context,
	params types.EncoderParams,
) (types.Encoder, error) {
	stage := StageVideoEncoder
	if params.MediaType == types.MediaTypeAudio {
		stage = StageAudioEncoder
	}
	if err := b.fail(stage); err != nil {
		return nil, err
	}
	if !b.HasEncoder(params.CodecID) {
		return nil, fmt.Errorf("encoder '%s' not found", params.CodecID)
	}
	b.Resources.acquire("encoder")
	enc := &Encoder{backend: b, Params: params}
	if params.MediaType == types.MediaTypeAudio {
		enc.frameSize = b.AudioFrameSize
	}
	return enc, nil
}

var formatByExtension = map[string]string{
	".mp4":  "mp4",
	".mov":  "mov",
	".wmv":  "asf",
	".gif":  "gif",
	".webm": "webm",
	".avi":  "avi",
	".flv":  "flv",
	".apng": "apng",
	".mpg":  "mpeg",
	".mkv":  "matroska",
}

func (b *Backend) NewOutput(
	ctx context.Context,
	url string,
) (types.Output, error) {
	if err := b.fail(StageOutput); err != nil {
		return nil, err
	}
	formatName, ok := formatByExtension[strings.ToLower(filepath.Ext(url))]
	if !ok {
		return nil, fmt.Errorf("unable to guess the output format of '%s'", url)
	}
	b.Resources.acquire("output")
	output := &Output{
		backend:    b,
		url:        url,
		formatName: formatName,
	}
	b.locker.Lock()
	b.outputs = append(b.outputs, output)
	b.locker.Unlock()
	return output, nil
}

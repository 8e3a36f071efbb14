package types

import (
	"context"
	"io"
)

type Packet interface {
	StreamIndex() int
	SetStreamIndex(int)
	Pts() int64
	Dts() int64
	Size() int
	RescaleTs(src, dst Rational)
}

type Frame interface {
	Pts() int64
	SetPts(int64)
	NbSamples() int
}

// Demuxer is an opened input (a capture device).
type Demuxer interface {
	io.Closer

	Streams() []StreamInfo

	// ReadPacket returns the next packet; it stays valid until the next call.
	// io.EOF is returned when the input is exhausted.
	ReadPacket(ctx context.Context) (Packet, error)
}

type Decoder interface {
	io.Closer

	// StreamInfo returns the actual parameters of the decoded frames.
	StreamInfo() StreamInfo

	// SendPacket with a nil packet enters the draining mode.
	SendPacket(ctx context.Context, pkt Packet) error

	// ReceiveFrame returns ErrAgain if more input is needed, and io.EOF
	// when fully drained. The frame stays valid until the next call.
	ReceiveFrame(ctx context.Context) (Frame, error)
}

type Rescaler interface {
	io.Closer

	Rescale(ctx context.Context, src Frame) (Frame, error)
}

type Resampler interface {
	io.Closer

	// SendFrame with a nil frame flushes the samples buffered internally.
	SendFrame(ctx context.Context, src Frame) error

	// ReceiveFrame returns ErrAgain if less than a full frame is pending.
	ReceiveFrame(ctx context.Context) (Frame, error)
}

type MixInput struct {
	Name   string
	Format AudioFormat
}

type MixGraph interface {
	io.Closer

	// SendFrame pushes a frame into the input #inputIdx; a nil frame marks
	// the end of that input.
	SendFrame(ctx context.Context, inputIdx int, f Frame) error

	// ReceiveFrame returns ErrAgain if no mixed frame is available yet.
	ReceiveFrame(ctx context.Context) (Frame, error)

	OutputFormat() AudioFormat
}

type EncoderParams struct {
	CodecID      CodecID
	MediaType    MediaType
	Video        VideoFormat
	Audio        AudioFormat
	FrameRate    int
	BitRate      int64
	GOPSize      int
	GlobalHeader bool
	Options      Options
}

type Encoder interface {
	io.Closer

	CodecID() CodecID
	TimeBase() Rational
	VideoFormat() VideoFormat
	AudioFormat() AudioFormat

	// FrameSize is the amount of samples per audio frame the encoder
	// expects; zero means variable frame size.
	FrameSize() int

	// SendFrame with a nil frame enters the draining mode.
	SendFrame(ctx context.Context, f Frame) error

	// ReceivePacket returns ErrAgain if more input is needed, and io.EOF
	// when fully drained.
	ReceivePacket(ctx context.Context) (Packet, error)
}

type MuxStream interface {
	Index() int
	// TimeBase may be changed by the muxer when the header is written.
	TimeBase() Rational
}

// Output is an output container.
type Output interface {
	io.Closer

	URL() string
	FormatName() string
	NeedsGlobalHeader() bool
	NewStream(ctx context.Context, encoder Encoder) (MuxStream, error)
	WriteHeader(ctx context.Context, opts Options) error
	WritePacket(ctx context.Context, pkt Packet) error
	WriteTrailer(ctx context.Context) error
	DumpFormat(ctx context.Context)
}

// Backend creates every media-processing component of the pipeline.
type Backend interface {
	OpenInput(ctx context.Context, selector DeviceSelector) (Demuxer, error)
	NewDecoder(ctx context.Context, input Demuxer, streamIndex int) (Decoder, error)
	NewRescaler(ctx context.Context, src, dst VideoFormat) (Rescaler, error)
	NewResampler(ctx context.Context, src, dst AudioFormat, frameSize int) (Resampler, error)
	NewMixGraph(ctx context.Context, inputs []MixInput, output AudioFormat) (MixGraph, error)
	HasEncoder(codecID CodecID) bool
	NewEncoder(ctx context.Context, params EncoderParams) (Encoder, error)
	NewOutput(ctx context.Context, url string) (Output, error)
}

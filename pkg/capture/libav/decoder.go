package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type Decoder struct {
	*astikit.Closer
	codec        *astiav.Codec
	codecContext *astiav.CodecContext
	inputStream  *astiav.Stream
	frame        *astiav.Frame
	info         types.StreamInfo
}

var _ types.Decoder = (*Decoder)(nil)

func newDecoder(
	ctx context.Context,
	input types.Demuxer,
	streamIndex int,
) (_ret *Decoder, _err error) {
	logger.Debugf(ctx, "newDecoder(%d)", streamIndex)
	defer func() { logger.Debugf(ctx, "/newDecoder(%d): %v", streamIndex, _err) }()

	demuxer, ok := input.(*Demuxer)
	if !ok {
		return nil, fmt.Errorf("unexpected demuxer type %T", input)
	}
	stream := demuxer.stream(streamIndex)
	if stream == nil {
		return nil, fmt.Errorf("stream #%d not found", streamIndex)
	}

	d := &Decoder{
		Closer:      astikit.NewCloser(),
		inputStream: stream,
	}
	defer func() {
		if _err != nil {
			_ = d.Close()
		}
	}()

	cp := stream.CodecParameters()
	d.codec = astiav.FindDecoder(cp.CodecID())
	if d.codec == nil {
		return nil, fmt.Errorf("unable to find a codec using codec ID %v", cp.CodecID())
	}

	d.codecContext = astiav.AllocCodecContext(d.codec)
	if d.codecContext == nil {
		return nil, fmt.Errorf("unable to allocate codec context")
	}
	d.Closer.Add(d.codecContext.Free)

	if err := cp.ToCodecContext(d.codecContext); err != nil {
		return nil, fmt.Errorf("CodecParameters().ToCodecContext(...) returned error: %w", err)
	}
	d.codecContext.SetTimeBase(stream.TimeBase())

	if cp.MediaType() == astiav.MediaTypeVideo {
		d.codecContext.SetFramerate(demuxer.FormatContext.GuessFrameRate(stream, nil))
	}

	if err := d.codecContext.Open(d.codec, nil); err != nil {
		return nil, fmt.Errorf("unable to open codec context: %w", err)
	}

	d.frame = astiav.AllocFrame()
	d.Closer.Add(d.frame.Free)

	d.info = types.StreamInfo{
		Index:     streamIndex,
		MediaType: mediaTypeFromAstiav(cp.MediaType()),
		CodecID:   codecIDFromAstiav(cp.CodecID()),
		TimeBase:  rationalFromAstiav(stream.TimeBase()),
	}
	switch d.info.MediaType {
	case types.MediaTypeVideo:
		d.info.Video = types.VideoFormat{
			Width:       d.codecContext.Width(),
			Height:      d.codecContext.Height(),
			PixelFormat: pixelFormatFromAstiav(d.codecContext.PixelFormat()),
			TimeBase:    d.info.TimeBase,
		}
	case types.MediaTypeAudio:
		layout, channels := channelLayoutFromAstiav(d.codecContext.ChannelLayout())
		d.info.Audio = types.AudioFormat{
			SampleRate:    d.codecContext.SampleRate(),
			SampleFormat:  sampleFormatFromAstiav(d.codecContext.SampleFormat()),
			Channels:      channels,
			ChannelLayout: layout,
			TimeBase:      d.info.TimeBase,
		}
	}
	return d, nil
}

func (d *Decoder) StreamInfo() types.StreamInfo {
	return d.info
}

func (d *Decoder) SendPacket(ctx context.Context, pkt types.Packet) error {
	p, ok := packetFromTypes(pkt)
	if !ok {
		return fmt.Errorf("unexpected packet type %T", pkt)
	}
	return convertError(d.codecContext.SendPacket(p))
}

// ReceiveFrame reuses one frame, so the previous result becomes invalid.
func (d *Decoder) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	d.frame.Unref()
	if err := d.codecContext.ReceiveFrame(d.frame); err != nil {
		return nil, convertError(err)
	}
	return d.frame, nil
}

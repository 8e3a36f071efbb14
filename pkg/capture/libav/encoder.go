package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type Encoder struct {
	*astikit.Closer
	codec        *astiav.Codec
	codecContext *astiav.CodecContext
	params       types.EncoderParams
}

var _ types.Encoder = (*Encoder)(nil)

func newEncoder(
	ctx context.Context,
	params types.EncoderParams,
) (_ret *Encoder, _err error) {
	logger.Debugf(ctx, "newEncoder(%s, %s)", params.MediaType, params.CodecID)
	defer func() { logger.Debugf(ctx, "/newEncoder(%s, %s): %v", params.MediaType, params.CodecID, _err) }()

	codecID, err := codecIDToAstiav(params.CodecID)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		Closer: astikit.NewCloser(),
		params: params,
	}
	defer func() {
		if _err != nil {
			_ = e.Close()
		}
	}()

	e.codec = astiav.FindEncoder(codecID)
	if e.codec == nil {
		return nil, fmt.Errorf("unable to find an encoder for codec '%s'", params.CodecID)
	}

	e.codecContext = astiav.AllocCodecContext(e.codec)
	if e.codecContext == nil {
		return nil, fmt.Errorf("unable to allocate codec context")
	}
	e.Closer.Add(e.codecContext.Free)

	if params.BitRate > 0 {
		e.codecContext.SetBitRate(params.BitRate)
	}

	switch params.MediaType {
	case types.MediaTypeVideo:
		pixFmt, err := pixelFormatToAstiav(params.Video.PixelFormat)
		if err != nil {
			return nil, err
		}
		e.codecContext.SetWidth(params.Video.Width)
		e.codecContext.SetHeight(params.Video.Height)
		e.codecContext.SetPixelFormat(pixFmt)
		e.codecContext.SetTimeBase(rationalToAstiav(params.Video.TimeBase))
		e.codecContext.SetFramerate(astiav.NewRational(params.FrameRate, 1))
		if params.GOPSize > 0 {
			e.codecContext.SetGopSize(params.GOPSize)
		}
	case types.MediaTypeAudio:
		sampleFmt, err := sampleFormatToAstiav(params.Audio.SampleFormat)
		if err != nil {
			return nil, err
		}
		layout, err := channelLayoutToAstiav(params.Audio)
		if err != nil {
			return nil, err
		}
		e.codecContext.SetSampleFormat(sampleFmt)
		e.codecContext.SetSampleRate(params.Audio.SampleRate)
		e.codecContext.SetChannelLayout(layout)
		e.codecContext.SetTimeBase(rationalToAstiav(params.Audio.TimeBase))
		e.codecContext.SetStrictStdCompliance(astiav.StrictStdComplianceExperimental)
	default:
		return nil, fmt.Errorf("unexpected media type: %s", params.MediaType)
	}

	if params.GlobalHeader {
		e.codecContext.SetFlags(e.codecContext.Flags().Add(astiav.CodecContextFlagGlobalHeader))
	}

	var options *astiav.Dictionary
	if len(params.Options) > 0 {
		options = astiav.NewDictionary()
		e.Closer.Add(options.Free)
		for _, opt := range params.Options {
			logger.Debugf(ctx, "encoder.Dictionary['%s'] = '%s'", opt.Key, opt.Value)
			if err := options.Set(opt.Key, opt.Value, 0); err != nil {
				return nil, fmt.Errorf("unable to set option '%s': %w", opt.Key, err)
			}
		}
	}

	if err := e.codecContext.Open(e.codec, options); err != nil {
		return nil, fmt.Errorf("unable to open codec context: %w", err)
	}
	return e, nil
}

func (e *Encoder) CodecID() types.CodecID {
	return e.params.CodecID
}

func (e *Encoder) TimeBase() types.Rational {
	return rationalFromAstiav(e.codecContext.TimeBase())
}

func (e *Encoder) VideoFormat() types.VideoFormat {
	return types.VideoFormat{
		Width:       e.codecContext.Width(),
		Height:      e.codecContext.Height(),
		PixelFormat: pixelFormatFromAstiav(e.codecContext.PixelFormat()),
		TimeBase:    e.TimeBase(),
	}
}

func (e *Encoder) AudioFormat() types.AudioFormat {
	layout, channels := channelLayoutFromAstiav(e.codecContext.ChannelLayout())
	return types.AudioFormat{
		SampleRate:    e.codecContext.SampleRate(),
		SampleFormat:  sampleFormatFromAstiav(e.codecContext.SampleFormat()),
		Channels:      channels,
		ChannelLayout: layout,
		TimeBase:      e.TimeBase(),
	}
}

// FrameSize is zero for codecs accepting any amount of samples per frame.
func (e *Encoder) FrameSize() int {
	return e.codecContext.FrameSize()
}

func (e *Encoder) SendFrame(ctx context.Context, f types.Frame) error {
	frame, err := frameFromTypes(f)
	if err != nil {
		return err
	}
	return convertError(e.codecContext.SendFrame(frame))
}

// ReceivePacket takes the packet from a pool; the output returns it there
// once the packet is written.
func (e *Encoder) ReceivePacket(ctx context.Context) (types.Packet, error) {
	pkt := packetPool.Get()
	if err := e.codecContext.ReceivePacket(pkt); err != nil {
		packetPool.Put(pkt)
		return nil, convertError(err)
	}
	return &Packet{Packet: pkt}, nil
}

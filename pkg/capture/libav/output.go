package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Output is an output container file; its format is guessed from the
// extension of the URL.
type Output struct {
	*astikit.Closer
	*astiav.FormatContext
	url string
}

var _ types.Output = (*Output)(nil)

func newOutput(
	ctx context.Context,
	url string,
) (_ret *Output, _err error) {
	logger.Debugf(ctx, "newOutput(%s)", url)
	defer func() { logger.Debugf(ctx, "/newOutput(%s): %v", url, _err) }()

	if url == "" {
		return nil, fmt.Errorf("the provided URL is empty")
	}

	output := &Output{
		Closer: astikit.NewCloser(),
		url:    url,
	}
	defer func() {
		if _err != nil {
			_ = output.Close()
		}
	}()

	formatContext, err := astiav.AllocOutputFormatContext(nil, "", url)
	if err != nil {
		return nil, fmt.Errorf("unable to guess the output format of '%s': %w", url, err)
	}
	if formatContext == nil {
		return nil, fmt.Errorf("unable to allocate the output format context")
	}
	output.FormatContext = formatContext
	output.Closer.Add(output.FormatContext.Free)

	// if output is a file:
	if !output.OutputFormat().Flags().Has(astiav.IOFormatFlagNofile) {
		logger.Tracef(ctx, "destination '%s' is a file", url)
		ioContext, err := astiav.OpenIOContext(
			url,
			astiav.NewIOContextFlags(astiav.IOContextFlagWrite),
			nil,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to open '%s' for writing: %w", url, err)
		}
		output.Closer.Add(func() {
			err := ioContext.Close()
			if err != nil {
				logger.Errorf(ctx, "unable to close the IO context: %v", err)
			}
		})
		output.FormatContext.SetPb(ioContext)
	}

	return output, nil
}

func (o *Output) URL() string {
	return o.url
}

func (o *Output) FormatName() string {
	return o.OutputFormat().Name()
}

func (o *Output) NeedsGlobalHeader() bool {
	return o.OutputFormat().Flags().Has(astiav.IOFormatFlagGlobalheader)
}

type muxStream struct {
	*astiav.Stream
}

func (s muxStream) TimeBase() types.Rational {
	return rationalFromAstiav(s.Stream.TimeBase())
}

func (o *Output) NewStream(
	ctx context.Context,
	encoder types.Encoder,
) (types.MuxStream, error) {
	enc, ok := encoder.(*Encoder)
	if !ok {
		return nil, fmt.Errorf("unexpected encoder type %T", encoder)
	}

	stream := o.FormatContext.NewStream(nil)
	if stream == nil {
		return nil, fmt.Errorf("unable to allocate a new stream")
	}
	if err := stream.CodecParameters().FromCodecContext(enc.codecContext); err != nil {
		return nil, fmt.Errorf("unable to copy the codec parameters: %w", err)
	}
	stream.SetTimeBase(enc.codecContext.TimeBase())
	return muxStream{Stream: stream}, nil
}

func (o *Output) WriteHeader(
	ctx context.Context,
	opts types.Options,
) error {
	var dict *astiav.Dictionary
	if len(opts) > 0 {
		dict = astiav.NewDictionary()
		defer dict.Free()
		for _, opt := range opts {
			logger.Debugf(ctx, "output.Dictionary['%s'] = '%s'", opt.Key, opt.Value)
			if err := dict.Set(opt.Key, opt.Value, 0); err != nil {
				return fmt.Errorf("unable to set option '%s': %w", opt.Key, err)
			}
		}
	}
	if err := o.FormatContext.WriteHeader(dict); err != nil {
		return fmt.Errorf("unable to write the header of '%s': %w", o.url, err)
	}
	return nil
}

func (o *Output) WritePacket(
	ctx context.Context,
	pkt types.Packet,
) error {
	p, ok := pkt.(*Packet)
	if !ok {
		return fmt.Errorf("unexpected packet type %T", pkt)
	}
	defer packetPool.Put(p.Packet)
	if err := o.FormatContext.WriteInterleavedFrame(p.Packet); err != nil {
		return fmt.Errorf("unable to write the packet: %w", err)
	}
	return nil
}

func (o *Output) WriteTrailer(ctx context.Context) error {
	if err := o.FormatContext.WriteTrailer(); err != nil {
		return fmt.Errorf("unable to write the trailer of '%s': %w", o.url, err)
	}
	return nil
}

func (o *Output) DumpFormat(ctx context.Context) {
	logger.Infof(ctx, "output '%s', format '%s'", o.url, o.FormatName())
	for _, stream := range o.FormatContext.Streams() {
		cp := stream.CodecParameters()
		switch cp.MediaType() {
		case astiav.MediaTypeVideo:
			logger.Infof(ctx, "  stream #%d: video %s %dx%d %s, time base %s, %d bit/s",
				stream.Index(), cp.CodecID().Name(), cp.Width(), cp.Height(),
				cp.PixelFormat().Name(), stream.TimeBase(), cp.BitRate())
		case astiav.MediaTypeAudio:
			layout, _ := channelLayoutFromAstiav(cp.ChannelLayout())
			logger.Infof(ctx, "  stream #%d: audio %s %d Hz %s %s, time base %s, %d bit/s",
				stream.Index(), cp.CodecID().Name(), cp.SampleRate(), layout,
				cp.SampleFormat().Name(), stream.TimeBase(), cp.BitRate())
		}
	}
}

package capture

import (
	"context"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// OutputStream is the encoding side of one medium: the encoder, its muxer
// stream, the conversion context feeding the encoder, and the
// presentation-time counter (frames for video, samples for audio).
type OutputStream struct {
	MediaType types.MediaType
	Output    types.Output
	Encoder   types.Encoder
	Stream    types.MuxStream
	Rescaler  types.Rescaler
	Resampler types.Resampler
	Counter   int64
	Stats     Statistics
}

// NewEncodeSink picks and opens the encoder expected by the output container
// for the medium and adds a stream for it to the container.
func NewEncodeSink(
	ctx context.Context,
	backend types.Backend,
	output types.Output,
	mediaType types.MediaType,
	cfg Config,
) (_ret *OutputStream, _err error) {
	logger.Debugf(ctx, "NewEncodeSink(%s, %s)", output.URL(), mediaType)
	defer func() { logger.Debugf(ctx, "/NewEncodeSink(%s, %s): %v", output.URL(), mediaType, _err) }()

	videoCodec, audioCodec := ContainerCodecs(output.FormatName())

	params := types.EncoderParams{
		MediaType:    mediaType,
		GlobalHeader: output.NeedsGlobalHeader(),
	}
	var err error
	switch mediaType {
	case types.MediaTypeVideo:
		params.CodecID, err = chooseEncoder(backend, videoCodec)
		if err != nil {
			return nil, fmt.Errorf("unable to choose a video encoder for format '%s': %w", output.FormatName(), err)
		}
		params.FrameRate = cfg.FPS
		params.GOPSize = videoGOPSize
		params.Video = types.VideoFormat{
			Width:       cfg.Rect.Width,
			Height:      cfg.Rect.Height,
			PixelFormat: pixelFormatFor(params.CodecID),
			TimeBase:    types.NewRational(1, cfg.FPS),
		}
		params.BitRate = cfg.VideoBitRate
		if params.BitRate <= 0 {
			params.BitRate = AutoVideoBitRate(cfg.Rect.Width, cfg.Rect.Height, cfg.FPS)
		}
		params.Options = cfg.VideoEncoderOptions
	case types.MediaTypeAudio:
		params.CodecID, err = chooseEncoder(backend, audioCodec)
		if err != nil {
			return nil, fmt.Errorf("unable to choose an audio encoder for format '%s': %w", output.FormatName(), err)
		}
		sampleRate := NearestSampleRate(params.CodecID, cfg.SampleRate)
		params.Audio = types.AudioFormat{
			SampleRate:    sampleRate,
			SampleFormat:  sampleFormatFor(params.CodecID),
			Channels:      OutputChannels,
			ChannelLayout: types.DefaultChannelLayout(OutputChannels),
			TimeBase:      types.NewRational(1, sampleRate),
		}
		if params.CodecID != types.CodecIDMP2 {
			params.BitRate = cfg.AudioBitRate
			if params.BitRate <= 0 {
				params.BitRate = AutoAudioBitRate(sampleRate, OutputChannels)
			}
		}
		params.Options = cfg.AudioEncoderOptions
	default:
		return nil, fmt.Errorf("unexpected media type: %s", mediaType)
	}

	s := &OutputStream{
		MediaType: mediaType,
		Output:    output,
	}
	defer func() {
		if _err != nil {
			_ = s.Close()
		}
	}()

	s.Encoder, err = backend.NewEncoder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to open the %s encoder '%s': %w", mediaType, params.CodecID, err)
	}

	s.Stream, err = output.NewStream(ctx, s.Encoder)
	if err != nil {
		return nil, fmt.Errorf("unable to add a %s stream to '%s': %w", mediaType, output.URL(), err)
	}

	if logger.FromCtx(ctx).Level() >= logger.LevelTrace {
		logger.Tracef(ctx, "encoder params: %s", spew.Sdump(params))
	}
	logger.Debugf(ctx, "%s stream #%d: codec '%s', bit rate %d, time base %s",
		mediaType, s.Stream.Index(), params.CodecID, params.BitRate, s.Encoder.TimeBase())
	return s, nil
}

// EncodeAndWrite encodes the frame and writes every produced packet.
// Failures are logged and counted; they never stop the recording.
func (s *OutputStream) EncodeAndWrite(
	ctx context.Context,
	frame types.Frame,
) {
	logger.Tracef(ctx, "EncodeAndWrite(%s, pts:%d)", s.MediaType, frame.Pts())
	s.encodeAndWrite(ctx, frame)
}

// Flush drains the packets buffered by the encoder.
func (s *OutputStream) Flush(ctx context.Context) {
	logger.Debugf(ctx, "flushing the %s encoder", s.MediaType)
	s.encodeAndWrite(ctx, nil)
}

func (s *OutputStream) encodeAndWrite(
	ctx context.Context,
	frame types.Frame,
) {
	mediaType := s.MediaType.String()
	err := pump(ctx, frame, s.Encoder.SendFrame, s.Encoder.ReceivePacket, func(pkt types.Packet) {
		s.writePacket(ctx, pkt)
	})
	if err != nil {
		logger.Warnf(ctx, "unable to encode a %s frame: %v", mediaType, err)
		if frame != nil {
			s.Stats.FramesDropped.Add(1)
			metricFrames.WithLabelValues(mediaType, "dropped").Inc()
		}
		return
	}
	if frame != nil {
		s.Stats.FramesEncoded.Add(1)
		metricFrames.WithLabelValues(mediaType, "encoded").Inc()
	}
}

func (s *OutputStream) writePacket(
	ctx context.Context,
	pkt types.Packet,
) {
	mediaType := s.MediaType.String()
	pkt.RescaleTs(s.Encoder.TimeBase(), s.Stream.TimeBase())
	pkt.SetStreamIndex(s.Stream.Index())
	logger.Tracef(ctx, "writePacket (%s, pts:%d, dts:%d, size:%d)", mediaType, pkt.Pts(), pkt.Dts(), pkt.Size())

	size := pkt.Size()
	if err := s.Output.WritePacket(ctx, pkt); err != nil {
		logger.Warnf(ctx, "unable to write a %s packet (pts:%d): %v", mediaType, pkt.Pts(), err)
		s.Stats.PacketsDropped.Add(1)
		metricPackets.WithLabelValues(mediaType, "dropped").Inc()
		return
	}
	s.Stats.PacketsWritten.Add(1)
	s.Stats.BytesWritten.Add(uint64(size))
	metricPackets.WithLabelValues(mediaType, "written").Inc()
	metricBytesWritten.WithLabelValues(mediaType).Add(float64(size))
}

func (s *OutputStream) Close() error {
	if s == nil {
		return nil
	}
	var result *multierror.Error
	for _, closer := range []struct {
		name   string
		closer io.Closer
	}{
		{"rescaler", s.Rescaler},
		{"resampler", s.Resampler},
		{"encoder", s.Encoder},
	} {
		if closer.closer == nil {
			continue
		}
		if err := closer.closer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to close the %s: %w", closer.name, err))
		}
	}
	s.Rescaler, s.Resampler, s.Encoder, s.Stream = nil, nil, nil, nil
	return result.ErrorOrNil()
}

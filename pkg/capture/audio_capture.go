package capture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// AudioCapture records the desktop audio and/or the microphone into the
// audio stream of an output. With both sources enabled the decoded frames
// are mixed through a FilterGraph before resampling.
type AudioCapture struct {
	stateHolder
	Backend types.Backend
	Source  types.AudioSource
	Config  Config

	inputs []*InputStream
	graph  *FilterGraph
	output *OutputStream
}

func NewAudioCapture(
	backend types.Backend,
	source types.AudioSource,
	cfg Config,
) *AudioCapture {
	return &AudioCapture{
		Backend: backend,
		Source:  source,
		Config:  cfg,
	}
}

func (c *AudioCapture) deviceKinds() []types.AudioDeviceKind {
	var kinds []types.AudioDeviceKind
	if c.Config.CaptureDesktopAudio {
		kinds = append(kinds, types.AudioDeviceDesktop)
	}
	if c.Config.CaptureMic {
		kinds = append(kinds, types.AudioDeviceMic)
	}
	return kinds
}

// OpenCapture opens the enabled audio devices, the mixing graph (if both
// are enabled) and the audio encoder of the output. On failure the caller
// is expected to CloseCapture.
func (c *AudioCapture) OpenCapture(
	ctx context.Context,
	output types.Output,
) (_err error) {
	logger.Debugf(ctx, "OpenCapture(audio)")
	defer func() { logger.Debugf(ctx, "/OpenCapture(audio): %v", _err) }()

	if state := c.State(); state != StateIdle {
		return fmt.Errorf("the audio capture is not idle, but %s", state)
	}
	c.setState(StateOpening)

	cfg := c.Config.WithDefaults()
	c.Config = cfg

	kinds := c.deviceKinds()
	if len(kinds) == 0 {
		return fmt.Errorf("no audio source is enabled")
	}

	for _, kind := range kinds {
		selector, err := c.Source.AudioSelector(ctx, kind, cfg.SampleRate)
		if err != nil {
			return fmt.Errorf("unable to select the %s audio device: %w", kind, err)
		}
		input, err := OpenDeviceSource(ctx, c.Backend, selector, types.MediaTypeAudio)
		if err != nil {
			return fmt.Errorf("unable to open the %s audio source: %w", kind, err)
		}
		c.inputs = append(c.inputs, input)
	}

	var resampleSrc types.AudioFormat
	if len(c.inputs) > 1 {
		var err error
		c.graph, err = NewFilterGraph(
			ctx,
			c.Backend,
			c.inputs[mixInputPlayer].StreamInfo().Audio,
			c.inputs[mixInputMic].StreamInfo().Audio,
			cfg.SampleRate,
		)
		if err != nil {
			return err
		}
		resampleSrc = c.graph.OutputFormat()
	} else {
		resampleSrc = c.inputs[0].StreamInfo().Audio
	}

	var err error
	c.output, err = NewEncodeSink(ctx, c.Backend, output, types.MediaTypeAudio, cfg)
	if err != nil {
		return fmt.Errorf("unable to configure the audio output: %w", err)
	}

	frameSize := c.output.Encoder.FrameSize()
	if frameSize <= 0 {
		frameSize = variableFrameSize
	}
	c.output.Resampler, err = c.Backend.NewResampler(ctx, resampleSrc, c.output.Encoder.AudioFormat(), frameSize)
	if err != nil {
		return fmt.Errorf("unable to initialize the resampler: %w", err)
	}

	c.setState(StateCapturing)
	return nil
}

// WriteFrame reads one packet from every active audio source and processes
// them. It returns false when a source cannot provide packets anymore.
func (c *AudioCapture) WriteFrame(
	ctx context.Context,
	skip bool,
) bool {
	if c.State() != StateCapturing {
		return false
	}

	packets := make([]types.Packet, len(c.inputs))
	for idx, input := range c.inputs {
		pkt, err := input.Demuxer.ReadPacket(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debugf(ctx, "the audio source '%s' has ended", input.Selector)
			} else {
				logger.Warnf(ctx, "unable to read a packet from the audio source '%s': %v", input.Selector, err)
			}
			return false
		}
		packets[idx] = pkt
	}

	for idx, input := range c.inputs {
		pkt := packets[idx]
		if pkt.StreamIndex() != input.StreamIndex {
			continue
		}
		err := pump(ctx, pkt, input.Decoder.SendPacket, input.Decoder.ReceiveFrame, func(frame types.Frame) {
			c.route(ctx, idx, frame, skip)
		})
		if err != nil {
			logger.Warnf(ctx, "unable to decode an audio packet from '%s': %v", input.Selector, err)
		}
	}

	if c.graph != nil {
		c.pullMixed(ctx, skip)
	}
	return true
}

func (c *AudioCapture) route(
	ctx context.Context,
	inputIdx int,
	frame types.Frame,
	skip bool,
) {
	if c.graph == nil {
		c.resample(ctx, frame, skip)
		return
	}
	if err := c.graph.Push(ctx, inputIdx, frame); err != nil {
		logger.Warnf(ctx, "unable to push an audio frame into the mixer input #%d: %v", inputIdx, err)
		c.output.Stats.FramesDropped.Add(1)
	}
}

func (c *AudioCapture) pullMixed(
	ctx context.Context,
	skip bool,
) {
	for {
		frame, err := c.graph.Pull(ctx)
		switch {
		case err == nil:
			c.resample(ctx, frame, skip)
		case errors.Is(err, types.ErrAgain), errors.Is(err, io.EOF):
			return
		default:
			logger.Warnf(ctx, "unable to pull a mixed audio frame: %v", err)
			return
		}
	}
}

// resample pushes the frame (nil flushes) and drains the resampler.
func (c *AudioCapture) resample(
	ctx context.Context,
	frame types.Frame,
	skip bool,
) {
	err := pump(ctx, frame, c.output.Resampler.SendFrame, c.output.Resampler.ReceiveFrame, func(out types.Frame) {
		c.emit(ctx, out, skip)
	})
	if err != nil {
		logger.Warnf(ctx, "unable to resample an audio frame: %v", err)
		c.output.Stats.FramesDropped.Add(1)
	}
}

func (c *AudioCapture) emit(
	ctx context.Context,
	frame types.Frame,
	skip bool,
) {
	if skip {
		c.output.Stats.FramesSkipped.Add(1)
		return
	}
	encFmt := c.output.Encoder.AudioFormat()
	frame.SetPts(types.RescaleQ(
		c.output.Counter,
		types.NewRational(1, encFmt.SampleRate),
		c.output.Encoder.TimeBase(),
	))
	c.output.Counter += int64(frame.NbSamples())
	c.output.EncodeAndWrite(ctx, frame)
}

// Flush drains the decoders, the mixer, the resampler and the encoder;
// used when the recording ends.
func (c *AudioCapture) Flush(ctx context.Context) {
	if c.State() != StateCapturing {
		return
	}
	for idx, input := range c.inputs {
		err := pump(ctx, types.Packet(nil), input.Decoder.SendPacket, input.Decoder.ReceiveFrame, func(frame types.Frame) {
			c.route(ctx, idx, frame, false)
		})
		if err != nil {
			logger.Warnf(ctx, "unable to drain the audio decoder of '%s': %v", input.Selector, err)
		}
	}
	if c.graph != nil {
		for idx := range c.inputs {
			if err := c.graph.Push(ctx, idx, nil); err != nil {
				logger.Warnf(ctx, "unable to close the mixer input #%d: %v", idx, err)
			}
		}
		c.pullMixed(ctx, false)
	}
	c.resample(ctx, nil, false)
	c.output.Flush(ctx)
}

func (c *AudioCapture) Statistics() StatisticsSnapshot {
	if c.output == nil {
		return StatisticsSnapshot{}
	}
	return c.output.Stats.Snapshot()
}

// CloseCapture releases everything opened by OpenCapture; it is a no-op
// on an idle capture.
func (c *AudioCapture) CloseCapture(ctx context.Context) error {
	logger.Debugf(ctx, "CloseCapture(audio)")
	if c.State() == StateIdle && len(c.inputs) == 0 && c.graph == nil && c.output == nil {
		return nil
	}
	c.setState(StateClosing)
	defer c.setState(StateIdle)

	var result *multierror.Error
	for _, input := range c.inputs {
		if err := input.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to close the audio source '%s': %w", input.Selector, err))
		}
	}
	c.inputs = nil
	if err := c.output.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the audio output: %w", err))
	}
	c.output = nil
	if err := c.graph.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the audio mixer: %w", err))
	}
	c.graph = nil
	return result.ErrorOrNil()
}

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

// VideoCapture records a screen region into the video stream of an output.
type VideoCapture struct {
	stateHolder
	Backend types.Backend
	Screen  types.ScreenSource
	Config  Config

	input  *InputStream
	output *OutputStream
}

func NewVideoCapture(
	backend types.Backend,
	screen types.ScreenSource,
	cfg Config,
) *VideoCapture {
	return &VideoCapture{
		Backend: backend,
		Screen:  screen,
		Config:  cfg,
	}
}

// OpenCapture opens the screen grabber for the rectangle and the video
// encoder of the output. On failure the caller is expected to CloseCapture.
func (c *VideoCapture) OpenCapture(
	ctx context.Context,
	output types.Output,
	rect types.Rect,
) (_err error) {
	logger.Debugf(ctx, "OpenCapture(video, %s)", rect)
	defer func() { logger.Debugf(ctx, "/OpenCapture(video, %s): %v", rect, _err) }()

	if state := c.State(); state != StateIdle {
		return fmt.Errorf("the video capture is not idle, but %s", state)
	}
	c.setState(StateOpening)

	cfg := c.Config.WithDefaults()
	cfg.Rect = EvenRect(rect)
	if cfg.Rect.Width <= 0 || cfg.Rect.Height <= 0 {
		return fmt.Errorf("invalid capture area %s", cfg.Rect)
	}
	c.Config = cfg

	selector, err := c.Screen.ScreenSelector(ctx, cfg.Rect, cfg.FPS)
	if err != nil {
		return fmt.Errorf("unable to select the screen device: %w", err)
	}

	c.input, err = OpenDeviceSource(ctx, c.Backend, selector, types.MediaTypeVideo)
	if err != nil {
		return fmt.Errorf("unable to open the screen source: %w", err)
	}

	c.output, err = NewEncodeSink(ctx, c.Backend, output, types.MediaTypeVideo, cfg)
	if err != nil {
		return fmt.Errorf("unable to configure the video output: %w", err)
	}

	c.output.Rescaler, err = c.Backend.NewRescaler(
		ctx,
		c.input.StreamInfo().Video,
		c.output.Encoder.VideoFormat(),
	)
	if err != nil {
		return fmt.Errorf("unable to initialize the rescaler: %w", err)
	}

	c.setState(StateCapturing)
	return nil
}

// WriteFrame reads one packet from the screen source and processes it.
// It returns false when the source cannot provide packets anymore.
func (c *VideoCapture) WriteFrame(
	ctx context.Context,
	skip bool,
) bool {
	if c.State() != StateCapturing {
		return false
	}

	pkt, err := c.input.Demuxer.ReadPacket(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			logger.Debugf(ctx, "the screen source has ended")
		} else {
			logger.Warnf(ctx, "unable to read a packet from the screen source: %v", err)
		}
		return false
	}
	if pkt.StreamIndex() != c.input.StreamIndex {
		return true
	}

	err = pump(ctx, pkt, c.input.Decoder.SendPacket, c.input.Decoder.ReceiveFrame, func(frame types.Frame) {
		c.processFrame(ctx, frame, skip)
	})
	if err != nil {
		logger.Warnf(ctx, "unable to decode a video packet: %v", err)
	}
	return true
}

func (c *VideoCapture) processFrame(
	ctx context.Context,
	frame types.Frame,
	skip bool,
) {
	scaled, err := c.output.Rescaler.Rescale(ctx, frame)
	if err != nil {
		logger.Warnf(ctx, "unable to rescale a video frame: %v", err)
		c.output.Stats.FramesDropped.Add(1)
		return
	}
	if skip {
		c.output.Stats.FramesSkipped.Add(1)
		return
	}
	scaled.SetPts(c.output.Counter)
	c.output.Counter++
	c.output.EncodeAndWrite(ctx, scaled)
}

// Flush drains the decoder and the encoder; used when the recording ends.
func (c *VideoCapture) Flush(ctx context.Context) {
	if c.State() != StateCapturing {
		return
	}
	err := pump(ctx, types.Packet(nil), c.input.Decoder.SendPacket, c.input.Decoder.ReceiveFrame, func(frame types.Frame) {
		c.processFrame(ctx, frame, false)
	})
	if err != nil {
		logger.Warnf(ctx, "unable to drain the video decoder: %v", err)
	}
	c.output.Flush(ctx)
}

func (c *VideoCapture) Statistics() StatisticsSnapshot {
	if c.output == nil {
		return StatisticsSnapshot{}
	}
	return c.output.Stats.Snapshot()
}

// CloseCapture releases everything opened by OpenCapture; it is a no-op
// on an idle capture.
func (c *VideoCapture) CloseCapture(ctx context.Context) error {
	logger.Debugf(ctx, "CloseCapture(video)")
	if c.State() == StateIdle && c.input == nil && c.output == nil {
		return nil
	}
	c.setState(StateClosing)
	defer c.setState(StateIdle)

	var result *multierror.Error
	if err := c.input.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the screen source: %w", err))
	}
	c.input = nil
	if err := c.output.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the video output: %w", err))
	}
	c.output = nil
	return result.ErrorOrNil()
}

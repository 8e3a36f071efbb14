package libav

import (
	"context"
	"fmt"
	"io"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Resampler converts the audio into the encoder format and re-slices it
// into frames of exactly frameSize samples (the last flushed one may be
// shorter).
type Resampler struct {
	*astikit.Closer
	resampleContext *astiav.SoftwareResampleContext
	fifo            *astiav.AudioFifo
	converted       *astiav.Frame
	frame           *astiav.Frame

	dst          types.AudioFormat
	dstSampleFmt astiav.SampleFormat
	dstLayout    astiav.ChannelLayout
	frameSize    int
	flushing     bool
}

var _ types.Resampler = (*Resampler)(nil)

func newResampler(
	ctx context.Context,
	src, dst types.AudioFormat,
	frameSize int,
) (_ret *Resampler, _err error) {
	logger.Debugf(ctx, "newResampler(%#+v -> %#+v, %d)", src, dst, frameSize)
	defer func() { logger.Debugf(ctx, "/newResampler: %v", _err) }()

	if frameSize <= 0 {
		return nil, fmt.Errorf("invalid frame size %d", frameSize)
	}
	dstSampleFmt, err := sampleFormatToAstiav(dst.SampleFormat)
	if err != nil {
		return nil, err
	}
	dstLayout, err := channelLayoutToAstiav(dst)
	if err != nil {
		return nil, err
	}

	r := &Resampler{
		Closer:       astikit.NewCloser(),
		dst:          dst,
		dstSampleFmt: dstSampleFmt,
		dstLayout:    dstLayout,
		frameSize:    frameSize,
	}
	defer func() {
		if _err != nil {
			_ = r.Close()
		}
	}()

	r.resampleContext = astiav.AllocSoftwareResampleContext()
	if r.resampleContext == nil {
		return nil, fmt.Errorf("unable to allocate the resample context")
	}
	r.Closer.Add(r.resampleContext.Free)

	r.fifo = astiav.AllocAudioFifo(dstSampleFmt, dstLayout.Channels(), frameSize)
	if r.fifo == nil {
		return nil, fmt.Errorf("unable to allocate the audio FIFO")
	}
	r.Closer.Add(r.fifo.Free)

	r.converted = astiav.AllocFrame()
	r.Closer.Add(r.converted.Free)
	r.frame = astiav.AllocFrame()
	r.Closer.Add(r.frame.Free)
	return r, nil
}

func (r *Resampler) setDstParams(f *astiav.Frame) {
	f.SetSampleFormat(r.dstSampleFmt)
	f.SetChannelLayout(r.dstLayout)
	f.SetSampleRate(r.dst.SampleRate)
}

// SendFrame converts the frame and buffers the result; a nil frame
// flushes the samples delayed inside the resample context.
func (r *Resampler) SendFrame(ctx context.Context, src types.Frame) error {
	srcFrame, err := frameFromTypes(src)
	if err != nil {
		return err
	}
	if srcFrame == nil {
		if r.flushing {
			return nil
		}
		r.flushing = true
	}

	r.converted.Unref()
	r.setDstParams(r.converted)
	if err := r.resampleContext.ConvertFrame(srcFrame, r.converted); err != nil {
		return fmt.Errorf("unable to convert the audio frame: %w", err)
	}
	if r.converted.NbSamples() == 0 {
		return nil
	}
	if _, err := r.fifo.Write(r.converted); err != nil {
		return fmt.Errorf("unable to buffer the converted samples: %w", err)
	}
	return nil
}

// ReceiveFrame reuses one frame, so the previous result becomes invalid.
func (r *Resampler) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	nbSamples := r.frameSize
	available := r.fifo.Size()
	if available < nbSamples {
		switch {
		case r.flushing && available > 0:
			nbSamples = available
		case r.flushing:
			return nil, io.EOF
		default:
			return nil, types.ErrAgain
		}
	}

	r.frame.Unref()
	r.setDstParams(r.frame)
	r.frame.SetNbSamples(nbSamples)
	if err := r.frame.AllocBuffer(0); err != nil {
		return nil, fmt.Errorf("unable to allocate the frame buffer: %w", err)
	}
	if _, err := r.fifo.Read(r.frame); err != nil {
		return nil, fmt.Errorf("unable to read samples from the FIFO: %w", err)
	}
	return r.frame, nil
}

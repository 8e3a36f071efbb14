package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Rescaler converts the pixel dimensions and format with the bicubic filter.
type Rescaler struct {
	*astikit.Closer
	scaleContext *astiav.SoftwareScaleContext
	dst          types.VideoFormat
	dstPixFmt    astiav.PixelFormat
	frame        *astiav.Frame
}

var _ types.Rescaler = (*Rescaler)(nil)

func newRescaler(
	ctx context.Context,
	src, dst types.VideoFormat,
) (_ret *Rescaler, _err error) {
	logger.Debugf(ctx, "newRescaler(%#+v -> %#+v)", src, dst)
	defer func() { logger.Debugf(ctx, "/newRescaler: %v", _err) }()

	srcPixFmt, err := pixelFormatToAstiav(src.PixelFormat)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	dstPixFmt, err := pixelFormatToAstiav(dst.PixelFormat)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	r := &Rescaler{
		Closer:    astikit.NewCloser(),
		dst:       dst,
		dstPixFmt: dstPixFmt,
	}
	defer func() {
		if _err != nil {
			_ = r.Close()
		}
	}()

	r.scaleContext, err = astiav.CreateSoftwareScaleContext(
		src.Width, src.Height, srcPixFmt,
		dst.Width, dst.Height, dstPixFmt,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBicubic),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create the scale context (%dx%d %s -> %dx%d %s): %w",
			src.Width, src.Height, src.PixelFormat, dst.Width, dst.Height, dst.PixelFormat, err)
	}
	r.Closer.Add(r.scaleContext.Free)

	r.frame = astiav.AllocFrame()
	r.Closer.Add(r.frame.Free)
	return r, nil
}

// Rescale reuses one destination frame, so the previous result becomes invalid.
func (r *Rescaler) Rescale(ctx context.Context, src types.Frame) (types.Frame, error) {
	srcFrame, err := frameFromTypes(src)
	if err != nil {
		return nil, err
	}
	if srcFrame == nil {
		return nil, fmt.Errorf("nil frame")
	}

	r.frame.Unref()
	r.frame.SetWidth(r.dst.Width)
	r.frame.SetHeight(r.dst.Height)
	r.frame.SetPixelFormat(r.dstPixFmt)
	if err := r.frame.AllocBuffer(1); err != nil {
		return nil, fmt.Errorf("unable to allocate the frame buffer: %w", err)
	}
	if err := r.scaleContext.ScaleFrame(srcFrame, r.frame); err != nil {
		return nil, fmt.Errorf("unable to scale the frame: %w", err)
	}
	r.frame.SetPts(srcFrame.Pts())
	return r.frame, nil
}

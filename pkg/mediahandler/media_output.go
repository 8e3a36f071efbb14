package mediahandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/screenrecorder/pkg/capture"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

var ErrNoVideoCodec = errors.New("the output format does not support video")

// MediaOutput is the output container of a single recording.
type MediaOutput struct {
	types.Output
	Path          string
	Rect          types.Rect
	VideoCodec    types.CodecID
	AudioCodec    types.CodecID
	SupportsAudio bool

	headerWritten  bool
	trailerWritten bool
}

func newMediaOutput(
	ctx context.Context,
	backend types.Backend,
	path string,
	rect types.Rect,
) (_ret *MediaOutput, _err error) {
	logger.Debugf(ctx, "newMediaOutput(%s)", path)
	defer func() { logger.Debugf(ctx, "/newMediaOutput(%s): %v", path, _err) }()

	output, err := backend.NewOutput(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("unable to open the output '%s': %w", path, err)
	}

	videoCodec, audioCodec := capture.ContainerCodecs(output.FormatName())
	if videoCodec == types.CodecIDNone {
		_ = output.Close()
		return nil, fmt.Errorf("format '%s': %w", output.FormatName(), ErrNoVideoCodec)
	}

	return &MediaOutput{
		Output:        output,
		Path:          path,
		Rect:          rect,
		VideoCodec:    videoCodec,
		AudioCodec:    audioCodec,
		SupportsAudio: audioCodec != types.CodecIDNone,
	}, nil
}

// headerOptions are the muxer options of the container.
func (o *MediaOutput) headerOptions() types.Options {
	switch o.FormatName() {
	case "apng":
		return types.Options{{Key: "plays", Value: "0"}}
	}
	return nil
}

func (o *MediaOutput) WriteHeader(ctx context.Context) error {
	if err := o.Output.WriteHeader(ctx, o.headerOptions()); err != nil {
		return fmt.Errorf("unable to write the header of '%s': %w", o.Path, err)
	}
	o.headerWritten = true
	return nil
}

// WriteTrailer writes the trailer once and only after the header.
func (o *MediaOutput) WriteTrailer(ctx context.Context) error {
	if !o.headerWritten || o.trailerWritten {
		return nil
	}
	o.trailerWritten = true
	if err := o.Output.WriteTrailer(ctx); err != nil {
		return fmt.Errorf("unable to write the trailer of '%s': %w", o.Path, err)
	}
	return nil
}

func (o *MediaOutput) Close() error {
	if o == nil || o.Output == nil {
		return nil
	}
	var mErr *multierror.Error
	if err := o.Output.Close(); err != nil {
		mErr = multierror.Append(mErr, fmt.Errorf("unable to close the output '%s': %w", o.Path, err))
	}
	o.Output = nil
	return mErr.ErrorOrNil()
}

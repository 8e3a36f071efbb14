// Package libav implements the capture backend on top of FFmpeg's libav*
// libraries (through github.com/asticode/go-astiav).
package libav

import (
	"context"
	"sync"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

var registerDevicesOnce sync.Once

type Backend struct{}

var _ types.Backend = (*Backend)(nil)

func NewBackend() *Backend {
	registerDevicesOnce.Do(astiav.RegisterAllDevices)
	return &Backend{}
}

func (*Backend) OpenInput(
	ctx context.Context,
	selector types.DeviceSelector,
) (types.Demuxer, error) {
	d, err := openDemuxer(ctx, selector)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (*Backend) NewDecoder(
	ctx context.Context,
	input types.Demuxer,
	streamIndex int,
) (types.Decoder, error) {
	d, err := newDecoder(ctx, input, streamIndex)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (*Backend) NewRescaler(
	ctx context.Context,
	src, dst types.VideoFormat,
) (types.Rescaler, error) {
	r, err := newRescaler(ctx, src, dst)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (*Backend) NewResampler(
	ctx context.Context,
	src, dst types.AudioFormat,
	frameSize int,
) (types.Resampler, error) {
	r, err := newResampler(ctx, src, dst, frameSize)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (*Backend) NewMixGraph(
	ctx context.Context,
	inputs []types.MixInput,
	output types.AudioFormat,
) (types.MixGraph, error) {
	g, err := newMixGraph(ctx, inputs, output)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (*Backend) HasEncoder(codecID types.CodecID) bool {
	id, err := codecIDToAstiav(codecID)
	if err != nil {
		return false
	}
	return astiav.FindEncoder(id) != nil
}

func (*Backend) NewEncoder(
	ctx context.Context,
	params types.EncoderParams,
) (types.Encoder, error) {
	e, err := newEncoder(ctx, params)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (*Backend) NewOutput(
	ctx context.Context,
	url string,
) (types.Output, error) {
	o, err := newOutput(ctx, url)
	if err != nil {
		return nil, err
	}
	return o, nil
}

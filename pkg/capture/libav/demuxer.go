package libav

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Demuxer is an opened capture device.
type Demuxer struct {
	*astikit.Closer
	FormatContext *astiav.FormatContext
	Dictionary    *astiav.Dictionary

	selector types.DeviceSelector
	streams  []types.StreamInfo
	packet   *Packet
}

var _ types.Demuxer = (*Demuxer)(nil)

func openDemuxer(
	ctx context.Context,
	selector types.DeviceSelector,
) (_ret *Demuxer, _err error) {
	logger.Debugf(ctx, "openDemuxer(%s)", selector)
	defer func() { logger.Debugf(ctx, "/openDemuxer(%s): %v", selector, _err) }()

	if selector.URL == "" {
		return nil, fmt.Errorf("the device URL is empty")
	}

	d := &Demuxer{
		Closer:   astikit.NewCloser(),
		selector: selector,
	}
	defer func() {
		if _err != nil {
			_ = d.Close()
		}
	}()

	var inputFormat *astiav.InputFormat
	if selector.Format != "" {
		inputFormat = astiav.FindInputFormat(selector.Format)
		if inputFormat == nil {
			return nil, fmt.Errorf("input format '%s' is not available in this build of libavdevice", selector.Format)
		}
	}

	d.FormatContext = astiav.AllocFormatContext()
	if d.FormatContext == nil {
		return nil, fmt.Errorf("unable to allocate a format context")
	}
	d.Closer.Add(d.FormatContext.Free)

	if len(selector.Options) > 0 {
		d.Dictionary = astiav.NewDictionary()
		d.Closer.Add(d.Dictionary.Free)
		for _, opt := range selector.Options {
			logger.Debugf(ctx, "input.Dictionary['%s'] = '%s'", opt.Key, opt.Value)
			if err := d.Dictionary.Set(opt.Key, opt.Value, 0); err != nil {
				return nil, fmt.Errorf("unable to set option '%s': %w", opt.Key, err)
			}
		}
	}

	if err := d.FormatContext.OpenInput(selector.URL, inputFormat, d.Dictionary); err != nil {
		return nil, fmt.Errorf("unable to open input '%s': %w", selector, err)
	}
	d.Closer.Add(d.FormatContext.CloseInput)

	if err := d.FormatContext.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("unable to get stream info: %w", err)
	}

	for _, stream := range d.FormatContext.Streams() {
		cp := stream.CodecParameters()
		info := types.StreamInfo{
			Index:     stream.Index(),
			MediaType: mediaTypeFromAstiav(cp.MediaType()),
			CodecID:   codecIDFromAstiav(cp.CodecID()),
			TimeBase:  rationalFromAstiav(stream.TimeBase()),
		}
		switch info.MediaType {
		case types.MediaTypeVideo:
			info.Video = videoFormatFromCodecParameters(cp, stream.TimeBase())
		case types.MediaTypeAudio:
			info.Audio = audioFormatFromCodecParameters(cp, stream.TimeBase())
		}
		logger.Debugf(ctx, "device '%s' stream #%d: %s %s", selector.URL, info.Index, info.MediaType, info.CodecID)
		d.streams = append(d.streams, info)
	}

	d.packet = &Packet{Packet: astiav.AllocPacket()}
	d.Closer.Add(d.packet.Free)
	return d, nil
}

func (d *Demuxer) Streams() []types.StreamInfo {
	return d.streams
}

func (d *Demuxer) stream(idx int) *astiav.Stream {
	for _, stream := range d.FormatContext.Streams() {
		if stream.Index() == idx {
			return stream
		}
	}
	return nil
}

// ReadPacket blocks until the device yields a packet.
func (d *Demuxer) ReadPacket(ctx context.Context) (types.Packet, error) {
	d.packet.Unref()
	if err := d.FormatContext.ReadFrame(d.packet.Packet); err != nil {
		return nil, convertError(err)
	}
	return d.packet, nil
}

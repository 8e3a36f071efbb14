package capture

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// InputStream is an opened capture device together with the decoder of its
// elementary stream.
type InputStream struct {
	Selector    types.DeviceSelector
	Demuxer     types.Demuxer
	Decoder     types.Decoder
	StreamIndex int
}

// OpenDeviceSource opens the device and a decoder for its first stream of
// the given media type.
func OpenDeviceSource(
	ctx context.Context,
	backend types.Backend,
	selector types.DeviceSelector,
	mediaType types.MediaType,
) (_ret *InputStream, _err error) {
	logger.Debugf(ctx, "OpenDeviceSource(%s, %s)", selector, mediaType)
	defer func() { logger.Debugf(ctx, "/OpenDeviceSource(%s, %s): %v", selector, mediaType, _err) }()

	s := &InputStream{
		Selector:    selector,
		StreamIndex: -1,
	}
	defer func() {
		if _err != nil {
			_ = s.Close()
		}
	}()

	var err error
	s.Demuxer, err = backend.OpenInput(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("unable to open the device '%s': %w", selector, err)
	}

	for _, stream := range s.Demuxer.Streams() {
		if stream.MediaType == mediaType {
			s.StreamIndex = stream.Index
			break
		}
	}
	if s.StreamIndex < 0 {
		return nil, fmt.Errorf("device '%s': %w", selector, types.ErrNoStream{MediaType: mediaType})
	}

	s.Decoder, err = backend.NewDecoder(ctx, s.Demuxer, s.StreamIndex)
	if err != nil {
		return nil, fmt.Errorf("unable to open a decoder for stream #%d of device '%s': %w", s.StreamIndex, selector, err)
	}

	return s, nil
}

func (s *InputStream) StreamInfo() types.StreamInfo {
	return s.Decoder.StreamInfo()
}

func (s *InputStream) Close() error {
	if s == nil {
		return nil
	}
	var result *multierror.Error
	if s.Decoder != nil {
		if err := s.Decoder.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to close the decoder: %w", err))
		}
		s.Decoder = nil
	}
	if s.Demuxer != nil {
		if err := s.Demuxer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to close the demuxer: %w", err))
		}
		s.Demuxer = nil
	}
	return result.ErrorOrNil()
}

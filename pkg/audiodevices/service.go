package audiodevices

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/xsync"
)

// Service keeps the classified devices of the last successful Refresh.
type Service struct {
	Lister Lister

	locker  xsync.Mutex
	devices Devices
}

func NewService(lister Lister) *Service {
	return &Service{
		Lister: lister,
	}
}

// Refresh blocks until the lister answers or gives up.
func (s *Service) Refresh(ctx context.Context) error {
	sources, err := s.Lister.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("unable to list the audio devices: %w", err)
	}
	devices := Classify(sources)
	logger.Debugf(ctx, "audio devices: desktop:%v mic:%v", devices.Desktop, devices.Mic)
	s.locker.Do(ctx, func() {
		s.devices = devices
	})
	return nil
}

func (s *Service) Devices(ctx context.Context) Devices {
	return xsync.DoR1(ctx, &s.locker, func() Devices {
		return s.devices
	})
}

// Package pulseaudio lists the PulseAudio sources.
package pulseaudio

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/jfreymuth/pulse"
	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices"
	"github.com/xaionaro-go/screenrecorder/pkg/observability"
)

const DefaultTimeout = time.Second

type Lister struct {
	Timeout time.Duration
}

var _ audiodevices.Lister = (*Lister)(nil)

func NewLister() *Lister {
	return &Lister{
		Timeout: DefaultTimeout,
	}
}

type listResult struct {
	Devices []audiodevices.Device
	Err     error
}

// ListSources gives up after Timeout: the server may hang instead of
// refusing the connection.
func (l *Lister) ListSources(ctx context.Context) (_ret []audiodevices.Device, _err error) {
	logger.Debugf(ctx, "ListSources")
	defer func() { logger.Debugf(ctx, "/ListSources: %d %v", len(_ret), _err) }()

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancelFn := context.WithTimeout(ctx, timeout)
	defer cancelFn()

	resultCh := make(chan listResult, 1)
	observability.Go(ctx, func() {
		devices, err := listSources()
		resultCh <- listResult{Devices: devices, Err: err}
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("unable to query the PulseAudio sources: %w", ctx.Err())
	case result := <-resultCh:
		return result.Devices, result.Err
	}
}

func listSources() ([]audiodevices.Device, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("screenrecorder"))
	if err != nil {
		return nil, fmt.Errorf("unable to open a client to Pulse: %w", err)
	}
	defer c.Close()

	sources, err := c.ListSources()
	if err != nil {
		return nil, fmt.Errorf("unable to list the sources: %w", err)
	}
	result := make([]audiodevices.Device, 0, len(sources))
	for _, source := range sources {
		result = append(result, audiodevices.Device{
			ID:          source.ID(),
			Description: source.Name(),
		})
	}
	return result, nil
}

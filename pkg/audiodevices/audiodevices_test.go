package audiodevices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	devices := Classify([]Device{
		{ID: "alsa_output.pci-0000_00_1f.3.analog-stereo.monitor"},
		{ID: "alsa_input.pci-0000_00_1f.3.analog-stereo"},
		{ID: "bluez_output.00_11_22_33_44_55.1.monitor"},
		{ID: "alsa_input.usb-mic"},
		{ID: "virtual_sink"},
	})
	require.Len(t, devices.Desktop, 2)
	require.Len(t, devices.Mic, 2)

	desktop, ok := devices.DesktopDevice()
	require.True(t, ok)
	require.Equal(t, "bluez_output.00_11_22_33_44_55.1.monitor", desktop.ID)

	mic, ok := devices.MicDevice()
	require.True(t, ok)
	require.Equal(t, "alsa_input.pci-0000_00_1f.3.analog-stereo", mic.ID)
}

func TestClassifyNothing(t *testing.T) {
	devices := Classify(nil)
	_, ok := devices.DesktopDevice()
	require.False(t, ok)
	_, ok = devices.MicDevice()
	require.False(t, ok)
}

type staticLister []Device

func (l staticLister) ListSources(ctx context.Context) ([]Device, error) {
	return l, nil
}

func TestServiceRefresh(t *testing.T) {
	ctx := context.Background()
	svc := NewService(staticLister{{ID: "alsa_input.mic"}})
	require.Empty(t, svc.Devices(ctx).Mic)
	require.NoError(t, svc.Refresh(ctx))
	mic, ok := svc.Devices(ctx).MicDevice()
	require.True(t, ok)
	require.Equal(t, "alsa_input.mic", mic.ID)
}

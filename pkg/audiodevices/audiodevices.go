// Package audiodevices classifies the audio capture devices of the system
// into desktop audio (monitors of the outputs) and microphones.
package audiodevices

import (
	"context"
	"strings"
)

type Device struct {
	// ID is what the capture backend accepts as the device URL.
	ID          string
	Description string
}

type Lister interface {
	ListSources(ctx context.Context) ([]Device, error)
}

type Devices struct {
	Desktop []Device
	Mic     []Device
}

// Classify sorts the devices by their IDs: the ones containing "output"
// capture what is played, the ones containing "input" are microphones.
// Other devices are ignored.
func Classify(sources []Device) Devices {
	var result Devices
	for _, dev := range sources {
		switch {
		case strings.Contains(dev.ID, "output"):
			result.Desktop = append(result.Desktop, dev)
		case strings.Contains(dev.ID, "input"):
			result.Mic = append(result.Mic, dev)
		}
	}
	return result
}

// DesktopDevice returns the most recently registered output monitor.
func (d Devices) DesktopDevice() (Device, bool) {
	if len(d.Desktop) == 0 {
		return Device{}, false
	}
	return d.Desktop[len(d.Desktop)-1], true
}

// MicDevice returns the first microphone.
func (d Devices) MicDevice() (Device, bool) {
	if len(d.Mic) == 0 {
		return Device{}, false
	}
	return d.Mic[0], true
}

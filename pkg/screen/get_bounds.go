package screen

import (
	"fmt"

	"github.com/kbinani/screenshot"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Monitor is a display in the virtual screen coordinates.
type Monitor struct {
	ID     int
	Bounds types.Rect
}

func NumMonitors() int {
	return screenshot.NumActiveDisplays()
}

func GetBounds(monitorID int) (types.Rect, error) {
	if n := NumMonitors(); monitorID < 0 || monitorID >= n {
		return types.Rect{}, fmt.Errorf("monitor #%d does not exist, there are %d monitors", monitorID, n)
	}
	b := screenshot.GetDisplayBounds(monitorID)
	return types.Rect{
		X:      b.Min.X,
		Y:      b.Min.Y,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func Monitors() []Monitor {
	n := NumMonitors()
	result := make([]Monitor, 0, n)
	for i := 0; i < n; i++ {
		bounds, err := GetBounds(i)
		if err != nil {
			continue
		}
		result = append(result, Monitor{ID: i, Bounds: bounds})
	}
	return result
}

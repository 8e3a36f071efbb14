// Package astiavlogger routes the log of libav into a go-belt logger.
package astiavlogger

import (
	"strings"
	"sync"

	"github.com/asticode/go-astiav"
	logger "github.com/facebookincubator/go-belt/tool/logger/types"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/libav"
)

// Callback is to be passed to astiav.SetLogCallback.
func Callback(l logger.Logger) astiav.LogCallback {
	wrapped, setClass, showsClass := WrapLogger(l)
	var locker sync.Mutex
	return func(c astiav.Classer, level astiav.LogLevel, format, msg string) {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			return
		}
		locker.Lock()
		defer locker.Unlock()

		target := wrapped
		if showsClass {
			setClass(c)
			defer setClass(nil)
		} else if c != nil {
			target = target.WithField("av_class", ClassChain(c))
		}
		target.Logf(libav.LogLevelFromAstiav(level), "%s", msg)
	}
}

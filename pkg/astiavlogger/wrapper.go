package astiavlogger

import (
	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt/tool/logger/adapter"
	beltlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	logger "github.com/facebookincubator/go-belt/tool/logger/types"
)

// WrapLogger returns the logger to use for libav messages and the setter
// of the current libav object. The last value is false if the logger
// cannot show the object by itself.
func WrapLogger(l logger.Logger) (logger.Logger, func(astiav.Classer), bool) {
	if _, ok := l.Emitter().(*beltlogrus.Emitter); ok {
		if sugar, ok := l.(adapter.GenericSugar); ok && isLogrusCompact(sugar) {
			wrapped, setClass := wrapLogrusLogger(l)
			return wrapped, setClass, true
		}
	}
	return l, func(astiav.Classer) {}, false
}

func isLogrusCompact(sugar adapter.GenericSugar) bool {
	_, ok := sugar.CompactLogger.(*beltlogrus.CompactLogger)
	return ok
}

package astiavlogger

import (
	"runtime"

	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt/tool/logger/adapter"
	beltlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	logger "github.com/facebookincubator/go-belt/tool/logger/types"
	"github.com/sirupsen/logrus"
	"github.com/xaionaro-go/unsafetools"
)

func ptr[T any](v T) *T {
	return &v
}

// wrapLogrusLogger clones the logrus logger and makes its formatter print
// the class chain of the libav object instead of the Go caller.
func wrapLogrusLogger(l logger.Logger) (logger.Logger, func(astiav.Classer)) {
	emitter := ptr(*l.Emitter().(*beltlogrus.Emitter))
	entry := ptr(*emitter.LogrusEntry)
	emitter.LogrusEntry = entry
	entry.Logger = ptr(*entry.Logger)

	var class astiav.Classer
	prettifier := func(*runtime.Frame) (function string, file string) {
		return ClassChain(class), "av"
	}
	switch formatter := entry.Logger.Formatter.(type) {
	case *logrus.TextFormatter:
		formatter = ptr(*formatter)
		formatter.CallerPrettyfier = prettifier
		entry.Logger.Formatter = formatter
	case *logrus.JSONFormatter:
		formatter = ptr(*formatter)
		formatter.CallerPrettyfier = prettifier
		entry.Logger.Formatter = formatter
	}

	compactLogger := ptr(*l.(adapter.GenericSugar).CompactLogger.(*beltlogrus.CompactLogger))
	*unsafetools.FieldByName(compactLogger, "emitter").(**beltlogrus.Emitter) = emitter
	return adapter.GenericSugar{CompactLogger: compactLogger}, func(newClass astiav.Classer) {
		class = newClass
	}
}

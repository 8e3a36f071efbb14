package observability

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	"github.com/DataDog/gostackparse"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/pkg/field"
	xruntime "github.com/facebookincubator/go-belt/pkg/runtime"
	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	errmontypes "github.com/facebookincubator/go-belt/tool/experimental/errmon/types"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/adapter"
	loggertypes "github.com/facebookincubator/go-belt/tool/logger/types"
)

const maxStackBufferSize = 10 << 20

func parseGoroutines(all bool) []*gostackparse.Goroutine {
	size := 65536
	if all {
		size *= runtime.NumGoroutine()
	}
	size = min(size, maxStackBufferSize)
	buf := make([]byte, size)
	n := runtime.Stack(buf, all)
	goroutines, _ := gostackparse.Parse(bytes.NewReader(buf[:n]))
	return goroutines
}

// getGoroutines returns the stacks of every goroutine and the ID of the
// current one.
func getGoroutines() ([]errmontypes.Goroutine, int) {
	goroutines := parseGoroutines(true)
	result := make([]errmontypes.Goroutine, 0, len(goroutines))
	for _, g := range goroutines {
		result = append(result, *g)
	}

	var currentID int
	if current := parseGoroutines(false); len(current) == 1 {
		currentID = current[0].ID
	}
	return result, currentID
}

// ErrorMonitorLoggerHook sends every log entry of level warning or above
// to the error monitor (Sentry).
type ErrorMonitorLoggerHook struct {
	ErrorMonitor errmontypes.ErrorMonitor
	SendChan     chan ErrorMonitorMessage
}

type ErrorMonitorMessage struct {
	Entry              *loggertypes.Entry
	Goroutines         []errmontypes.Goroutine
	CurrentGoroutineID int
	StackTrace         xruntime.PCs
}

var _ loggertypes.PreHook = (*ErrorMonitorLoggerHook)(nil)

func NewErrorMonitorLoggerHook(
	ctx context.Context,
	errorMonitor errmon.ErrorMonitor,
) *ErrorMonitorLoggerHook {
	h := &ErrorMonitorLoggerHook{
		ErrorMonitor: errorMonitor,
		SendChan:     make(chan ErrorMonitorMessage, 10),
	}
	GoSafe(ctx, func() {
		h.senderLoop(ctx)
	})
	return h
}

func (h *ErrorMonitorLoggerHook) capture(level loggertypes.Level, log func(loggertypes.Logger)) loggertypes.PreHookResult {
	if level <= loggertypes.LevelWarning {
		emitter := &mockEmitter{}
		log(adapter.LoggerFromEmitter(emitter).WithLevel(logger.LevelWarning))
		h.sendReport(emitter.LastEntry)
	}
	return loggertypes.PreHookResult{}
}

func (h *ErrorMonitorLoggerHook) ProcessInput(
	_ belt.TraceIDs,
	level loggertypes.Level,
	args ...any,
) loggertypes.PreHookResult {
	return h.capture(level, func(l loggertypes.Logger) { l.Log(level, args...) })
}

func (h *ErrorMonitorLoggerHook) ProcessInputf(
	_ belt.TraceIDs,
	level loggertypes.Level,
	format string,
	args ...any,
) loggertypes.PreHookResult {
	return h.capture(level, func(l loggertypes.Logger) { l.Logf(level, format, args...) })
}

func (h *ErrorMonitorLoggerHook) ProcessInputFields(
	_ belt.TraceIDs,
	level loggertypes.Level,
	message string,
	fields field.AbstractFields,
) loggertypes.PreHookResult {
	return h.capture(level, func(l loggertypes.Logger) { l.LogFields(level, message, fields) })
}

func copyEntry(entry *loggertypes.Entry) *loggertypes.Entry {
	dup := *entry
	if entry.Fields != nil {
		fields := make(field.Fields, 0, entry.Fields.Len())
		entry.Fields.ForEachField(func(f *field.Field) bool {
			fields = append(fields, *f)
			return true
		})
		dup.Fields = fields
	}
	return &dup
}

func (h *ErrorMonitorLoggerHook) sendReport(entry *loggertypes.Entry) {
	if entry == nil {
		return
	}
	goroutines, currentID := getGoroutines()
	select {
	case h.SendChan <- ErrorMonitorMessage{
		Entry:              copyEntry(entry),
		Goroutines:         goroutines,
		CurrentGoroutineID: currentID,
		StackTrace:         xruntime.CallerStackTrace(nil),
	}:
	default:
		logger.Default().Errorf("unable to report an error, the queue is full")
	}
}

func (h *ErrorMonitorLoggerHook) senderLoop(ctx context.Context) {
	for {
		var message ErrorMonitorMessage
		select {
		case <-ctx.Done():
			return
		case message = <-h.SendChan:
		}
		h.ErrorMonitor.Emitter().Emit(&errmontypes.Event{
			Entry:       *message.Entry,
			ExternalIDs: []any{},
			Exception: errmontypes.Exception{
				IsPanic:    message.Entry.Level <= loggertypes.LevelPanic,
				Error:      fmt.Errorf("[%s] %s", message.Entry.Level, message.Entry.Message),
				StackTrace: message.StackTrace,
			},
			CurrentGoroutineID: message.CurrentGoroutineID,
			Goroutines:         message.Goroutines,
		})
	}
}

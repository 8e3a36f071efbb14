package observability

import (
	"runtime"
	"strings"
)

// CallerPCFilter skips the frames of the logging and locking helpers, so
// that log entries point to the code that actually logged.
func CallerPCFilter(
	originalPCFilter func(uintptr) bool,
) func(uintptr) bool {
	return func(pc uintptr) bool {
		if !originalPCFilter(pc) {
			return false
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			return true
		}
		if strings.Contains(fn.Name(), "pkg/xsync") {
			return false
		}
		file, _ := fn.FileLine(pc)
		for _, suffix := range []string{"/context.go", "/observability/go.go", "/astiavlogger/callback.go"} {
			if strings.HasSuffix(file, suffix) {
				return false
			}
		}
		return true
	}
}

// Package logwriter turns the output of external tools into log entries.
package logwriter

import (
	"bytes"
	"context"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/xsync"
)

// Writer logs every complete line written into it.
type Writer struct {
	Logger logger.Logger
	Level  logger.Level
	Prefix string

	locker xsync.Mutex
	buffer bytes.Buffer
}

var _ io.Writer = (*Writer)(nil)

func New(
	ctx context.Context,
	level logger.Level,
	prefix string,
) *Writer {
	return &Writer{
		Logger: logger.FromCtx(ctx),
		Level:  level,
		Prefix: prefix,
	}
}

func (w *Writer) Write(b []byte) (int, error) {
	ctx := xsync.WithNoLogging(context.Background(), true)
	w.locker.Do(ctx, func() {
		w.buffer.Write(b)
		for {
			idx := bytes.IndexByte(w.buffer.Bytes(), '\n')
			if idx < 0 {
				return
			}
			line := w.buffer.Next(idx + 1)
			w.log(line)
		}
	})
	return len(b), nil
}

// Flush logs the incomplete last line, if any.
func (w *Writer) Flush() {
	ctx := xsync.WithNoLogging(context.Background(), true)
	w.locker.Do(ctx, func() {
		w.log(w.buffer.Bytes())
		w.buffer.Reset()
	})
}

func (w *Writer) log(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	w.Logger.Logf(w.Level, "%s%s", w.Prefix, line)
}

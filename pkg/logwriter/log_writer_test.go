package logwriter

import (
	"context"
	"fmt"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/adapter"
	loggertypes "github.com/facebookincubator/go-belt/tool/logger/types"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	messages []string
}

func (e *recordingEmitter) Emit(entry *loggertypes.Entry) {
	e.messages = append(e.messages, fmt.Sprintf("%s:%s", entry.Level, entry.Message))
}

func (e *recordingEmitter) Flush() {}

func TestWriterLogsLines(t *testing.T) {
	emitter := &recordingEmitter{}
	ctx := logger.CtxWithLogger(context.Background(), adapter.LoggerFromEmitter(emitter).WithLevel(logger.LevelTrace))

	w := New(ctx, logger.LevelDebug, "zenity: ")
	chunk := []byte("Gtk-Message: first\n\nsecond li")
	n, err := w.Write(chunk)
	require.NoError(t, err)
	require.Equal(t, len(chunk), n)
	_, err = w.Write([]byte("ne\nthird"))
	require.NoError(t, err)
	require.Len(t, emitter.messages, 2)

	w.Flush()
	w.Flush()
	require.Len(t, emitter.messages, 3)
	require.Contains(t, emitter.messages[0], "zenity: Gtk-Message: first")
	require.Contains(t, emitter.messages[1], "zenity: second line")
	require.Contains(t, emitter.messages[2], "zenity: third")
}

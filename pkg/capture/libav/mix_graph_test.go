package libav

import (
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func TestMixGraphDescription(t *testing.T) {
	description := mixGraphDescription(
		[]types.MixInput{{Name: "player"}, {Name: "mic"}},
		types.AudioFormat{
			SampleRate:   44100,
			SampleFormat: types.SampleFormatS16,
			Channels:     2,
		},
	)
	require.Equal(t,
		"[player][mic]amix=inputs=2:duration=longest,aformat=sample_fmts=s16:channel_layouts=stereo:sample_rates=44100[out]",
		description,
	)
}

func TestLogLevelRoundTrip(t *testing.T) {
	for _, level := range []logger.Level{
		logger.LevelPanic,
		logger.LevelFatal,
		logger.LevelError,
		logger.LevelWarning,
		logger.LevelDebug,
		logger.LevelTrace,
	} {
		require.Equal(t, level, LogLevelFromAstiav(LogLevelToAstiav(level)), level.String())
	}
	require.Equal(t, logger.LevelDebug, LogLevelFromAstiav(LogLevelToAstiav(logger.LevelInfo)))
}

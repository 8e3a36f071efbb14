package observability

import (
	"testing"

	logger "github.com/facebookincubator/go-belt/tool/logger/types"
	"github.com/stretchr/testify/require"
)

func TestLogLevelFilter(t *testing.T) {
	var f LogLevelFilterT
	f.SetLevel(logger.LevelWarning)
	require.Equal(t, logger.LevelWarning, f.GetLevel())

	require.False(t, f.ProcessInput(nil, logger.LevelError).Skip)
	require.False(t, f.ProcessInputf(nil, logger.LevelWarning, "").Skip)
	require.True(t, f.ProcessInputFields(nil, logger.LevelDebug, "", nil).Skip)
}

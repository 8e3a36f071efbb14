package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRescaleQ(t *testing.T) {
	for _, tc := range []struct {
		a    int64
		from Rational
		to   Rational
		want int64
	}{
		{0, NewRational(1, 30), NewRational(1, 15360), 0},
		{1, NewRational(1, 30), NewRational(1, 15360), 512},
		{29, NewRational(1, 30), NewRational(1, 90000), 87000},
		{1024, NewRational(1, 44100), NewRational(1, 44100), 1024},
		{1, NewRational(1, 3), NewRational(1, 2), 1},
		{-1, NewRational(1, 3), NewRational(1, 2), -1},
		{44100, NewRational(1, 44100), NewRational(1, 48000), 48000},
		{5, NewRational(1, 2), NewRational(0, 1), 0},
	} {
		require.Equal(t, tc.want, RescaleQ(tc.a, tc.from, tc.to), "%d: %s -> %s", tc.a, tc.from, tc.to)
	}
}

func TestAudioFormatLayout(t *testing.T) {
	require.Equal(t, "mono", AudioFormat{Channels: 1}.Layout())
	require.Equal(t, "stereo", AudioFormat{Channels: 2}.Layout())
	require.Equal(t, "6c", AudioFormat{Channels: 6}.Layout())
	require.Equal(t, "5.1", AudioFormat{Channels: 6, ChannelLayout: "5.1"}.Layout())
}

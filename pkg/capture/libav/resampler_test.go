package libav

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func newSilentFrame(t *testing.T, nbSamples int) *astiav.Frame {
	f := astiav.AllocFrame()
	t.Cleanup(f.Free)
	f.SetSampleFormat(astiav.SampleFormatS16)
	f.SetChannelLayout(astiav.ChannelLayoutStereo)
	f.SetSampleRate(48000)
	f.SetNbSamples(nbSamples)
	require.NoError(t, f.AllocBuffer(0))
	require.NoError(t, f.SamplesFillSilence())
	return f
}

func TestResamplerFrameSizeAndFlush(t *testing.T) {
	ctx := context.Background()
	r, err := newResampler(ctx,
		types.AudioFormat{SampleRate: 48000, SampleFormat: types.SampleFormatS16, Channels: 2, ChannelLayout: "stereo"},
		types.AudioFormat{SampleRate: 44100, SampleFormat: types.SampleFormatFLTP, Channels: 2, ChannelLayout: "stereo"},
		1024,
	)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ReceiveFrame(ctx)
	require.ErrorIs(t, err, types.ErrAgain)

	var total, frames int
	receive := func() error {
		for {
			f, err := r.ReceiveFrame(ctx)
			if err != nil {
				return err
			}
			frame := f.(*astiav.Frame)
			require.Equal(t, 44100, frame.SampleRate())
			require.Equal(t, astiav.SampleFormatFltp, frame.SampleFormat())
			require.LessOrEqual(t, frame.NbSamples(), 1024)
			if !r.flushing {
				require.Equal(t, 1024, frame.NbSamples())
			}
			total += frame.NbSamples()
			frames++
		}
	}

	const calls = 100
	in := newSilentFrame(t, 940)
	for i := 0; i < calls; i++ {
		require.NoError(t, r.SendFrame(ctx, in))
		require.ErrorIs(t, receive(), types.ErrAgain)
	}
	require.Less(t, total, calls*940*44100/48000)

	require.NoError(t, r.SendFrame(ctx, nil))
	err = receive()
	require.True(t, errors.Is(err, io.EOF), "%v", err)
	require.InDelta(t, float64(calls*940)*44100/48000, float64(total), 2)
	require.Equal(t, (total+1023)/1024, frames)

	// flushing twice is harmless
	require.NoError(t, r.SendFrame(ctx, nil))
	_, err = r.ReceiveFrame(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestResamplerInvalidFrameSize(t *testing.T) {
	_, err := newResampler(context.Background(),
		types.AudioFormat{SampleRate: 48000, SampleFormat: types.SampleFormatS16, Channels: 2},
		types.AudioFormat{SampleRate: 44100, SampleFormat: types.SampleFormatFLTP, Channels: 2},
		0,
	)
	require.Error(t, err)
}

package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/fake"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func audioConfig(desktop, mic bool) Config {
	cfg := DefaultConfig()
	cfg.CaptureDesktopAudio = desktop
	cfg.CaptureMic = mic
	return cfg
}

func TestAudioCapturePTSIsCumulativeSampleCount(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, false))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	for i := 0; i < 100; i++ {
		require.True(t, c.WriteFrame(ctx, false))
	}

	// 100 packets of 940 samples at 48kHz are 86362 samples at 44.1kHz
	packets := output.Packets(types.MediaTypeAudio)
	require.Len(t, packets, 84)
	for i, pkt := range packets {
		require.Equal(t, int64(i*1024), pkt.Pts)
	}

	params := output.Streams()[0].Encoder.Params
	require.Equal(t, types.CodecIDAAC, params.CodecID)
	require.Equal(t, 44100, params.Audio.SampleRate)
	require.Equal(t, types.SampleFormatFLTP, params.Audio.SampleFormat)
	require.Equal(t, 2, params.Audio.Channels)
	require.Equal(t, int64(DefaultAudioBitRate), params.BitRate)
}

func TestAudioCaptureFlushKeepsTheSampleCount(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, false))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	const calls = 100
	for i := 0; i < calls; i++ {
		require.True(t, c.WriteFrame(ctx, false))
	}
	c.Flush(ctx)

	encoder := output.Streams()[0].Encoder
	var total int
	for _, frame := range encoder.Frames {
		total += frame.Samples
	}
	require.InDelta(t, float64(calls*940)*44100/48000, float64(total), 1)

	packets := output.Packets(types.MediaTypeAudio)
	require.Len(t, packets, 85)
	require.Equal(t, int64(84*1024), packets[len(packets)-1].Pts)
}

func TestAudioCaptureSkip(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, false))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	for i := 0; i < 20; i++ {
		require.True(t, c.WriteFrame(ctx, i < 10))
	}

	packets := output.Packets(types.MediaTypeAudio)
	require.NotEmpty(t, packets)
	require.Zero(t, packets[0].Pts)
	require.NotZero(t, c.Statistics().FramesSkipped)
}

func TestAudioCaptureMixUnevenSources(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, true))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))
	require.NotNil(t, c.graph)

	for i := 0; i < 50; i++ {
		require.True(t, c.WriteFrame(ctx, false))
	}

	graph := c.graph.Graph.(*fake.MixGraph)
	require.Equal(t, []int{50, 50}, graph.Pushed)
	require.Equal(t, types.SampleFormatS16, graph.Output.SampleFormat)
	require.Equal(t, "stereo", graph.Output.ChannelLayout)
	require.Equal(t, "mono", graph.Inputs[mixInputMic].Format.ChannelLayout)

	// the mic delivers 480 samples per packet, so only 24000 samples are
	// mixed so far: 23 full frames
	packets := output.Packets(types.MediaTypeAudio)
	require.Len(t, packets, 23)
	for i, pkt := range packets {
		require.Equal(t, int64(i*1024), pkt.Pts)
	}

	// the rest of the desktop audio comes out once the mic input ends
	c.Flush(ctx)
	require.Len(t, output.Packets(types.MediaTypeAudio), 46)
}

func TestAudioCaptureMixWithSilentMic(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	backend.Sources[types.AudioDeviceMic.String()].SamplesPerPacket = 0
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, true))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	for i := 0; i < 50; i++ {
		require.True(t, c.WriteFrame(ctx, false))
	}

	graph := c.graph.Graph.(*fake.MixGraph)
	require.Equal(t, []int{50, 0}, graph.Pushed)
	require.Empty(t, output.Packets(types.MediaTypeAudio))
	stats := c.Statistics()
	require.Zero(t, stats.FramesDropped)
	require.Zero(t, stats.PacketsDropped)

	c.Flush(ctx)
	packets := output.Packets(types.MediaTypeAudio)
	require.Len(t, packets, 46)
	for i, pkt := range packets {
		require.Equal(t, int64(i*1024), pkt.Pts)
	}
}

func TestAudioCaptureMP2HasNoBitRate(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mpg")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(false, true))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)

	params := output.Streams()[0].Encoder.Params
	require.Equal(t, types.CodecIDMP2, params.CodecID)
	require.Equal(t, types.SampleFormatS16, params.Audio.SampleFormat)
	require.Zero(t, params.BitRate)
}

func TestAudioCaptureSourceEnded(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	backend.Sources[types.AudioDeviceMic.String()].Packets = 2
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, true))
	require.NoError(t, c.OpenCapture(ctx, output))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	require.True(t, c.WriteFrame(ctx, false))
	require.True(t, c.WriteFrame(ctx, false))
	require.False(t, c.WriteFrame(ctx, false))
}

func TestAudioCaptureNoSourceEnabled(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(false, false))
	require.Error(t, c.OpenCapture(ctx, output))
	require.NoError(t, c.CloseCapture(ctx))
	require.Equal(t, StateIdle, c.State())
}

func TestAudioCaptureOpenFailureReleasesEverything(t *testing.T) {
	for _, stage := range []fake.Stage{
		fake.StageOpenInput,
		fake.StageDecoder,
		fake.StageMixGraph,
		fake.StageAudioEncoder,
		fake.StageNewStream,
		fake.StageResampler,
	} {
		t.Run(string(stage), func(t *testing.T) {
			ctx := context.Background()
			backend := fake.NewBackend()
			output := newTestOutput(t, backend, "out.mp4")

			backend.FailOn[stage] = errors.New("boom")
			c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, true))
			require.Error(t, c.OpenCapture(ctx, output))
			require.NoError(t, c.CloseCapture(ctx))
			require.NoError(t, c.CloseCapture(ctx))
			require.Equal(t, StateIdle, c.State())

			require.NoError(t, output.Close())
			require.Zero(t, backend.Resources.LiveCount(), "%v", backend.Resources.Live())
		})
	}
}

func TestAudioCaptureCloseReleasesEverything(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")

	c := NewAudioCapture(backend, fake.AudioSource{}, audioConfig(true, true))
	require.NoError(t, c.OpenCapture(ctx, output))
	require.NoError(t, output.WriteHeader(ctx, nil))
	require.True(t, c.WriteFrame(ctx, false))

	require.NoError(t, c.CloseCapture(ctx))
	require.False(t, c.WriteFrame(ctx, false))
	require.NoError(t, output.Close())
	require.Zero(t, backend.Resources.LiveCount(), "%v", backend.Resources.Live())
	require.Equal(t, 2, backend.Resources.Allocated("demuxer"))
}

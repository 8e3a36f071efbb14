package capture

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/fake"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

func newTestOutput(t *testing.T, backend *fake.Backend, fileName string) *fake.Output {
	output, err := backend.NewOutput(context.Background(), filepath.Join(t.TempDir(), fileName))
	require.NoError(t, err)
	return output.(*fake.Output)
}

func TestVideoCaptureSkipAndPTS(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewVideoCapture(backend, &fake.ScreenSource{}, DefaultConfig())
	require.NoError(t, c.OpenCapture(ctx, output, types.Rect{Width: 640, Height: 480}))
	defer c.CloseCapture(ctx)
	require.Equal(t, StateCapturing, c.State())
	require.NoError(t, output.WriteHeader(ctx, nil))

	for i := 0; i < 35; i++ {
		require.True(t, c.WriteFrame(ctx, i < 5))
	}
	c.Flush(ctx)

	packets := output.Packets(types.MediaTypeVideo)
	require.Len(t, packets, 30)
	for i, pkt := range packets {
		require.Equal(t, int64(i), pkt.Pts)
	}

	stats := c.Statistics()
	require.Equal(t, uint64(5), stats.FramesSkipped)
	require.Equal(t, uint64(30), stats.FramesEncoded)
	require.Equal(t, uint64(30), stats.PacketsWritten)
	require.Zero(t, stats.FramesDropped)
}

func TestVideoCaptureStreamTimeBase(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	backend.VideoStreamTimeBase = types.NewRational(1, 15360)
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewVideoCapture(backend, &fake.ScreenSource{}, DefaultConfig())
	require.NoError(t, c.OpenCapture(ctx, output, types.Rect{Width: 320, Height: 240}))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	for i := 0; i < 10; i++ {
		require.True(t, c.WriteFrame(ctx, false))
	}

	packets := output.Packets(types.MediaTypeVideo)
	require.Len(t, packets, 10)
	for i, pkt := range packets {
		require.Equal(t, int64(i*512), pkt.Pts)
	}
}

func TestVideoCaptureEvenDimensions(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	screen := &fake.ScreenSource{}
	c := NewVideoCapture(backend, screen, DefaultConfig())
	require.NoError(t, c.OpenCapture(ctx, output, types.Rect{X: 3, Y: 5, Width: 641, Height: 481}))
	defer c.CloseCapture(ctx)

	require.Equal(t, types.Rect{X: 3, Y: 5, Width: 640, Height: 480}, screen.LastRect)
	streams := output.Streams()
	require.Len(t, streams, 1)
	videoFmt := streams[0].Encoder.Params.Video
	require.Equal(t, 640, videoFmt.Width)
	require.Equal(t, 480, videoFmt.Height)
	require.Equal(t, types.PixelFormatYUV420P, videoFmt.PixelFormat)
	require.Equal(t, types.CodecIDH264, streams[0].Encoder.Params.CodecID)
	require.True(t, streams[0].Encoder.Params.GlobalHeader)
}

func TestVideoCaptureSourceEnded(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	backend.Sources[fake.ScreenURL].Packets = 3
	output := newTestOutput(t, backend, "out.avi")
	defer output.Close()

	c := NewVideoCapture(backend, &fake.ScreenSource{}, DefaultConfig())
	require.NoError(t, c.OpenCapture(ctx, output, types.Rect{Width: 320, Height: 240}))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	for i := 0; i < 3; i++ {
		require.True(t, c.WriteFrame(ctx, false))
	}
	require.False(t, c.WriteFrame(ctx, false))
	require.Len(t, output.Packets(types.MediaTypeVideo), 3)
	require.Equal(t, types.CodecIDMPEG4, output.Streams()[0].Encoder.Params.CodecID)
}

func TestVideoCaptureWriteFailureKeepsRecording(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewVideoCapture(backend, &fake.ScreenSource{}, DefaultConfig())
	require.NoError(t, c.OpenCapture(ctx, output, types.Rect{Width: 320, Height: 240}))
	defer c.CloseCapture(ctx)
	require.NoError(t, output.WriteHeader(ctx, nil))

	backend.FailOn[fake.StageWritePacket] = errors.New("disk is full")
	require.True(t, c.WriteFrame(ctx, false))
	delete(backend.FailOn, fake.StageWritePacket)
	require.True(t, c.WriteFrame(ctx, false))

	packets := output.Packets(types.MediaTypeVideo)
	require.Len(t, packets, 1)
	require.Equal(t, int64(1), packets[0].Pts)
	stats := c.Statistics()
	require.Equal(t, uint64(1), stats.PacketsDropped)
	require.Equal(t, uint64(1), stats.PacketsWritten)
}

func TestVideoCaptureNotOpened(t *testing.T) {
	ctx := context.Background()
	c := NewVideoCapture(fake.NewBackend(), &fake.ScreenSource{}, DefaultConfig())
	require.False(t, c.WriteFrame(ctx, false))
	require.NoError(t, c.CloseCapture(ctx))
	require.NoError(t, c.CloseCapture(ctx))
	require.Equal(t, StateIdle, c.State())
}

func TestVideoCaptureOpenFailureReleasesEverything(t *testing.T) {
	for _, stage := range []fake.Stage{
		fake.StageOpenInput,
		fake.StageDecoder,
		fake.StageVideoEncoder,
		fake.StageNewStream,
		fake.StageRescaler,
	} {
		t.Run(string(stage), func(t *testing.T) {
			ctx := context.Background()
			backend := fake.NewBackend()
			output := newTestOutput(t, backend, "out.mp4")

			backend.FailOn[stage] = errors.New("boom")
			c := NewVideoCapture(backend, &fake.ScreenSource{}, DefaultConfig())
			require.Error(t, c.OpenCapture(ctx, output, types.Rect{Width: 320, Height: 240}))
			require.NoError(t, c.CloseCapture(ctx))
			require.Equal(t, StateIdle, c.State())

			require.NoError(t, output.Close())
			require.Zero(t, backend.Resources.LiveCount(), "%v", backend.Resources.Live())
		})
	}
}

func TestVideoCaptureNoEncoder(t *testing.T) {
	ctx := context.Background()
	backend := fake.NewBackend()
	backend.MissingEncoders = map[types.CodecID]struct{}{
		types.CodecIDH264:  {},
		types.CodecIDMPEG4: {},
	}
	output := newTestOutput(t, backend, "out.mp4")
	defer output.Close()

	c := NewVideoCapture(backend, &fake.ScreenSource{}, DefaultConfig())
	require.Error(t, c.OpenCapture(ctx, output, types.Rect{Width: 320, Height: 240}))
	require.NoError(t, c.CloseCapture(ctx))
	require.Equal(t, 1, backend.Resources.LiveCount())
}

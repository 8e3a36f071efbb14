package capture

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

const (
	mixInputPlayer = 0
	mixInputMic    = 1
)

// FilterGraph mixes the desktop audio ("player") with the microphone
// ("mic"). Its output is always S16 stereo at the capture sample rate.
type FilterGraph struct {
	Graph types.MixGraph
}

func NewFilterGraph(
	ctx context.Context,
	backend types.Backend,
	player types.AudioFormat,
	mic types.AudioFormat,
	sampleRate int,
) (_ret *FilterGraph, _err error) {
	logger.Debugf(ctx, "NewFilterGraph(%#+v, %#+v, %d)", player, mic, sampleRate)
	defer func() { logger.Debugf(ctx, "/NewFilterGraph: %v", _err) }()

	player.ChannelLayout = player.Layout()
	mic.ChannelLayout = mic.Layout()
	output := types.AudioFormat{
		SampleRate:    sampleRate,
		SampleFormat:  types.SampleFormatS16,
		Channels:      OutputChannels,
		ChannelLayout: types.DefaultChannelLayout(OutputChannels),
		TimeBase:      types.NewRational(1, sampleRate),
	}

	graph, err := backend.NewMixGraph(ctx, []types.MixInput{
		mixInputPlayer: {Name: "player", Format: player},
		mixInputMic:    {Name: "mic", Format: mic},
	}, output)
	if err != nil {
		return nil, fmt.Errorf("unable to build the audio mixing graph: %w", err)
	}
	return &FilterGraph{Graph: graph}, nil
}

func (g *FilterGraph) OutputFormat() types.AudioFormat {
	return g.Graph.OutputFormat()
}

func (g *FilterGraph) Push(
	ctx context.Context,
	inputIdx int,
	frame types.Frame,
) error {
	return g.Graph.SendFrame(ctx, inputIdx, frame)
}

// Pull returns a mixed frame, or types.ErrAgain if none is available yet.
func (g *FilterGraph) Pull(ctx context.Context) (types.Frame, error) {
	return g.Graph.ReceiveFrame(ctx)
}

func (g *FilterGraph) Close() error {
	if g == nil || g.Graph == nil {
		return nil
	}
	err := g.Graph.Close()
	g.Graph = nil
	return err
}

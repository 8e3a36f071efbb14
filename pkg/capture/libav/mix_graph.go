package libav

import (
	"context"
	"fmt"
	"strings"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// MixGraph is "abuffer x N -> amix -> aformat -> abuffersink".
type MixGraph struct {
	*astikit.Closer
	graph   *astiav.FilterGraph
	sources []*astiav.BuffersrcFilterContext
	sink    *astiav.BuffersinkFilterContext
	frame   *astiav.Frame
	output  types.AudioFormat
}

var _ types.MixGraph = (*MixGraph)(nil)

func mixGraphDescription(
	inputs []types.MixInput,
	output types.AudioFormat,
) string {
	var b strings.Builder
	for _, input := range inputs {
		fmt.Fprintf(&b, "[%s]", input.Name)
	}
	fmt.Fprintf(&b, "amix=inputs=%d:duration=longest,aformat=sample_fmts=%s:channel_layouts=%s:sample_rates=%d[out]",
		len(inputs), output.SampleFormat, output.Layout(), output.SampleRate)
	return b.String()
}

func newMixGraph(
	ctx context.Context,
	inputs []types.MixInput,
	output types.AudioFormat,
) (_ret *MixGraph, _err error) {
	logger.Debugf(ctx, "newMixGraph(%#+v, %#+v)", inputs, output)
	defer func() { logger.Debugf(ctx, "/newMixGraph: %v", _err) }()

	if len(inputs) < 2 {
		return nil, fmt.Errorf("at least two inputs are required, got %d", len(inputs))
	}

	g := &MixGraph{
		Closer: astikit.NewCloser(),
		output: output,
	}
	defer func() {
		if _err != nil {
			_ = g.Close()
		}
	}()

	g.graph = astiav.AllocFilterGraph()
	if g.graph == nil {
		return nil, fmt.Errorf("unable to allocate the filter graph")
	}
	g.Closer.Add(g.graph.Free)

	bufferSrc := astiav.FindFilterByName("abuffer")
	bufferSink := astiav.FindFilterByName("abuffersink")
	if bufferSrc == nil || bufferSink == nil {
		return nil, fmt.Errorf("the abuffer/abuffersink filters are not available")
	}

	var outputs *astiav.FilterInOut
	for _, input := range inputs {
		src, err := g.newSource(bufferSrc, input)
		if err != nil {
			return nil, fmt.Errorf("unable to create the source '%s': %w", input.Name, err)
		}
		g.sources = append(g.sources, src)

		inOut := astiav.AllocFilterInOut()
		if inOut == nil {
			return nil, fmt.Errorf("unable to allocate a filter in/out")
		}
		inOut.SetName(input.Name)
		inOut.SetFilterContext(src.FilterContext())
		inOut.SetPadIdx(0)
		if outputs != nil {
			inOut.SetNext(outputs)
		}
		outputs = inOut
	}
	defer outputs.Free()

	var err error
	g.sink, err = g.graph.NewBuffersinkFilterContext(bufferSink, "out")
	if err != nil {
		return nil, fmt.Errorf("unable to create the sink: %w", err)
	}

	sinkInOut := astiav.AllocFilterInOut()
	if sinkInOut == nil {
		return nil, fmt.Errorf("unable to allocate a filter in/out")
	}
	defer sinkInOut.Free()
	sinkInOut.SetName("out")
	sinkInOut.SetFilterContext(g.sink.FilterContext())
	sinkInOut.SetPadIdx(0)

	description := mixGraphDescription(inputs, output)
	logger.Debugf(ctx, "audio mixing graph: %s", description)
	if err := g.graph.Parse(description, sinkInOut, outputs); err != nil {
		return nil, fmt.Errorf("unable to parse the filter graph '%s': %w", description, err)
	}
	if err := g.graph.Configure(); err != nil {
		return nil, fmt.Errorf("unable to configure the filter graph: %w", err)
	}

	g.frame = astiav.AllocFrame()
	g.Closer.Add(g.frame.Free)
	return g, nil
}

func (g *MixGraph) newSource(
	bufferSrc *astiav.Filter,
	input types.MixInput,
) (*astiav.BuffersrcFilterContext, error) {
	sampleFmt, err := sampleFormatToAstiav(input.Format.SampleFormat)
	if err != nil {
		return nil, err
	}
	layout, err := channelLayoutToAstiav(input.Format)
	if err != nil {
		return nil, err
	}
	timeBase := input.Format.TimeBase
	if timeBase.IsZero() {
		timeBase = types.NewRational(1, input.Format.SampleRate)
	}

	src, err := g.graph.NewBuffersrcFilterContext(bufferSrc, input.Name)
	if err != nil {
		return nil, err
	}

	params := astiav.AllocBuffersrcFilterContextParameters()
	defer params.Free()
	params.SetChannelLayout(layout)
	params.SetSampleFormat(sampleFmt)
	params.SetSampleRate(input.Format.SampleRate)
	params.SetTimeBase(rationalToAstiav(timeBase))
	if err := src.SetParameters(params); err != nil {
		return nil, fmt.Errorf("unable to set the parameters: %w", err)
	}
	if err := src.Initialize(nil); err != nil {
		return nil, fmt.Errorf("unable to initialize: %w", err)
	}
	return src, nil
}

func (g *MixGraph) SendFrame(ctx context.Context, inputIdx int, f types.Frame) error {
	if inputIdx < 0 || inputIdx >= len(g.sources) {
		return fmt.Errorf("input #%d does not exist", inputIdx)
	}
	frame, err := frameFromTypes(f)
	if err != nil {
		return err
	}
	return convertError(g.sources[inputIdx].AddFrame(frame, astiav.NewBuffersrcFlags(astiav.BuffersrcFlagKeepRef)))
}

// ReceiveFrame reuses one frame, so the previous result becomes invalid.
func (g *MixGraph) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	g.frame.Unref()
	if err := g.sink.GetFrame(g.frame, astiav.NewBuffersinkFlags()); err != nil {
		return nil, convertError(err)
	}
	return g.frame, nil
}

func (g *MixGraph) OutputFormat() types.AudioFormat {
	return g.output
}

package fake

import (
	"context"
	"fmt"
	"io"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type Rescaler struct {
	backend *Backend
	Src     types.VideoFormat
	Dst     types.VideoFormat
	closed  bool
}

var _ types.Rescaler = (*Rescaler)(nil)

func (r *Rescaler) Rescale(ctx context.Context, src types.Frame) (types.Frame, error) {
	return NewFrame(src.Pts(), 0), nil
}

func (r *Rescaler) Close() error {
	if !r.closed {
		r.closed = true
		r.backend.Resources.release("rescaler")
	}
	return nil
}

// Resampler converts sample counts with the exact rate ratio and emits
// frames of FrameSize samples.
type Resampler struct {
	backend   *Backend
	Src       types.AudioFormat
	Dst       types.AudioFormat
	FrameSize int

	inputSamples   int64
	emittedSamples int64
	flushing       bool
	closed         bool
}

var _ types.Resampler = (*Resampler)(nil)

func (r *Resampler) SendFrame(ctx context.Context, src types.Frame) error {
	if src == nil {
		r.flushing = true
		return nil
	}
	r.inputSamples += int64(src.NbSamples())
	return nil
}

func (r *Resampler) pending() int64 {
	return r.inputSamples*int64(r.Dst.SampleRate)/int64(r.Src.SampleRate) - r.emittedSamples
}

func (r *Resampler) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	pending := r.pending()
	switch {
	case pending >= int64(r.FrameSize):
		r.emittedSamples += int64(r.FrameSize)
		return NewFrame(0, r.FrameSize), nil
	case r.flushing && pending > 0:
		r.emittedSamples += pending
		return NewFrame(0, int(pending)), nil
	case r.flushing:
		return nil, io.EOF
	default:
		return nil, types.ErrAgain
	}
}

func (r *Resampler) Close() error {
	if !r.closed {
		r.closed = true
		r.backend.Resources.release("resampler")
	}
	return nil
}

// MixGraph behaves like amix with duration=longest: it emits only as many
// samples as every live input has buffered, so a live input that delivers
// nothing stalls the output; an ended input stops counting.
type MixGraph struct {
	backend *Backend
	Inputs  []types.MixInput
	Output  types.AudioFormat
	Pushed  []int

	buffered []int
	ended    []bool
	pts      int64
	closed   bool
}

var _ types.MixGraph = (*MixGraph)(nil)

func (g *MixGraph) SendFrame(ctx context.Context, inputIdx int, f types.Frame) error {
	if inputIdx < 0 || inputIdx >= len(g.Inputs) {
		return fmt.Errorf("input #%d does not exist", inputIdx)
	}
	if g.ended[inputIdx] {
		if f == nil {
			return nil
		}
		return fmt.Errorf("input #%d has already ended", inputIdx)
	}
	if f == nil {
		g.ended[inputIdx] = true
		return nil
	}
	g.Pushed[inputIdx]++
	g.buffered[inputIdx] += f.NbSamples()
	return nil
}

func (g *MixGraph) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	nbSamples := -1
	for idx, ended := range g.ended {
		if ended {
			continue
		}
		if nbSamples < 0 || g.buffered[idx] < nbSamples {
			nbSamples = g.buffered[idx]
		}
	}
	if nbSamples < 0 {
		// every input has ended: the longest one decides
		nbSamples = 0
		for _, buffered := range g.buffered {
			nbSamples = max(nbSamples, buffered)
		}
		if nbSamples == 0 {
			return nil, io.EOF
		}
	}
	if nbSamples == 0 {
		return nil, types.ErrAgain
	}
	for idx := range g.buffered {
		g.buffered[idx] = max(0, g.buffered[idx]-nbSamples)
	}
	f := NewFrame(g.pts, nbSamples)
	g.pts += int64(nbSamples)
	return f, nil
}

func (g *MixGraph) OutputFormat() types.AudioFormat {
	return g.Output
}

func (g *MixGraph) Close() error {
	if !g.closed {
		g.closed = true
		g.backend.Resources.release("mix_graph")
	}
	return nil
}

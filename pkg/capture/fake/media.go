package fake

import (
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type Packet struct {
	streamIndex int
	pts         int64
	dts         int64
	size        int
	samples     int
}

var _ types.Packet = (*Packet)(nil)

func (p *Packet) StreamIndex() int {
	return p.streamIndex
}

func (p *Packet) SetStreamIndex(idx int) {
	p.streamIndex = idx
}

func (p *Packet) Pts() int64 {
	return p.pts
}

func (p *Packet) Dts() int64 {
	return p.dts
}

func (p *Packet) Size() int {
	return p.size
}

func (p *Packet) RescaleTs(src, dst types.Rational) {
	p.pts = types.RescaleQ(p.pts, src, dst)
	p.dts = types.RescaleQ(p.dts, src, dst)
}

type Frame struct {
	pts     int64
	samples int
}

var _ types.Frame = (*Frame)(nil)

func NewFrame(pts int64, samples int) *Frame {
	return &Frame{pts: pts, samples: samples}
}

func (f *Frame) Pts() int64 {
	return f.pts
}

func (f *Frame) SetPts(pts int64) {
	f.pts = pts
}

func (f *Frame) NbSamples() int {
	return f.samples
}

type frameQueue struct {
	frames   []types.Frame
	draining bool
}

func (q *frameQueue) push(f types.Frame) {
	q.frames = append(q.frames, f)
}

func (q *frameQueue) pop() (types.Frame, bool) {
	if len(q.frames) == 0 {
		return nil, false
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f, true
}

package fake

import (
	"context"
	"io"
	"sync"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type Demuxer struct {
	backend *Backend
	source  Source

	locker    sync.Mutex
	readCount int
	closed    bool
}

var _ types.Demuxer = (*Demuxer)(nil)

func (d *Demuxer) Streams() []types.StreamInfo {
	info := types.StreamInfo{
		Index:     0,
		MediaType: d.source.MediaType,
	}
	switch d.source.MediaType {
	case types.MediaTypeVideo:
		info.CodecID = types.CodecIDRawVideo
		info.TimeBase = types.NewRational(1, d.source.FPS)
		info.Video = types.VideoFormat{
			Width:       d.source.Width,
			Height:      d.source.Height,
			PixelFormat: types.PixelFormatBGR0,
			TimeBase:    info.TimeBase,
		}
	case types.MediaTypeAudio:
		info.CodecID = types.CodecIDPCMS16LE
		info.TimeBase = types.NewRational(1, d.source.SampleRate)
		info.Audio = types.AudioFormat{
			SampleRate:    d.source.SampleRate,
			SampleFormat:  types.SampleFormatS16,
			Channels:      d.source.Channels,
			ChannelLayout: d.source.ChannelLayout,
			TimeBase:      info.TimeBase,
		}
	}
	return []types.StreamInfo{info}
}

func (d *Demuxer) ReadPacket(ctx context.Context) (types.Packet, error) {
	d.locker.Lock()
	defer d.locker.Unlock()
	if d.closed {
		return nil, io.ErrClosedPipe
	}
	if d.source.Packets >= 0 && d.readCount >= d.source.Packets {
		return nil, io.EOF
	}
	pts := int64(d.readCount)
	if d.source.MediaType == types.MediaTypeAudio {
		pts *= int64(d.source.SamplesPerPacket)
	}
	d.readCount++
	return &Packet{
		streamIndex: 0,
		pts:         pts,
		dts:         pts,
		size:        100,
		samples:     d.source.SamplesPerPacket,
	}, nil
}

func (d *Demuxer) ReadCount() int {
	d.locker.Lock()
	defer d.locker.Unlock()
	return d.readCount
}

func (d *Demuxer) Close() error {
	d.locker.Lock()
	defer d.locker.Unlock()
	if !d.closed {
		d.closed = true
		d.backend.Resources.release("demuxer")
	}
	return nil
}

// Decoder produces one frame per packet.
type Decoder struct {
	backend *Backend
	info    types.StreamInfo
	queue   frameQueue
	closed  bool
}

var _ types.Decoder = (*Decoder)(nil)

func (d *Decoder) StreamInfo() types.StreamInfo {
	return d.info
}

func (d *Decoder) SendPacket(ctx context.Context, pkt types.Packet) error {
	if pkt == nil {
		d.queue.draining = true
		return nil
	}
	var samples int
	if p, ok := pkt.(*Packet); ok {
		samples = p.samples
	}
	if d.info.MediaType == types.MediaTypeAudio && samples == 0 {
		// silence is not delivered
		return nil
	}
	d.queue.push(NewFrame(pkt.Pts(), samples))
	return nil
}

func (d *Decoder) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	if f, ok := d.queue.pop(); ok {
		return f, nil
	}
	if d.queue.draining {
		return nil, io.EOF
	}
	return nil, types.ErrAgain
}

func (d *Decoder) Close() error {
	if !d.closed {
		d.closed = true
		d.backend.Resources.release("decoder")
	}
	return nil
}

package fake

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Encoder produces one packet per frame, with the frame's timestamp.
type Encoder struct {
	backend   *Backend
	Params    types.EncoderParams
	Frames    []FrameRecord
	frameSize int
	queue     []*Packet
	draining  bool
	closed    bool
}

type FrameRecord struct {
	Pts     int64
	Samples int
}

var _ types.Encoder = (*Encoder)(nil)

func (e *Encoder) CodecID() types.CodecID {
	return e.Params.CodecID
}

func (e *Encoder) TimeBase() types.Rational {
	if e.Params.MediaType == types.MediaTypeAudio {
		return e.Params.Audio.TimeBase
	}
	return e.Params.Video.TimeBase
}

func (e *Encoder) VideoFormat() types.VideoFormat {
	return e.Params.Video
}

func (e *Encoder) AudioFormat() types.AudioFormat {
	return e.Params.Audio
}

func (e *Encoder) FrameSize() int {
	return e.frameSize
}

func (e *Encoder) SendFrame(ctx context.Context, f types.Frame) error {
	if f == nil {
		e.draining = true
		return nil
	}
	e.Frames = append(e.Frames, FrameRecord{Pts: f.Pts(), Samples: f.NbSamples()})
	e.queue = append(e.queue, &Packet{
		pts:  f.Pts(),
		dts:  f.Pts(),
		size: 10,
	})
	return nil
}

func (e *Encoder) ReceivePacket(ctx context.Context) (types.Packet, error) {
	if len(e.queue) > 0 {
		pkt := e.queue[0]
		e.queue = e.queue[1:]
		return pkt, nil
	}
	if e.draining {
		return nil, io.EOF
	}
	return nil, types.ErrAgain
}

func (e *Encoder) Close() error {
	if !e.closed {
		e.closed = true
		e.backend.Resources.release("encoder")
	}
	return nil
}

type MuxStream struct {
	index     int
	timeBase  types.Rational
	MediaType types.MediaType
	Encoder   *Encoder
}

var _ types.MuxStream = (*MuxStream)(nil)

func (s *MuxStream) Index() int {
	return s.index
}

func (s *MuxStream) TimeBase() types.Rational {
	return s.timeBase
}

type WrittenPacket struct {
	StreamIndex int
	Pts         int64
	Dts         int64
	Size        int
}

// Output records everything written into it.
type Output struct {
	backend    *Backend
	url        string
	formatName string

	locker        sync.Mutex
	streams       []*MuxStream
	packets       []WrittenPacket
	headerOptions types.Options
	headerCount   int
	trailerCount  int
	formatDumped  bool
	closed        bool
}

var _ types.Output = (*Output)(nil)

func (o *Output) URL() string {
	return o.url
}

func (o *Output) FormatName() string {
	return o.formatName
}

func (o *Output) NeedsGlobalHeader() bool {
	switch o.formatName {
	case "mp4", "mov", "flv":
		return true
	}
	return false
}

func (o *Output) NewStream(ctx context.Context, encoder types.Encoder) (types.MuxStream, error) {
	if err := o.backend.fail(StageNewStream); err != nil {
		return nil, err
	}
	enc, ok := encoder.(*Encoder)
	if !ok {
		return nil, fmt.Errorf("unexpected encoder type %T", encoder)
	}
	o.locker.Lock()
	defer o.locker.Unlock()
	s := &MuxStream{
		index:     len(o.streams),
		timeBase:  enc.TimeBase(),
		MediaType: enc.Params.MediaType,
		Encoder:   enc,
	}
	if s.MediaType == types.MediaTypeVideo && !o.backend.VideoStreamTimeBase.IsZero() {
		s.timeBase = o.backend.VideoStreamTimeBase
	}
	o.streams = append(o.streams, s)
	return s, nil
}

func (o *Output) WriteHeader(ctx context.Context, opts types.Options) error {
	if err := o.backend.fail(StageWriteHeader); err != nil {
		return err
	}
	o.locker.Lock()
	defer o.locker.Unlock()
	if len(o.streams) == 0 {
		return fmt.Errorf("no streams")
	}
	o.headerCount++
	o.headerOptions = opts
	return nil
}

func (o *Output) WritePacket(ctx context.Context, pkt types.Packet) error {
	if err := o.backend.fail(StageWritePacket); err != nil {
		return err
	}
	o.locker.Lock()
	defer o.locker.Unlock()
	if o.headerCount == 0 {
		return fmt.Errorf("the header is not written")
	}
	if o.trailerCount > 0 {
		return fmt.Errorf("the trailer is already written")
	}
	o.packets = append(o.packets, WrittenPacket{
		StreamIndex: pkt.StreamIndex(),
		Pts:         pkt.Pts(),
		Dts:         pkt.Dts(),
		Size:        pkt.Size(),
	})
	return nil
}

func (o *Output) WriteTrailer(ctx context.Context) error {
	o.locker.Lock()
	defer o.locker.Unlock()
	o.trailerCount++
	return nil
}

func (o *Output) DumpFormat(ctx context.Context) {
	o.locker.Lock()
	defer o.locker.Unlock()
	o.formatDumped = true
}

func (o *Output) Close() error {
	o.locker.Lock()
	defer o.locker.Unlock()
	if !o.closed {
		o.closed = true
		o.backend.Resources.release("output")
		if o.backend.OnOutputClose != nil {
			o.backend.OnOutputClose(o.url)
		}
	}
	return nil
}

func (o *Output) Streams() []*MuxStream {
	o.locker.Lock()
	defer o.locker.Unlock()
	return append([]*MuxStream{}, o.streams...)
}

// Packets returns the packets written into the stream of the media type.
func (o *Output) Packets(mediaType types.MediaType) []WrittenPacket {
	o.locker.Lock()
	defer o.locker.Unlock()
	var result []WrittenPacket
	for _, pkt := range o.packets {
		if pkt.StreamIndex < len(o.streams) && o.streams[pkt.StreamIndex].MediaType == mediaType {
			result = append(result, pkt)
		}
	}
	return result
}

func (o *Output) HeaderCount() int {
	o.locker.Lock()
	defer o.locker.Unlock()
	return o.headerCount
}

func (o *Output) HeaderOptions() types.Options {
	o.locker.Lock()
	defer o.locker.Unlock()
	return o.headerOptions
}

func (o *Output) TrailerCount() int {
	o.locker.Lock()
	defer o.locker.Unlock()
	return o.trailerCount
}

func (o *Output) FormatDumped() bool {
	o.locker.Lock()
	defer o.locker.Unlock()
	return o.formatDumped
}

func (o *Output) IsClosed() bool {
	o.locker.Lock()
	defer o.locker.Unlock()
	return o.closed
}

package libav

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

// Packet adapts *astiav.Packet to types.Packet.
type Packet struct {
	*astiav.Packet
}

var _ types.Packet = (*Packet)(nil)

func (p *Packet) RescaleTs(src, dst types.Rational) {
	p.Packet.RescaleTs(rationalToAstiav(src), rationalToAstiav(dst))
}

func packetFromTypes(pkt types.Packet) (*astiav.Packet, bool) {
	if pkt == nil {
		return nil, true
	}
	p, ok := pkt.(*Packet)
	if !ok {
		return nil, false
	}
	return p.Packet, true
}

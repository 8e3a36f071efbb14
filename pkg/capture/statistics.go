package capture

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenrecorder",
			Name:      "frames_total",
			Help:      "Frames produced by the rescalers/resamplers.",
		},
		[]string{"media_type", "result"},
	)
	metricPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenrecorder",
			Name:      "packets_total",
			Help:      "Encoded packets handed to the muxer.",
		},
		[]string{"media_type", "result"},
	)
	metricBytesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenrecorder",
			Name:      "bytes_written_total",
			Help:      "Bytes of encoded packets written to the muxer.",
		},
		[]string{"media_type"},
	)
)

func init() {
	prometheus.MustRegister(metricFrames, metricPackets, metricBytesWritten)
}

// Statistics of one output stream during one recording.
type Statistics struct {
	FramesSkipped  atomic.Uint64
	FramesEncoded  atomic.Uint64
	FramesDropped  atomic.Uint64
	PacketsWritten atomic.Uint64
	PacketsDropped atomic.Uint64
	BytesWritten   atomic.Uint64
}

type StatisticsSnapshot struct {
	FramesSkipped  uint64
	FramesEncoded  uint64
	FramesDropped  uint64
	PacketsWritten uint64
	PacketsDropped uint64
	BytesWritten   uint64
}

func (s *Statistics) Snapshot() StatisticsSnapshot {
	return StatisticsSnapshot{
		FramesSkipped:  s.FramesSkipped.Load(),
		FramesEncoded:  s.FramesEncoded.Load(),
		FramesDropped:  s.FramesDropped.Load(),
		PacketsWritten: s.PacketsWritten.Load(),
		PacketsDropped: s.PacketsDropped.Load(),
		BytesWritten:   s.BytesWritten.Load(),
	}
}

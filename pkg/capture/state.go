package capture

import (
	"fmt"
	"sync/atomic"
)

type State int32

const (
	StateIdle = State(iota)
	StateOpening
	StateCapturing
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateCapturing:
		return "capturing"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("unexpected_state_%d", int32(s))
	}
}

type stateHolder struct {
	value atomic.Int32
}

func (h *stateHolder) State() State {
	return State(h.value.Load())
}

func (h *stateHolder) setState(s State) {
	h.value.Store(int32(s))
}

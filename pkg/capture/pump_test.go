package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type dummyStage struct {
	queue        []int
	capacity     int
	outputsPerIn int
	sendCalls    int
}

func (s *dummyStage) send(_ context.Context, in int) error {
	s.sendCalls++
	if s.capacity > 0 && len(s.queue) >= s.capacity {
		return types.ErrAgain
	}
	for i := 0; i < s.outputsPerIn; i++ {
		s.queue = append(s.queue, in*10+i)
	}
	return nil
}

func (s *dummyStage) receive(_ context.Context) (int, error) {
	if len(s.queue) == 0 {
		return 0, types.ErrAgain
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v, nil
}

func TestPumpDrainsEveryOutput(t *testing.T) {
	s := &dummyStage{outputsPerIn: 3}
	var got []int
	err := pump(context.Background(), 1, s.send, s.receive, func(v int) { got = append(got, v) })
	require.NoError(t, err)
	require.Equal(t, []int{10, 11, 12}, got)
	require.Equal(t, 1, s.sendCalls)
}

func TestPumpNoOutputIsNotAnError(t *testing.T) {
	s := &dummyStage{outputsPerIn: 0}
	err := pump(context.Background(), 1, s.send, s.receive, func(v int) { t.Fatalf("unexpected output %d", v) })
	require.NoError(t, err)
}

func TestPumpRetriesAfterDrainingPendingOutputs(t *testing.T) {
	s := &dummyStage{outputsPerIn: 1, capacity: 1, queue: []int{7}}
	var got []int
	err := pump(context.Background(), 2, s.send, s.receive, func(v int) { got = append(got, v) })
	require.NoError(t, err)
	require.Equal(t, []int{7, 20}, got)
	require.Equal(t, 2, s.sendCalls)
}

func TestPumpRejectedInputWithoutOutputs(t *testing.T) {
	s := &dummyStage{}
	err := pump(context.Background(), 1,
		func(context.Context, int) error { return types.ErrAgain },
		s.receive,
		func(int) {},
	)
	require.Error(t, err)
	require.True(t, errors.Is(err, types.ErrAgain))
}

func TestPumpPropagatesErrors(t *testing.T) {
	errBoom := errors.New("boom")
	s := &dummyStage{}
	err := pump(context.Background(), 1,
		func(context.Context, int) error { return errBoom },
		s.receive,
		func(int) {},
	)
	require.ErrorIs(t, err, errBoom)
}

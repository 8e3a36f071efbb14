package xsync

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutexDo(t *testing.T) {
	ctx := WithNoLogging(context.Background(), true)
	var (
		m       Mutex
		counter int
		wg      sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(ctx, func() {
				counter++
			})
		}()
	}
	wg.Wait()
	require.Equal(t, 100, DoR1(ctx, &m, func() int { return counter }))
	require.Equal(t, 101, DoA1R1(ctx, &m, func(add int) int { return counter + add }, 1))
}

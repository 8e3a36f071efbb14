package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/observability"
)

// signalHandler cancels the context on the first interruption; the second
// one kills the process.
func signalHandler(
	ctx context.Context,
	cancelFn context.CancelFunc,
) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	observability.Go(ctx, func() {
		sig := <-c
		logger.Infof(ctx, "received %v, finishing the recording", sig)
		cancelFn()
		sig = <-c
		logger.Errorf(ctx, "received %v again, exiting without finishing", sig)
		os.Exit(2)
	})
}

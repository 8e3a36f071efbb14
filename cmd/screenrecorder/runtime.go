package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"

	"github.com/asticode/go-astiav"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xaionaro-go/screenrecorder/pkg/astiavlogger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/libav"
	"github.com/xaionaro-go/screenrecorder/pkg/observability"
)

func initRuntime(ctx context.Context, flags Flags) {
	l := logger.FromCtx(ctx)

	astiav.SetLogLevel(libav.LogLevelToAstiav(flags.LoggerLevel))
	astiav.SetLogCallback(astiavlogger.Callback(l))

	if flags.ListenMetrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		serveHTTP(ctx, "metrics", flags.ListenMetrics, mux)
	}

	if flags.NetPprofAddr != "" {
		serveHTTP(ctx, "net/pprof", flags.NetPprofAddr, http.DefaultServeMux)
	}
}

func serveHTTP(ctx context.Context, name, addr string, handler http.Handler) {
	srv := &http.Server{Addr: addr, Handler: handler}
	observability.Go(ctx, func() {
		<-ctx.Done()
		srv.Close()
	})
	observability.Go(ctx, func() {
		logger.Infof(ctx, "starting to listen for %s requests at '%s'", name, addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "unable to serve %s at '%s': %v", name, addr, err)
		}
	})
}

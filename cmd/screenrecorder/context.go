package main

import (
	"context"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/facebookincubator/go-belt"
	xruntime "github.com/facebookincubator/go-belt/pkg/runtime"
	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	errmonsentry "github.com/facebookincubator/go-belt/tool/experimental/errmon/implementation/sentry"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	prometheusadapter "github.com/facebookincubator/go-belt/tool/experimental/metrics/implementation/prometheus"
	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/xaionaro-go/screenrecorder/pkg/observability"
	"github.com/xaionaro-go/screenrecorder/pkg/xpath"
)

const appName = "screenrecorder"

func getContext(
	ctx context.Context,
	flags Flags,
) (context.Context, context.CancelFunc) {
	observability.LogLevelFilter.SetLevel(flags.LoggerLevel)
	xruntime.DefaultCallerPCFilter = observability.CallerPCFilter(xruntime.DefaultCallerPCFilter)

	ctx, cancelFn := context.WithCancel(ctx)
	var closeFuncs []func()

	ctx = metrics.CtxWithMetrics(ctx, prometheusadapter.Default())

	ll := xlogrus.DefaultLogrusLogger()
	if formatter, ok := ll.Formatter.(*logrus.TextFormatter); ok {
		formatter.ForceColors = true
	}
	l := xlogrus.New(ll).WithLevel(logger.LevelTrace).WithPreHooks(&observability.LogLevelFilter)

	if flags.LogFile != "" {
		logPath, err := xpath.Expand(flags.LogFile)
		if err != nil {
			l.Errorf("unable to expand path '%s': %v", flags.LogFile, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
			if err != nil {
				l.Errorf("failed to open log file '%s': %v", logPath, err)
			} else {
				ll.SetOutput(io.MultiWriter(os.Stderr, f))
				closeFuncs = append(closeFuncs, func() { f.Close() })
			}
		}
	}

	logrus.SetLevel(xlogrus.LevelToLogrus(flags.LoggerLevel))

	if flags.SentryDSN != "" {
		l.Infof("setting up Sentry at DSN '%s'", flags.SentryDSN)
		sentryClient, err := sentry.NewClient(sentry.ClientOptions{
			Dsn: flags.SentryDSN,
		})
		if err != nil {
			l.Fatal(err)
		}
		sentryErrorMonitor := errmonsentry.New(sentryClient)
		ctx = errmon.CtxWithErrorMonitor(ctx, sentryErrorMonitor)
		l = l.WithPreHooks(observability.NewErrorMonitorLoggerHook(ctx, sentryErrorMonitor))
	}

	ctx = logger.CtxWithLogger(ctx, l)
	ctx = belt.WithField(ctx, "program", appName)
	if hostname, err := os.Hostname(); err == nil {
		ctx = belt.WithField(ctx, "hostname", strings.ToLower(hostname))
	}
	ctx = belt.WithField(ctx, "pid", os.Getpid())
	if u, err := user.Current(); err == nil {
		ctx = belt.WithField(ctx, "user", u.Username)
	}

	l = logger.FromCtx(ctx)
	logger.Default = func() logger.Logger {
		return l
	}

	return ctx, func() {
		cancelFn()
		belt.Flush(ctx)
		for i := len(closeFuncs) - 1; i >= 0; i-- {
			closeFuncs[i]()
		}
	}
}

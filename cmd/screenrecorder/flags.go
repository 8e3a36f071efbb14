package main

import (
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/screenrecorder/pkg/config"
)

type Flags struct {
	LoggerLevel   logger.Level
	LogFile       string
	SentryDSN     string
	ConfigPath    string
	ListenMetrics string
	NetPprofAddr  string
}

func addPersistentFlags(flags *pflag.FlagSet, dst *Flags) {
	dst.LoggerLevel = logger.LevelWarning
	flags.Var(&dst.LoggerLevel, "log-level", "log level: trace, debug, info, warning, error, panic, fatal")
	flags.StringVar(&dst.LogFile, "log-file", "", "also write the log into this file")
	flags.StringVar(&dst.SentryDSN, "sentry-dsn", "", "report errors to the Sentry at this DSN")
	flags.StringVar(&dst.ConfigPath, "config-path", config.DefaultPath, "the path to the config file")
	flags.StringVar(&dst.ListenMetrics, "listen-metrics", "", "serve prometheus metrics (/metrics) at this address")
	flags.StringVar(&dst.NetPprofAddr, "go-net-pprof-addr", "", "address to listen to for net/pprof requests")
}

type recordFlags struct {
	Output        string
	SelectOutput  bool
	Monitor       int
	X, Y          int
	Width, Height int
	FPS           int
	DesktopAudio  bool
	Mic           bool
	FramesToSkip  int
	Duration      string
	SaveConfig    bool
}

func addRecordFlags(flags *pflag.FlagSet, dst *recordFlags) {
	flags.StringVarP(&dst.Output, "output", "o", "", "the output file; the extension selects the format")
	flags.BoolVar(&dst.SelectOutput, "select-output", false, "ask for the output file with a dialog")
	flags.IntVar(&dst.Monitor, "monitor", 0, "the monitor to record")
	flags.IntVar(&dst.X, "x", 0, "the left edge of the capture area")
	flags.IntVar(&dst.Y, "y", 0, "the top edge of the capture area")
	flags.IntVar(&dst.Width, "width", 0, "the width of the capture area; the whole monitor by default")
	flags.IntVar(&dst.Height, "height", 0, "the height of the capture area; the whole monitor by default")
	flags.IntVar(&dst.FPS, "fps", 0, "frames per second")
	flags.BoolVar(&dst.DesktopAudio, "desktop-audio", false, "record what is played")
	flags.BoolVar(&dst.Mic, "mic", false, "record the microphone")
	flags.IntVar(&dst.FramesToSkip, "frames-to-skip", -1, "the amount of warm-up frames to drop")
	flags.StringVar(&dst.Duration, "duration", "", "stop after this time (like \"1m30s\"); until interrupted by default")
	flags.BoolVar(&dst.SaveConfig, "save-config", false, "save the resulting settings into the config file")
}

// apply overrides the config with the flags explicitly set by the user.
func (f recordFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.OutputPath = f.Output
	}
	if changed("monitor") {
		cfg.Monitor = f.Monitor
	}
	if changed("x") {
		cfg.Capture.Rect.X = f.X
	}
	if changed("y") {
		cfg.Capture.Rect.Y = f.Y
	}
	if changed("width") {
		cfg.Capture.Rect.Width = f.Width
	}
	if changed("height") {
		cfg.Capture.Rect.Height = f.Height
	}
	if changed("fps") {
		cfg.Capture.FPS = f.FPS
	}
	if changed("desktop-audio") {
		cfg.Capture.CaptureDesktopAudio = f.DesktopAudio
	}
	if changed("mic") {
		cfg.Capture.CaptureMic = f.Mic
	}
	if changed("frames-to-skip") {
		cfg.Capture.FramesToSkip = f.FramesToSkip
	}
}

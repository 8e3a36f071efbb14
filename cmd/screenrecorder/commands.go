package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/cobra"
	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices"
	"github.com/xaionaro-go/screenrecorder/pkg/audiodevices/pulseaudio"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/devices"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/libav"
	"github.com/xaionaro-go/screenrecorder/pkg/config"
	"github.com/xaionaro-go/screenrecorder/pkg/filepicker"
	"github.com/xaionaro-go/screenrecorder/pkg/mediahandler"
	"github.com/xaionaro-go/screenrecorder/pkg/screen"
	"github.com/xaionaro-go/screenrecorder/pkg/xpath"
)

var (
	flags       Flags
	recordFlagV recordFlags
	closeCtx    context.CancelFunc

	Root = &cobra.Command{
		Use:          appName,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx, cancelFn := getContext(cmd.Context(), flags)
			closeCtx = cancelFn
			initRuntime(ctx, flags)
			cmd.SetContext(ctx)
			logger.Debugf(ctx, "log-level: %v", flags.LoggerLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Debug(cmd.Context(), "end")
			if closeCtx != nil {
				closeCtx()
			}
		},
	}

	Record = &cobra.Command{
		Use:   "record",
		Short: "record the screen until interrupted",
		Args:  cobra.NoArgs,
		RunE:  record,
	}

	Devices = &cobra.Command{
		Use:   "devices",
		Short: "list the monitors and the audio devices",
		Args:  cobra.NoArgs,
		RunE:  listDevices,
	}

	GenerateConfig = &cobra.Command{
		Use:   "generate-config",
		Short: "write a sample config file",
		Args:  cobra.NoArgs,
		RunE:  generateConfig,
	}

	Version = &cobra.Command{
		Use:   "version",
		Short: "print the build info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printBuildInfo(cmd.OutOrStdout())
		},
	}
)

func init() {
	addPersistentFlags(Root.PersistentFlags(), &flags)
	addRecordFlags(Record.Flags(), &recordFlagV)

	Root.AddCommand(Record)
	Root.AddCommand(Devices)
	Root.AddCommand(GenerateConfig)
	Root.AddCommand(Version)
}

func configPath() (string, error) {
	return xpath.Expand(flags.ConfigPath)
}

func readConfig(ctx context.Context) (config.Config, error) {
	cfgPath, err := configPath()
	if err != nil {
		return config.Config{}, err
	}
	return config.ReadOrDefault(ctx, cfgPath)
}

func record(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := readConfig(ctx)
	if err != nil {
		return err
	}
	recordFlagV.apply(cmd, &cfg)

	var duration time.Duration
	if recordFlagV.Duration != "" {
		duration, err = time.ParseDuration(recordFlagV.Duration)
		if err != nil {
			return fmt.Errorf("invalid duration '%s': %w", recordFlagV.Duration, err)
		}
	}

	h := mediahandler.New(
		libav.NewBackend(),
		devices.NewScreenSource(cfg.Devices),
		devices.NewAudioSource(cfg.Devices),
		cfg.Capture,
	)

	switch {
	case recordFlagV.SelectOutput:
		if _, err := h.SelectOutputPath(ctx, filepicker.NewZenity()); err != nil {
			return err
		}
	case cfg.OutputPath != "":
		outputPath, err := xpath.Expand(cfg.OutputPath)
		if err != nil {
			return err
		}
		h.SetOutputPath(ctx, outputPath)
	}
	cfg.OutputPath = h.OutputPath(ctx)

	monitor, err := screen.GetBounds(cfg.Monitor)
	if err != nil {
		return err
	}
	rect := cfg.Capture.Rect
	if rect.Width <= 0 || rect.Height <= 0 {
		rect = monitor
	}
	cfg.Capture.Rect = h.ConfigWindow(ctx,
		rect.X, rect.Y, rect.Width, rect.Height,
		monitor.X+monitor.Width, monitor.Y+monitor.Height,
	)

	if recordFlagV.SaveConfig {
		cfgPath, err := configPath()
		if err != nil {
			return err
		}
		if err := config.WriteConfigToPath(ctx, cfgPath, cfg); err != nil {
			return err
		}
	}

	if err := h.StartRecord(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "recording into '%s', press Ctrl+C to stop\n", cfg.OutputPath)

	waitCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	signalHandler(waitCtx, cancelFn)
	if duration > 0 {
		var timeoutCancel context.CancelFunc
		waitCtx, timeoutCancel = context.WithTimeout(waitCtx, duration)
		defer timeoutCancel()
	}

	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for done := false; !done && h.IsRecording(); {
		select {
		case <-waitCtx.Done():
			done = true
		case <-t.C:
		}
	}

	return h.StopRecord(context.WithoutCancel(ctx))
}

func listDevices(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "monitors:")
	for _, m := range screen.Monitors() {
		fmt.Fprintf(out, "  #%d %s\n", m.ID, m.Bounds)
	}

	svc := audiodevices.NewService(pulseaudio.NewLister())
	if err := svc.Refresh(ctx); err != nil {
		return fmt.Errorf("unable to list the audio devices: %w", err)
	}
	devs := svc.Devices(ctx)
	printAudioDevices := func(title string, list []audiodevices.Device, chosen audiodevices.Device, ok bool) {
		fmt.Fprintf(out, "%s:\n", title)
		for _, dev := range list {
			mark := " "
			if ok && dev.ID == chosen.ID {
				mark = "*"
			}
			fmt.Fprintf(out, " %s %s (%s)\n", mark, dev.ID, dev.Description)
		}
	}
	desktop, ok := devs.DesktopDevice()
	printAudioDevices("desktop audio", devs.Desktop, desktop, ok)
	mic, ok := devs.MicDevice()
	printAudioDevices("microphones", devs.Mic, mic, ok)
	return nil
}

func generateConfig(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("file '%s' already exists", cfgPath)
	}
	return config.WriteConfigToPath(ctx, cfgPath, config.NewSampleConfig())
}

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/capture"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/devices"
)

const DefaultPath = "~/.screenrecorder.yaml"

type config Config

// Config is the persistent configuration of the recorder.
type Config struct {
	OutputPath string         `yaml:"output_path,omitempty"`
	Monitor    int            `yaml:"monitor"`
	Capture    capture.Config `yaml:"capture"`
	Devices    devices.Config `yaml:"devices,omitempty"`
}

func NewConfig() Config {
	return Config{
		Capture: capture.DefaultConfig(),
	}
}

func NewSampleConfig() Config {
	cfg := NewConfig()
	cfg.OutputPath = "~/out.mp4"
	cfg.Capture.CaptureDesktopAudio = true
	cfg.Capture.Rect.Width = 1280
	cfg.Capture.Rect.Height = 720
	return cfg
}

func ReadConfigFromPath(
	ctx context.Context,
	cfgPath string,
	cfg *Config,
) error {
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("unable to read file '%s': %w", cfgPath, err)
	}
	if _, err := cfg.Read(b); err != nil {
		return fmt.Errorf("unable to parse '%s': %w", cfgPath, err)
	}
	logger.Debugf(ctx, "read config from '%s'", cfgPath)
	return nil
}

// ReadOrDefault returns NewConfig if the file does not exist.
func ReadOrDefault(
	ctx context.Context,
	cfgPath string,
) (Config, error) {
	cfg := NewConfig()
	err := ReadConfigFromPath(ctx, cfgPath, &cfg)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Debugf(ctx, "config '%s' does not exist, using the defaults", cfgPath)
		return NewConfig(), nil
	default:
		return cfg, err
	}
}

func WriteConfigToPath(
	ctx context.Context,
	cfgPath string,
	cfg Config,
) error {
	pathNew := cfgPath + ".new"
	f, err := os.OpenFile(pathNew, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0640)
	if err != nil {
		return fmt.Errorf("unable to open the config file '%s': %w", pathNew, err)
	}
	_, err = cfg.WriteTo(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("unable to write the config to file '%s': %w", pathNew, err)
	}
	if err := os.Rename(pathNew, cfgPath); err != nil {
		return fmt.Errorf("cannot move '%s' to '%s': %w", pathNew, cfgPath, err)
	}
	logger.Infof(ctx, "wrote the config to '%s'", cfgPath)
	return nil
}

// Package filepicker asks the user for a file through the desktop's
// native dialogs.
package filepicker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/screenrecorder/pkg/logwriter"
	"github.com/xaionaro-go/screenrecorder/pkg/xpath"
)

var ErrCancelled = errors.New("the file selection was cancelled")

// Zenity runs `zenity --file-selection`.
type Zenity struct {
	ExecPath string
	Title    string
}

func NewZenity() *Zenity {
	return &Zenity{
		ExecPath: "zenity",
		Title:    "Set Output File",
	}
}

func (z *Zenity) args(defaultName string) []string {
	return []string{
		"--file-selection",
		"--save",
		"--confirm-overwrite",
		"--title=" + z.Title,
		"--filename=" + defaultName,
	}
}

func (z *Zenity) PickSaveFile(
	ctx context.Context,
	defaultName string,
) (_ret string, _err error) {
	logger.Debugf(ctx, "PickSaveFile(%s)", defaultName)
	defer func() { logger.Debugf(ctx, "/PickSaveFile(%s): '%s' %v", defaultName, _ret, _err) }()

	execPath, err := xpath.GetExecPath(z.ExecPath)
	if err != nil {
		return "", fmt.Errorf("unable to find '%s': %w", z.ExecPath, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, execPath, z.args(defaultName)...)
	cmd.Stdout = &stdout
	stderrLog := logwriter.New(ctx, logger.LevelDebug, "zenity: ")
	cmd.Stderr = io.MultiWriter(&stderr, stderrLog)
	err = cmd.Run()
	stderrLog.Flush()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("'%s' failed: %w: %s", execPath, err, strings.TrimSpace(stderr.String()))
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", ErrCancelled
	}
	return path, nil
}

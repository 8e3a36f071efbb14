package mediahandler

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xaionaro-go/screenrecorder/pkg/capture"
	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
	"github.com/xaionaro-go/screenrecorder/pkg/observability"
	"github.com/xaionaro-go/screenrecorder/pkg/xsync"
)

var (
	metricRecording = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "screenrecorder",
		Name:      "recording",
		Help:      "1 if a recording is in progress.",
	})
	metricSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenrecorder",
			Name:      "sessions_total",
			Help:      "Recording sessions by the result of StartRecord.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(metricRecording, metricSessions)
}

// FilePicker asks the user for the path of a file to save.
type FilePicker interface {
	PickSaveFile(ctx context.Context, defaultName string) (string, error)
}

// MediaHandler drives the recordings: one session at a time, each one
// running its frame loop in a dedicated goroutine.
type MediaHandler struct {
	Backend types.Backend
	Screen  types.ScreenSource
	Audio   types.AudioSource

	locker     xsync.Mutex
	config     capture.Config
	outputPath string
	session    *session

	keepRunning atomic.Bool
	isRecording atomic.Bool
}

type session struct {
	ID        string
	Config    capture.Config
	Lock      *LockFile
	Output    *MediaOutput
	Video     *capture.VideoCapture
	Audio     *capture.AudioCapture
	StartedAt time.Time
	done      chan struct{}
}

func New(
	backend types.Backend,
	screen types.ScreenSource,
	audio types.AudioSource,
	cfg capture.Config,
) *MediaHandler {
	return &MediaHandler{
		Backend:    backend,
		Screen:     screen,
		Audio:      audio,
		config:     cfg,
		outputPath: DefaultOutputPath(),
	}
}

func (h *MediaHandler) Config(ctx context.Context) capture.Config {
	return xsync.DoR1(ctx, &h.locker, func() capture.Config {
		return h.config
	})
}

// SetConfig affects the next recording only.
func (h *MediaHandler) SetConfig(ctx context.Context, cfg capture.Config) {
	h.locker.Do(ctx, func() {
		h.config = cfg
	})
}

func (h *MediaHandler) OutputPath(ctx context.Context) string {
	return xsync.DoR1(ctx, &h.locker, func() string {
		return h.outputPath
	})
}

// SetOutputPath sets the path of the next recording. A path with an
// unsupported extension resets it to DefaultOutputPath.
func (h *MediaHandler) SetOutputPath(ctx context.Context, path string) string {
	return xsync.DoR1(ctx, &h.locker, func() string {
		return h.setOutputPath(ctx, path)
	})
}

func (h *MediaHandler) setOutputPath(ctx context.Context, path string) string {
	normalized, err := NormalizeOutputPath(path)
	if err != nil {
		logger.Warnf(ctx, "%v; using the default output path", err)
		normalized = DefaultOutputPath()
	}
	h.outputPath = normalized
	logger.Debugf(ctx, "output path: '%s'", h.outputPath)
	return h.outputPath
}

func (h *MediaHandler) SelectOutputPath(
	ctx context.Context,
	picker FilePicker,
) (string, error) {
	path, err := picker.PickSaveFile(ctx, DefaultOutputFileName)
	if err != nil {
		return "", fmt.Errorf("unable to pick the output file: %w", err)
	}
	return h.SetOutputPath(ctx, path), nil
}

// ConfigWindow sets the capture area, clamped to the monitor.
func (h *MediaHandler) ConfigWindow(
	ctx context.Context,
	x, y, width, height int,
	monitorW, monitorH int,
) types.Rect {
	requested := types.Rect{X: x, Y: y, Width: width, Height: height}
	rect := ClampRect(requested, monitorW, monitorH)
	if rect != requested {
		logger.Warnf(ctx, "capture area changed to (%d,%d|%dx%d)", rect.X, rect.Y, rect.Width, rect.Height)
	}
	h.locker.Do(ctx, func() {
		h.config.Rect = rect
	})
	return rect
}

// ClampRect fits the rectangle into [0,monitorW]x[0,monitorH] and makes
// the dimensions even.
func ClampRect(r types.Rect, monitorW, monitorH int) types.Rect {
	x0 := max(0, min(monitorW, r.X))
	y0 := max(0, min(monitorH, r.Y))
	x1 := max(0, min(monitorW, r.X+r.Width))
	y1 := max(0, min(monitorH, r.Y+r.Height))
	return capture.EvenRect(types.Rect{
		X:      x0,
		Y:      y0,
		Width:  max(0, x1-x0),
		Height: max(0, y1-y0),
	})
}

func (h *MediaHandler) IsRecording() bool {
	return h.isRecording.Load()
}

// StartRecord stops the previous recording (if any) and starts a new one.
// On failure nothing stays acquired and no goroutine is started.
func (h *MediaHandler) StartRecord(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StartRecord")
	defer func() { logger.Debugf(ctx, "/StartRecord: %v", _err) }()

	return xsync.DoR1(ctx, &h.locker, func() error {
		if err := h.stopRecord(ctx); err != nil {
			logger.Warnf(ctx, "unable to stop the previous recording: %v", err)
		}
		err := h.startRecord(ctx)
		if err != nil {
			logger.Errorf(ctx, "unable to start recording: %v", err)
			metricSessions.WithLabelValues("failed").Inc()
			return err
		}
		metricSessions.WithLabelValues("started").Inc()
		return nil
	})
}

func (h *MediaHandler) startRecord(ctx context.Context) (_err error) {
	s := &session{
		ID:        uuid.New().String(),
		Config:    h.config.WithDefaults(),
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}
	ctx = belt.WithField(ctx, "session_id", s.ID)
	defer func() {
		if _err != nil {
			if err := s.close(ctx); err != nil {
				logger.Errorf(ctx, "unable to release the failed session: %v", err)
			}
		}
	}()

	var err error
	s.Lock, err = AcquireLock(h.outputPath)
	if err != nil {
		return err
	}

	s.Output, err = newMediaOutput(ctx, h.Backend, h.outputPath, s.Config.Rect)
	if err != nil {
		return err
	}
	if s.Config.AudioEnabled() && !s.Output.SupportsAudio {
		logger.Infof(ctx, "format '%s' has no audio, recording video only", s.Output.FormatName())
		s.Config.CaptureDesktopAudio = false
		s.Config.CaptureMic = false
	}

	s.Video = capture.NewVideoCapture(h.Backend, h.Screen, s.Config)
	if err := s.Video.OpenCapture(ctx, s.Output.Output, s.Config.Rect); err != nil {
		return fmt.Errorf("unable to open the video capture: %w", err)
	}

	if s.Config.AudioEnabled() {
		s.Audio = capture.NewAudioCapture(h.Backend, h.Audio, s.Config)
		if err := s.Audio.OpenCapture(ctx, s.Output.Output); err != nil {
			return fmt.Errorf("unable to open the audio capture: %w", err)
		}
	}

	s.Output.DumpFormat(ctx)
	if err := s.Output.WriteHeader(ctx); err != nil {
		return err
	}

	logger.Infof(ctx, "recording %s into '%s'", s.Config.Rect, h.outputPath)
	h.session = s
	h.keepRunning.Store(true)
	h.isRecording.Store(true)
	metricRecording.Set(1)
	workerCtx := context.WithoutCancel(ctx)
	observability.Go(workerCtx, func() {
		defer close(s.done)
		h.record(workerCtx, s)
	})
	return nil
}

// record is the frame loop of a session.
func (h *MediaHandler) record(ctx context.Context, s *session) {
	logger.Debugf(ctx, "record")
	defer logger.Debugf(ctx, "/record")

	videoActive := true
	audioActive := s.Audio != nil
	for i := 0; h.keepRunning.Load() && (videoActive || audioActive); i++ {
		skip := i < s.Config.FramesToSkip
		if videoActive {
			videoActive = s.Video.WriteFrame(ctx, skip)
		}
		if audioActive {
			audioActive = s.Audio.WriteFrame(ctx, skip)
		}
	}

	s.Video.Flush(ctx)
	if s.Audio != nil {
		s.Audio.Flush(ctx)
	}
	if err := s.Output.WriteTrailer(ctx); err != nil {
		logger.Errorf(ctx, "%v", err)
	}
	// the file must be complete before another program may take the lock
	if err := s.Output.Close(); err != nil {
		logger.Errorf(ctx, "%v", err)
	}
	if err := s.Lock.Release(); err != nil {
		logger.Errorf(ctx, "%v", err)
	}
	s.Lock = nil
	h.isRecording.Store(false)
	metricRecording.Set(0)
}

// StopRecord waits for the frame loop to end and releases the session.
// It is a no-op if nothing is being recorded.
func (h *MediaHandler) StopRecord(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StopRecord")
	defer func() { logger.Debugf(ctx, "/StopRecord: %v", _err) }()
	return xsync.DoR1(ctx, &h.locker, func() error {
		return h.stopRecord(ctx)
	})
}

func (h *MediaHandler) stopRecord(ctx context.Context) error {
	s := h.session
	if s == nil {
		return nil
	}
	h.session = nil
	ctx = belt.WithField(ctx, "session_id", s.ID)

	h.keepRunning.Store(false)
	<-s.done

	err := s.close(ctx)
	s.logSummary(ctx)
	return err
}

// close releases everything in reverse order of acquisition; it tolerates
// a partially opened session.
func (s *session) close(ctx context.Context) error {
	var mErr *multierror.Error
	if s.Audio != nil {
		if err := s.Audio.CloseCapture(ctx); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	if s.Video != nil {
		if err := s.Video.CloseCapture(ctx); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	if err := s.Output.Close(); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	if err := s.Lock.Release(); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	s.Lock = nil
	return mErr.ErrorOrNil()
}

func (s *session) logSummary(ctx context.Context) {
	video := s.Video.Statistics()
	var audio capture.StatisticsSnapshot
	if s.Audio != nil {
		audio = s.Audio.Statistics()
	}
	size := "unknown size"
	if s.Output != nil {
		if info, err := os.Stat(s.Output.Path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
	}
	logger.Infof(ctx,
		"recorded %s (%s) in %s: video %d frames (%d dropped), audio %d frames (%d dropped)",
		s.Output.Path, size, time.Since(s.StartedAt).Round(time.Millisecond),
		video.FramesEncoded, video.FramesDropped+video.PacketsDropped,
		audio.FramesEncoded, audio.FramesDropped+audio.PacketsDropped,
	)
}

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	apperrors "speech-whisper/internal/app/errors"
)

const (
	BackendFFmpeg  = "ffmpeg"
	BackendArecord = "arecord"
)

// Format describes the PCM stream a Device must produce. Samples are always
// signed 16-bit little endian.
type Format struct {
	SampleRate int
	Channels   int
}

// BytesPerSecond is the raw s16le data rate.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

// Device records raw PCM for a fixed duration.
type Device interface {
	Record(ctx context.Context, format Format, duration time.Duration) ([]byte, error)
	Name() string
}

// DeviceConfig selects and configures an exec-backed Device.
type DeviceConfig struct {
	Backend     string
	BinaryPath  string
	InputFormat string
	InputDevice string
}

// ExecDevice records by running ffmpeg or arecord and reading raw PCM from stdout.
type ExecDevice struct {
	config DeviceConfig
}

// NewExecDevice fills platform defaults for the chosen backend.
func NewExecDevice(config DeviceConfig) (*ExecDevice, error) {
	switch config.Backend {
	case "", BackendFFmpeg:
		config.Backend = BackendFFmpeg
		if config.InputFormat == "" {
			config.InputFormat, config.InputDevice = defaultFFmpegInput(runtime.GOOS, config.InputDevice)
		}
		if config.InputDevice == "" {
			_, config.InputDevice = defaultFFmpegInput(runtime.GOOS, "")
		}
	case BackendArecord:
		if config.InputDevice == "" {
			config.InputDevice = "default"
		}
	default:
		return nil, apperrors.InvalidField("capture.backend", fmt.Sprintf("unknown backend %q", config.Backend))
	}
	if config.BinaryPath == "" {
		config.BinaryPath = config.Backend
	}
	return &ExecDevice{config: config}, nil
}

func defaultFFmpegInput(goos, device string) (string, string) {
	switch goos {
	case "darwin":
		if device == "" {
			device = ":0"
		}
		return "avfoundation", device
	case "windows":
		if device == "" {
			device = "audio=default"
		}
		return "dshow", device
	default:
		if device == "" {
			device = "default"
		}
		return "alsa", device
	}
}

// Name implements Device.
func (d *ExecDevice) Name() string {
	return d.config.Backend + ":" + d.config.InputDevice
}

// Args returns the command line used to record.
func (d *ExecDevice) Args(format Format, duration time.Duration) []string {
	secs := strconv.FormatFloat(duration.Seconds(), 'f', -1, 64)
	rate := strconv.Itoa(format.SampleRate)
	channels := strconv.Itoa(format.Channels)

	if d.config.Backend == BackendArecord {
		return []string{
			"-q", "-D", d.config.InputDevice,
			"-f", "S16_LE", "-c", channels, "-r", rate,
			"-d", strconv.Itoa(int(duration.Round(time.Second) / time.Second)),
			"-t", "raw", "-",
		}
	}

	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", d.config.InputFormat, "-i", d.config.InputDevice,
		"-t", secs,
		"-ac", channels, "-ar", rate,
		"-acodec", "pcm_s16le", "-f", "s16le", "-",
	}
}

// Record implements Device.
func (d *ExecDevice) Record(ctx context.Context, format Format, duration time.Duration) ([]byte, error) {
	cmd := exec.CommandContext(ctx, d.config.BinaryPath, d.Args(format, duration)...)

	var stdout, stderr bytes.Buffer
	stdout.Grow(int(duration.Seconds()+1) * format.BytesPerSecond())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s not found: %w", d.config.BinaryPath, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %s: %w", d.config.Backend, msg, err)
		}
		return nil, fmt.Errorf("%s failed: %w", d.config.Backend, err)
	}

	return stdout.Bytes(), nil
}

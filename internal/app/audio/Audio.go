package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
)

// FFmpeg wraps the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpeg returns an FFmpeg using the given binaries, defaulting to $PATH lookups.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Probe runs ffprobe and reports the first audio stream plus container duration.
func (f *FFmpeg) Probe(ctx context.Context, filePath string) (*model.AudioInfo, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath, "-v", "error", "-print_format", "json", "-show_streams", "-show_format", filePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, toolError(ctx, err, "ffprobe", stderr.String())
	}

	return ParseProbeOutput(output)
}

// ParseProbeOutput converts ffprobe JSON into AudioInfo. Output without an
// audio stream is a decode error.
func ParseProbeOutput(output []byte) (*model.AudioInfo, error) {
	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindDecode, "unreadable ffprobe output")
	}

	for _, stream := range probeOutput.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		return &model.AudioInfo{
			Container:  probeOutput.Format.FormatName,
			SampleRate: stream.SampleRate,
			Channels:   stream.Channels,
			BitDepth:   stream.BitsPerSample,
			Duration:   time.Duration(probeOutput.Format.Duration * float64(time.Second)),
		}, nil
	}

	return nil, apperrors.NewKind(apperrors.KindDecode, "no audio stream found")
}

// ConvertTo16kHzMonoWav transcodes any ffmpeg-readable input into the
// 16 kHz mono s16le WAV that whisper.cpp expects.
func (f *FFmpeg) ConvertTo16kHzMonoWav(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", inputPath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return toolError(ctx, err, "ffmpeg", stderr.String())
	}
	return nil
}

// toolError classifies a failed external tool run. A killed run reports
// "signal: killed", so cancellation is read from ctx and returned as is.
// A missing binary is a configuration problem; anything else means the
// input could not be decoded.
func toolError(ctx context.Context, err error, tool string, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return apperrors.Wrapf(err, apperrors.KindConfig, "%s not found", tool)
	}
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return apperrors.Wrapf(err, apperrors.KindDecode, "%s error: %s", tool, stderr)
	}
	return apperrors.Wrapf(err, apperrors.KindDecode, "%s error", tool)
}

package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"time"

	"go.uber.org/zap"

	"speech-whisper/internal/app/audio"
	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/util/files"
)

// shortfallTolerance is how much audio a device may come up short by
// (one read buffer) before the recording counts as failed.
const shortfallTolerance = 100 * time.Millisecond

// Limits bounds the accepted recording duration in whole seconds.
type Limits struct {
	MinDurationSec int
	MaxDurationSec int
}

// Source produces audio assets from the microphone or from uploaded bytes.
type Source struct {
	device Device
	limits Limits
	logger *zap.Logger
}

// NewSource creates a Source.
func NewSource(device Device, limits Limits, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{device: device, limits: limits, logger: logger}
}

// CaptureFromMicrophone records durationSec seconds of mono 16-bit audio and
// writes it as a WAV file at outputPath. It blocks for the full duration.
func (s *Source) CaptureFromMicrophone(ctx context.Context, durationSec int, sampleRate int, outputPath string) (*model.AudioAsset, error) {
	if durationSec < s.limits.MinDurationSec || durationSec > s.limits.MaxDurationSec {
		return nil, apperrors.OutOfRange(apperrors.KindCapture, "duration", s.limits.MinDurationSec, s.limits.MaxDurationSec)
	}
	if sampleRate <= 0 {
		return nil, apperrors.Newf(apperrors.KindCapture, "sample rate must be positive, got %d", sampleRate)
	}
	if s.device == nil {
		return nil, apperrors.NewKind(apperrors.KindCapture, "no capture device configured")
	}

	format := Format{SampleRate: sampleRate, Channels: 1}
	duration := time.Duration(durationSec) * time.Second

	s.logger.Info("recording",
		zap.String("device", s.device.Name()),
		zap.Int("duration_sec", durationSec),
		zap.Int("sample_rate", sampleRate))

	raw, err := s.device.Record(ctx, format, duration)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindCapture, "recording failed")
	}

	samples, err := normalizeSamples(raw, durationSec*sampleRate, sampleRate)
	if err != nil {
		return nil, err
	}

	if err := audio.WriteMonoWav(outputPath, samples, sampleRate); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindCapture, "failed to write recording")
	}

	asset := &model.AudioAsset{
		Path:       outputPath,
		Origin:     model.OriginRecorded,
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   16,
		Duration:   duration,
		Size:       int64(44 + 2*len(samples)),
	}
	s.logger.Debug("recording saved", zap.String("path", outputPath), zap.Int("samples", len(samples)))
	return asset, nil
}

// normalizeSamples decodes s16le bytes and fixes the count at want: extra
// samples are trimmed, a shortfall within one read buffer is padded with
// silence, anything larger is a capture failure.
func normalizeSamples(raw []byte, want int, sampleRate int) ([]int, error) {
	got := len(raw) / 2
	tolerance := int(time.Duration(sampleRate) * shortfallTolerance / time.Second)

	if got < want-tolerance {
		return nil, apperrors.Newf(apperrors.KindCapture,
			"device returned %d of %d samples", got, want)
	}

	samples := make([]int, want)
	for i := 0; i < want && i < got; i++ {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}
	return samples, nil
}

// AcceptUpload writes r verbatim to outputPath. The content is not validated.
func (s *Source) AcceptUpload(ctx context.Context, r io.Reader, outputPath string) (*model.AudioAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "upload cancelled")
	}

	n, err := files.CopyToFileAtomic(outputPath, &contextReader{ctx: ctx, r: r})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "failed to store upload")
	}

	s.logger.Debug("upload stored", zap.String("path", outputPath), zap.Int64("bytes", n))
	return &model.AudioAsset{
		Path:   outputPath,
		Origin: model.OriginUploaded,
		Size:   n,
	}, nil
}

// AcceptUploadBytes is AcceptUpload for an in-memory payload.
func (s *Source) AcceptUploadBytes(raw []byte, outputPath string) (*model.AudioAsset, error) {
	n, err := files.CopyToFileAtomic(outputPath, bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "failed to store upload")
	}
	return &model.AudioAsset{
		Path:   outputPath,
		Origin: model.OriginUploaded,
		Size:   n,
	}, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

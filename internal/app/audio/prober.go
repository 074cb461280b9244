package audio

import (
	"context"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
)

// Prober reports what is inside an audio file, or a decode error when the
// file cannot be transcribed.
type Prober interface {
	Probe(ctx context.Context, path string) (*model.AudioInfo, error)
}

// containerTypes are non-audio/* MIME types that still carry audio ffmpeg can decode.
var containerTypes = []string{
	"video/mp4",
	"video/quicktime",
	"video/webm",
	"video/x-matroska",
	"video/3gpp",
	"application/ogg",
}

// FileProber sniffs content, inspects WAV natively and hands everything else to ffprobe.
type FileProber struct {
	ffmpeg *FFmpeg
}

// NewFileProber creates a FileProber.
func NewFileProber(ffmpeg *FFmpeg) *FileProber {
	return &FileProber{ffmpeg: ffmpeg}
}

// Probe implements Prober.
func (p *FileProber) Probe(ctx context.Context, path string) (*model.AudioInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "audio file unavailable")
	}
	if stat.Size() == 0 {
		return nil, apperrors.ErrEmptyAudio
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "failed to read audio file")
	}
	if !IsAudioContainer(mtype) {
		return nil, apperrors.Newf(apperrors.KindDecode, "unsupported content type %s", mtype.String())
	}

	if mtype.Is("audio/wav") {
		return InspectWav(path)
	}

	info, err := p.ffmpeg.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.Container == "" {
		info.Container = mtype.Extension()
	}
	return info, nil
}

// IsAudioContainer reports whether the sniffed type (or one of its parents)
// is something ffmpeg can pull an audio stream from.
func IsAudioContainer(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		name := m.String()
		if strings.HasPrefix(name, "audio/") || lo.Contains(containerTypes, name) {
			return true
		}
	}
	return false
}

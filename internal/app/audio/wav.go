package audio

import (
	"fmt"
	"io"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/util/files"
)

const pcmFormat = 1

// WriteMonoWav writes 16-bit mono samples as a canonical PCM WAV file.
// The file appears at path only once it is complete.
func WriteMonoWav(path string, samples []int, sampleRate int) error {
	return files.WriteFileAtomic(path, 0o644, func(f *os.File) error {
		return EncodeMonoWav(f, samples, sampleRate)
	})
}

// EncodeMonoWav encodes samples into w.
func EncodeMonoWav(w io.WriteSeeker, samples []int, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, pcmFormat)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav header: %w", err)
	}
	return nil
}

// InspectWav reads the header of a WAV file.
func InspectWav(path string) (*model.AudioInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "failed to open wav file")
	}
	defer f.Close()

	return DecodeWavInfo(f)
}

// DecodeWavInfo reads format and duration from a WAV stream. The duration
// comes from the size of the data chunk alone.
func DecodeWavInfo(r io.ReadSeeker) (*model.AudioInfo, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, apperrors.NewKind(apperrors.KindDecode, "invalid wav header")
	}

	if err := d.FwdToPCM(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindDecode, "wav file has no readable PCM data")
	}

	bytesPerSecond := int64(d.SampleRate) * int64(d.NumChans) * int64(d.BitDepth) / 8
	if bytesPerSecond == 0 {
		return nil, apperrors.NewKind(apperrors.KindDecode, "wav header has a zero byte rate")
	}

	return &model.AudioInfo{
		Container:  "wav",
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   time.Duration(d.PCMLen()) * time.Second / time.Duration(bytesPerSecond),
	}, nil
}

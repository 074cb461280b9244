package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "speech-whisper/internal/app/errors"
	"speech-whisper/internal/app/model"
	"speech-whisper/internal/app/util/files"
)

// DefaultFileName is used when Save or Open get an empty name.
const DefaultFileName = "transcription.txt"

// Store persists transcript text as UTF-8 files in a single directory.
// Saves replace the whole file; there is no locking between writers.
type Store struct {
	dir         string
	defaultName string
	logger      *zap.Logger
}

// New creates a Store rooted at dir. defaultName overrides
// DefaultFileName when non-empty.
func New(dir, defaultName string, logger *zap.Logger) *Store {
	if defaultName == "" {
		defaultName = DefaultFileName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, defaultName: defaultName, logger: logger}
}

// Dir returns the directory transcripts are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes text to fileName, replacing any previous content.
func (s *Store) Save(text string, fileName string) (*model.TranscriptFile, error) {
	path, err := s.resolve(fileName)
	if err != nil {
		return nil, err
	}
	if err := files.EnsureDir(s.dir); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "cannot create transcript directory")
	}

	content := strings.ToValidUTF8(text, "�")
	err = files.WriteFileAtomic(path, 0o644, func(f *os.File) error {
		_, werr := io.WriteString(f, content)
		return werr
	})
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindIO, "failed to write transcript %s", filepath.Base(path))
	}

	file, err := stat(path)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transcript saved", zap.String("path", path), zap.Int64("bytes", file.Size))
	return file, nil
}

// Open returns a reader over a saved transcript. The caller closes it.
func (s *Store) Open(fileName string) (io.ReadCloser, *model.TranscriptFile, error) {
	path, err := s.resolve(fileName)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.Wrap(err, apperrors.KindIO, apperrors.ErrNoTranscript.Message())
		}
		return nil, nil, apperrors.Wrap(err, apperrors.KindIO, "failed to open transcript")
	}
	file, err := stat(path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, file, nil
}

// Read returns the content of a saved transcript.
func (s *Store) Read(fileName string) (string, error) {
	rc, _, err := s.Open(fileName)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindIO, "failed to read transcript")
	}
	return string(data), nil
}

func (s *Store) resolve(fileName string) (string, error) {
	if fileName == "" {
		fileName = s.defaultName
	}
	if !files.IsPlainFileName(fileName) {
		return "", apperrors.Newf(apperrors.KindIO, "transcript name %q must be a plain file name", fileName)
	}
	return filepath.Join(s.dir, fileName), nil
}

func stat(path string) (*model.TranscriptFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindIO, "failed to stat transcript")
	}
	return &model.TranscriptFile{
		Name:    info.Name(),
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

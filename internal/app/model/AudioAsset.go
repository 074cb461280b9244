package model

import "time"

// AssetOrigin tells where an audio asset came from.
type AssetOrigin string

const (
	OriginRecorded AssetOrigin = "recorded"
	OriginUploaded AssetOrigin = "uploaded"
)

// AudioAsset references an audio file handed from capture/upload to
// transcription. Format fields stay zero for uploads until the file is probed.
type AudioAsset struct {
	Path       string
	Origin     AssetOrigin
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	Size       int64
}

// AudioInfo is what probing an audio file reports.
type AudioInfo struct {
	Container  string
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Is16kHzMonoPCM reports whether the audio is already in whisper.cpp's native input format.
func (i AudioInfo) Is16kHzMonoPCM() bool {
	return i.SampleRate == 16000 && i.Channels == 1 && i.BitDepth == 16
}

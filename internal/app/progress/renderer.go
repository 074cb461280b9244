package progress

import (
	"fmt"
	"sync"

	"speech-whisper/internal/app/pipeline"
)

// Renderer draws pipeline status changes as a countdown while recording
// and a spinner while uploading or transcribing.
type Renderer struct {
	manager *Manager

	mu      sync.Mutex
	current *Bar
	shown   pipeline.Indicator
}

func NewRenderer(manager *Manager) *Renderer {
	return &Renderer{manager: manager}
}

// Observe is a pipeline.OnStatus callback.
func (r *Renderer) Observe(s pipeline.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Indicator == r.shown {
		return
	}

	switch s.Indicator {
	case pipeline.IndicatorRecording:
		r.replace(r.manager.Countdown(s.DurationSec, fmt.Sprintf("Recording %ds", s.DurationSec)))
	case pipeline.IndicatorUploading:
		r.replace(r.manager.Spinner("Receiving audio"))
	case pipeline.IndicatorTranscribing:
		r.replace(r.manager.Spinner("Transcribing"))
	case pipeline.IndicatorSuccess, pipeline.IndicatorIdle:
		r.replace(nil)
	case pipeline.IndicatorError:
		if r.current != nil {
			r.current.Abort()
			r.current = nil
		}
	}
	r.shown = s.Indicator
}

// replace completes the bar on screen and shows next, if any.
func (r *Renderer) replace(next *Bar) {
	if r.current != nil {
		r.current.Complete()
	}
	r.current = next
}

// Close finishes whatever is still on screen and waits for rendering.
func (r *Renderer) Close() {
	r.mu.Lock()
	if r.current != nil {
		r.current.Abort()
		r.current = nil
	}
	r.mu.Unlock()
	r.manager.Wait()
}

package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type Config struct {
	Enabled bool
	Writer  io.Writer
}

// Manager owns the mpb container all bars render into.
type Manager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

// Bar is a countdown or spinner; a disabled Bar ignores every call.
type Bar struct {
	bar     *mpb.Bar
	enabled bool
	total   int64
	stop    chan struct{}
	once    sync.Once
}

func NewManager(config Config) *Manager {
	if !config.Enabled {
		return &Manager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithWaitGroup(&sync.WaitGroup{}),
	)

	return &Manager{
		container: container,
		enabled:   true,
	}
}

// Countdown adds a bar that fills over seconds, one tick per second.
func (m *Manager) Countdown(seconds int, description string) *Bar {
	if !m.enabled || m.container == nil || seconds <= 0 {
		return &Bar{enabled: false}
	}

	m.mu.Lock()
	bar := m.container.AddBar(int64(seconds),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%ds/%ds", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), " ✓ "),
		),
	)
	m.mu.Unlock()

	b := &Bar{bar: bar, enabled: true, total: int64(seconds), stop: make(chan struct{})}
	go b.tick(time.Second)
	return b
}

// Spinner adds an indeterminate bar that runs until completed.
func (m *Manager) Spinner(description string) *Bar {
	if !m.enabled || m.container == nil {
		return &Bar{enabled: false}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bar := m.container.New(0,
		mpb.SpinnerStyle().PositionLeft(),
		mpb.AppendDecorators(
			decor.Name(description+" "),
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO), " ✓ "),
		),
	)
	return &Bar{bar: bar, enabled: true}
}

func (b *Bar) tick(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			// Leave the last tick to Complete so a slow device never shows 100% early.
			if b.bar.Current() < b.total-1 {
				b.bar.Increment()
			}
		}
	}
}

// Complete finishes the bar.
func (b *Bar) Complete() {
	if !b.enabled || b.bar == nil {
		return
	}
	b.halt()
	if b.total > 0 {
		b.bar.SetCurrent(b.total)
		return
	}
	b.bar.SetTotal(-1, true)
}

// Abort stops the bar and leaves it on screen.
func (b *Bar) Abort() {
	if !b.enabled || b.bar == nil {
		return
	}
	b.halt()
	b.bar.Abort(false)
}

func (b *Bar) halt() {
	b.once.Do(func() {
		if b.stop != nil {
			close(b.stop)
		}
	})
}

func (m *Manager) Wait() {
	if m.enabled && m.container != nil {
		m.container.Wait()
	}
}

func (m *Manager) Shutdown() {
	if m.enabled && m.container != nil {
		m.container.Shutdown()
	}
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr)
}

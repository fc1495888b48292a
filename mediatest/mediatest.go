package mediatest

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"sync"

	"go.jacobcolvin.com/beatvid/frame"
	"go.jacobcolvin.com/beatvid/writer"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// Backend is an in-memory [writer.Backend]. Each opened sink creates an
// empty file at its path so callers can observe cleanup.
type Backend struct {
	// OpenErr, if set, is returned from Open.
	OpenErr error

	// FinishErr, if set, is returned from Finish.
	FinishErr error

	// FailAt is the frame index whose Append fails. Negative disables it.
	FailAt int

	// Manual makes sinks deliver readiness only through [Sink.Pulse].
	Manual bool

	mu    sync.Mutex
	sinks []*Sink
}

// NewBackend creates a [Backend] that never fails.
func NewBackend() *Backend {
	return &Backend{FailAt: -1}
}

// Ext implements [writer.Backend].
func (b *Backend) Ext() string { return ".mem" }

// Open implements [writer.Backend].
func (b *Backend) Open(_ context.Context, path string, p writer.Profile) (writer.Sink, error) {
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}

	f, err := os.Create(path) //nolint:gosec // Test paths.
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	s := &Sink{
		Path:    path,
		Profile: p,
		file:    f,
		ready:   make(chan struct{}),
		backend: b,
	}
	if !b.Manual {
		s.ready = nil
	}

	b.mu.Lock()
	b.sinks = append(b.sinks, s)
	b.mu.Unlock()

	return s, nil
}

// Sinks returns every sink opened so far.
func (b *Backend) Sinks() []*Sink {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]*Sink(nil), b.sinks...)
}

// Sink records everything appended to it.
type Sink struct {
	Profile writer.Profile
	file    io.WriteCloser
	ready   chan struct{}
	backend *Backend
	Path    string
	pts     []writer.Time
	mu      sync.Mutex

	finished bool
	aborted  bool
}

// Ready implements [writer.Sink].
func (s *Sink) Ready() <-chan struct{} {
	if s.ready == nil {
		return writer.AlwaysReady()
	}

	return s.ready
}

// Pulse delivers one readiness token to a manual sink. It blocks until the
// writer takes it.
func (s *Sink) Pulse() {
	s.ready <- struct{}{}
}

// Append implements [writer.Sink].
func (s *Sink) Append(buf *frame.PixelBuffer, pts writer.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend.FailAt >= 0 && len(s.pts) == s.backend.FailAt {
		return ErrInjected
	}

	if buf == nil {
		return errors.New("nil buffer")
	}

	s.pts = append(s.pts, pts)

	_, err := s.file.Write(buf.Pix[:4])
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// Finish implements [writer.Sink].
func (s *Sink) Finish(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend.FinishErr != nil {
		return s.backend.FinishErr
	}

	s.finished = true

	return s.file.Close()
}

// Abort implements [writer.Sink].
func (s *Sink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aborted = true

	return s.file.Close()
}

// PTS returns the presentation times appended so far.
func (s *Sink) PTS() []writer.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]writer.Time(nil), s.pts...)
}

// Finished reports whether Finish succeeded.
func (s *Sink) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.finished
}

// Aborted reports whether Abort was called.
func (s *Sink) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.aborted
}

// Source is a [writer.Source] of solid frames.
type Source struct {
	// Unavailable maps a frame index to how many times it reports
	// [frame.ErrUnavailable] before succeeding. A negative count means
	// forever.
	Unavailable map[int]int

	// Err, if set, is returned for every frame.
	Err error

	buf   *frame.PixelBuffer
	mu    sync.Mutex
	calls map[int]int
}

// NewSource creates a [Source] of w x h frames filled with c.
func NewSource(w, h int, c color.RGBA) *Source {
	buf := frame.NewPixelBuffer(w, h)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = c.B
		buf.Pix[i+1] = c.G
		buf.Pix[i+2] = c.R
		buf.Pix[i+3] = c.A
	}

	return &Source{buf: buf, calls: map[int]int{}}
}

// At implements [writer.Source].
func (s *Source) At(n int) (*frame.PixelBuffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[n]++

	if s.Err != nil {
		return nil, s.Err
	}

	left, ok := s.Unavailable[n]
	if ok && left != 0 {
		if left > 0 {
			s.Unavailable[n] = left - 1
		}

		return nil, fmt.Errorf("%w: frame %d", frame.ErrUnavailable, n)
	}

	return s.buf, nil
}

// Calls returns how many times frame n was requested.
func (s *Source) Calls(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[n]
}

// Merger is a fake audio/video merger. It copies the video to the output
// path.
type Merger struct {
	// Err, if set, is returned from Merge.
	Err error

	mu    sync.Mutex
	calls [][3]string
}

// Merge copies video to out, or returns m.Err. onProgress, if not nil, is
// called halfway and on completion.
func (m *Merger) Merge(ctx context.Context, video, audio, out string, onProgress func(float64)) error {
	m.mu.Lock()
	m.calls = append(m.calls, [3]string{video, audio, out})
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	if onProgress != nil {
		onProgress(0.5)
	}

	data, err := os.ReadFile(video) //nolint:gosec // Test paths.
	if err != nil {
		return fmt.Errorf("read video: %w", err)
	}

	err = os.WriteFile(out, data, 0o600)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if onProgress != nil {
		onProgress(1)
	}

	return nil
}

// Calls returns the (video, audio, out) arguments of every Merge call.
func (m *Merger) Calls() [][3]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][3]string(nil), m.calls...)
}

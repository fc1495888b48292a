package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-audio/wav"

	"go.jacobcolvin.com/beatvid/ffmpeg"
)

var (
	// ErrNotFound indicates the audio file does not exist.
	ErrNotFound = errors.New("audio file not found")
	// ErrUnsupported indicates the duration of the file could not be
	// determined.
	ErrUnsupported = errors.New("unsupported audio file")
)

// Prober reports media metadata. It is implemented by [ffmpeg.Executor].
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.Info, error)
}

// Loader resolves audio assets.
//
// Create instances with [NewLoader].
type Loader struct {
	prober Prober
	logger *slog.Logger
}

// Option configures a [Loader].
type Option func(*Loader)

// WithProber sets the [Prober] consulted first. Without one only WAV files
// are understood.
func WithProber(p Prober) Option {
	return func(l *Loader) {
		l.prober = p
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a [Loader].
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Duration returns the playback duration of the audio file at path.
//
// The prober is asked first. If it is missing, fails, or finds no audio
// stream, the file is read as WAV.
func (l *Loader) Duration(ctx context.Context, path string) (time.Duration, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	if l.prober != nil {
		info, err := l.prober.Probe(ctx, path)

		switch {
		case err != nil:
			l.logger.Debug("probe failed, trying wav", slog.String("path", path), slog.Any("err", err))
		case !info.HasAudio():
			l.logger.Debug("no audio stream, trying wav", slog.String("path", path))
		case info.Duration > 0:
			return info.Duration, nil
		}
	}

	return WAVDuration(path)
}

// WAVDuration returns the duration of the PCM data in the WAV file at path.
func WAVDuration(path string) (time.Duration, error) {
	f, err := os.Open(path) //nolint:gosec // User-selected audio file.
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read only.

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return 0, fmt.Errorf("%w: %s is not a WAV file", ErrUnsupported, path)
	}

	err = d.FwdToPCM()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrUnsupported, path, err)
	}

	if d.AvgBytesPerSec == 0 {
		return 0, fmt.Errorf("%w: %s has no byte rate", ErrUnsupported, path)
	}

	return time.Duration(d.PCMLen() * int64(time.Second) / int64(d.AvgBytesPerSec)), nil
}

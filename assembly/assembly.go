package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.jacobcolvin.com/beatvid/ffmpeg"
	"go.jacobcolvin.com/beatvid/media"
	"go.jacobcolvin.com/beatvid/writer"
)

// WriteWeight is the share of overall progress given to writing the silent
// video. Merging covers the rest.
const WriteWeight = 0.95

// Merger muxes a silent video and an audio file into one output file.
// It is implemented by [ffmpeg.Executor].
type Merger interface {
	Merge(ctx context.Context, video, audio, out string, onProgress func(float64)) error
}

// AudioSource reports the duration of an audio file. It is implemented by
// [media.Loader].
type AudioSource interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Progress is one report about a running [Job].
//
// While Finished is false, Fraction never decreases. The terminal report has
// Finished set and either OutputPath (with Fraction exactly 1) or Err.
type Progress struct {
	Err        error
	OutputPath string
	Fraction   float64
	Finished   bool
}

// Assembler turns a frame source and an audio file into a finished video.
//
// Create instances with [New].
type Assembler struct {
	backend       writer.Backend
	merger        Merger
	audio         AudioSource
	logger        *slog.Logger
	now           func() time.Time
	tempDir       string
	profile       writer.Profile
	maxRetries    int
	retryInterval time.Duration
	keepTemp      bool
}

// Option configures an [Assembler].
type Option func(*Assembler)

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = l
	}
}

// WithTempDir sets where silent videos are written. The default is
// [os.TempDir].
func WithTempDir(dir string) Option {
	return func(a *Assembler) {
		a.tempDir = dir
	}
}

// WithProfile sets the video profile. The default is
// [writer.DefaultProfile].
func WithProfile(p writer.Profile) Option {
	return func(a *Assembler) {
		a.profile = p
	}
}

// WithMaxRetries sets how often one unavailable frame is retried.
func WithMaxRetries(n int) Option {
	return func(a *Assembler) {
		a.maxRetries = n
	}
}

// WithRetryInterval sets the pause between retries of an unavailable frame.
func WithRetryInterval(d time.Duration) Option {
	return func(a *Assembler) {
		a.retryInterval = d
	}
}

// WithKeepTemp keeps the silent video after the job ends.
func WithKeepTemp(keep bool) Option {
	return func(a *Assembler) {
		a.keepTemp = keep
	}
}

// WithClock sets the clock used to name output files.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// New creates an [Assembler] that writes frames through backend, muxes with
// merger and reads audio durations from audio.
func New(backend writer.Backend, merger Merger, audio AudioSource, opts ...Option) *Assembler {
	a := &Assembler{
		backend:       backend,
		merger:        merger,
		audio:         audio,
		logger:        slog.Default(),
		now:           time.Now,
		tempDir:       os.TempDir(),
		profile:       writer.DefaultProfile,
		maxRetries:    writer.DefaultMaxRetries,
		retryInterval: writer.DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Job is one running video export.
type Job struct {
	err    error
	done   chan struct{}
	ID     string
	Audio  string
	OutDir string
	path   string
}

// Done is closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job ends and returns the output path or the error.
func (j *Job) Wait() (string, error) {
	<-j.done

	return j.path, j.err
}

// CreateVideo validates the inputs and starts a [Job] that writes every frame
// of src for the duration of the audio file, then merges the audio in. The
// output is written to outDir as "<audio name>-<unix time>.mp4". Existing
// files are never overwritten: when that name is taken, "-1", "-2" and so on
// are appended to the time.
//
// Validation failures are returned as a [*ValidationError] before anything
// is started, and onProgress is never called for them. Otherwise onProgress,
// if not nil, receives reports from the job's goroutine, ending with exactly
// one terminal report. Calls are serialized. Cancelling ctx stops the job
// with an error wrapping [context.Canceled].
func (a *Assembler) CreateVideo(
	ctx context.Context, src writer.Source, audioPath, outDir string, onProgress func(Progress),
) (*Job, error) {
	err := validate(audioPath, outDir)
	if err != nil {
		return nil, err
	}

	j := &Job{
		ID:     uuid.NewString(),
		Audio:  audioPath,
		OutDir: outDir,
		done:   make(chan struct{}),
	}

	r := &reporter{fn: onProgress}

	go func() {
		defer close(j.done)

		j.path, j.err = a.run(ctx, j, src, r)
		if j.err != nil {
			r.fail(j.err)

			return
		}

		r.succeed(j.path)
	}()

	return j, nil
}

func validate(audioPath, outDir string) error {
	fi, err := os.Stat(outDir)
	if err != nil || !fi.IsDir() {
		return &ValidationError{Message: MsgOutputDirMissing, Path: outDir, Err: err}
	}

	fi, err = os.Stat(audioPath)
	if err != nil || fi.IsDir() {
		return &ValidationError{Message: MsgAudioMissing, Path: audioPath, Err: err}
	}

	return nil
}

func (a *Assembler) run(ctx context.Context, j *Job, src writer.Source, r *reporter) (string, error) {
	logger := a.logger.With(slog.String("job", j.ID))

	d, err := a.audio.Duration(ctx, j.Audio)
	if err != nil {
		logger.Error("reading audio duration", slog.String("audio", j.Audio), slog.Any("err", err))

		return "", trackError(MsgAudioTrack, err)
	}

	total := writer.TotalFrames(d, a.profile.FPS)

	logger.Info("starting video",
		slog.String("audio", j.Audio),
		slog.String("out_dir", j.OutDir),
		slog.Duration("audio_duration", d),
		slog.Int("frames", total),
	)

	w := writer.New(a.backend,
		writer.WithLogger(logger),
		writer.WithProfile(a.profile),
		writer.WithTempDir(a.tempDir),
		writer.WithMaxRetries(a.maxRetries),
		writer.WithRetryInterval(a.retryInterval),
	)

	res, err := w.Write(ctx, src, total, func(f float64) {
		r.progress(f * WriteWeight)
	})
	if err != nil {
		logger.Error("writing silent video", slog.Any("err", err))

		return "", backendError("write silent video", err)
	}

	if !a.keepTemp {
		defer a.removeTemp(logger, res.Path)
	}

	out, err := reserveOutput(j.OutDir, OutputName(j.Audio, a.now()))
	if err != nil {
		logger.Error("reserving output file", slog.Any("err", err))

		return "", backendError("reserve output", err)
	}

	logger.Debug("merging", slog.String("video", res.Path), slog.String("out", out))

	err = a.merger.Merge(ctx, res.Path, j.Audio, out, func(f float64) {
		r.progress(WriteWeight + f*(1-WriteWeight))
	})
	if err != nil {
		logger.Error("merging audio and video", slog.Any("err", err))
		a.removePartial(logger, out)

		return "", mergeError(err)
	}

	logger.Info("video ready", slog.String("path", out))

	return out, nil
}

func mergeError(err error) error {
	switch {
	case errors.Is(err, ffmpeg.ErrNoVideoTrack):
		return trackError(MsgVideoTrack, err)
	case errors.Is(err, ffmpeg.ErrNoAudioTrack):
		return trackError(MsgAudioTrack, err)
	}

	return backendError("merge", err)
}

func (a *Assembler) removeTemp(logger *slog.Logger, path string) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("removing silent video", slog.String("path", path), slog.Any("err", err))

		return
	}

	logger.Debug("removed silent video", slog.String("path", path))
}

func (a *Assembler) removePartial(logger *slog.Logger, path string) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("removing partial output", slog.String("path", path), slog.Any("err", err))
	}
}

// OutputName returns the output file name for audioPath at t: the audio file
// name up to its first dot, a dash, the Unix time and ".mp4".
func OutputName(audioPath string, t time.Time) string {
	base := filepath.Base(audioPath)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	if base == "" {
		base = "video"
	}

	return base + "-" + strconv.FormatInt(t.Unix(), 10) + ".mp4"
}

// maxOutputSuffix bounds how many numbered alternatives reserveOutput tries.
const maxOutputSuffix = 1000

// reserveOutput creates an empty file for name in dir, or for the first free
// "<stem>-<n><ext>" when name is taken, and returns its path. Creating the
// file up front keeps concurrent jobs from picking the same path.
func reserveOutput(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := range maxOutputSuffix {
		candidate := name
		if i > 0 {
			candidate = stem + "-" + strconv.Itoa(i) + ext
		}

		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // User output.
		if errors.Is(err, os.ErrExist) {
			continue
		}

		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}

		err = f.Close()
		if err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}

		return path, nil
	}

	return "", fmt.Errorf("%w: no free name for %s in %s", os.ErrExist, name, dir)
}

// reporter serializes progress reports and keeps them monotonic.
type reporter struct {
	fn   func(Progress)
	mu   sync.Mutex
	last float64
	done bool
}

func (r *reporter) progress(f float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 1 is reserved for the terminal report.
	f = min(f, 1-1e-9)
	if r.done || f <= r.last {
		return
	}

	r.last = f
	if r.fn != nil {
		r.fn(Progress{Fraction: f})
	}
}

func (r *reporter) succeed(path string) {
	r.finish(Progress{Finished: true, Fraction: 1, OutputPath: path})
}

func (r *reporter) fail(err error) {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	r.finish(Progress{Finished: true, Fraction: last, Err: err})
}

func (r *reporter) finish(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}

	r.done = true
	if r.fn != nil {
		r.fn(p)
	}
}

// String implements [fmt.Stringer].
func (p Progress) String() string {
	switch {
	case p.Finished && p.Err != nil:
		return fmt.Sprintf("failed at %.1f%%: %v", p.Fraction*100, p.Err)
	case p.Finished:
		return "done: " + p.OutputPath
	}

	return fmt.Sprintf("%.1f%%", p.Fraction*100)
}

var (
	_ Merger      = (*ffmpeg.Executor)(nil)
	_ AudioSource = (*media.Loader)(nil)
)

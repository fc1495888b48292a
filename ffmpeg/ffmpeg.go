package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/beatvid/writer"
)

var (
	// ErrNotFound indicates the ffmpeg or ffprobe executable could not be
	// located.
	ErrNotFound = errors.New("executable not found")
	// ErrFailed indicates ffmpeg or ffprobe exited unsuccessfully.
	ErrFailed = errors.New("command failed")
)

// MaxLineSize is the longest ffmpeg output line [ScanProgress] parses.
const MaxLineSize = 1 << 20

// stderrTail is how many trailing non-progress lines of ffmpeg output are
// kept for error messages.
const stderrTail = 20

// Executor runs ffmpeg and ffprobe.
//
// Create instances with [New].
type Executor struct {
	logger      *slog.Logger
	ffmpegPath  string
	ffprobePath string
	profile     writer.Profile
	threads     int
}

// Option configures an [Executor].
type Option func(*Executor)

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithFFmpeg sets the ffmpeg executable name or path. The default is
// "ffmpeg", looked up in PATH.
func WithFFmpeg(path string) Option {
	return func(e *Executor) {
		e.ffmpegPath = path
	}
}

// WithFFprobe sets the ffprobe executable name or path. The default is
// "ffprobe", looked up in PATH.
func WithFFprobe(path string) Option {
	return func(e *Executor) {
		e.ffprobePath = path
	}
}

// WithProfile sets the video profile used when encoding. The default is
// [writer.DefaultProfile].
func WithProfile(p writer.Profile) Option {
	return func(e *Executor) {
		e.profile = p
	}
}

// WithThreads limits the number of threads ffmpeg uses for the output.
// Zero lets ffmpeg decide.
func WithThreads(n int) Option {
	return func(e *Executor) {
		e.threads = n
	}
}

// New creates an [Executor], resolving both executables.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		logger:      slog.Default(),
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		profile:     writer.DefaultProfile,
	}
	for _, opt := range opts {
		opt(e)
	}

	ffmpegPath, err := exec.LookPath(e.ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	ffprobePath, err := exec.LookPath(e.ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	e.ffmpegPath = ffmpegPath
	e.ffprobePath = ffprobePath
	e.logger = e.logger.With(slog.String("component", "ffmpeg"))

	return e, nil
}

// Profile returns the encoding profile.
func (e *Executor) Profile() writer.Profile {
	return e.profile
}

// Progress is one block of ffmpeg's machine-readable progress output.
type Progress struct {
	Speed   string
	Frame   int
	FPS     float64
	OutTime time.Duration
	Done    bool
}

// RunOptions configures one ffmpeg invocation.
type RunOptions struct {
	// Feed, if set, writes ffmpeg's standard input. Standard input is closed
	// when Feed returns.
	Feed func(ctx context.Context, w io.Writer) error

	// OnProgress is called for every progress block.
	OnProgress func(Progress)

	Args []string
}

// Run executes ffmpeg with opts.Args, streaming progress to
// opts.OnProgress. The process is killed when ctx is cancelled.
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return errors.New("no arguments provided")
	}

	args := []string{"-y", "-hide_banner", "-nostats", "-loglevel", "error", "-progress", "pipe:2"}

	// -threads is an output option and must precede the output path.
	if n := len(opts.Args); e.threads > 0 {
		args = append(args, opts.Args[:n-1]...)
		args = append(args, "-threads", strconv.Itoa(e.threads), opts.Args[n-1])
	} else {
		args = append(args, opts.Args...)
	}

	e.logger.Debug("executing ffmpeg", slog.Any("args", args))

	//nolint:gosec // Arguments are built by this package from validated paths.
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	var stdin io.WriteCloser
	if opts.Feed != nil {
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("create stdin pipe: %w", err)
		}
	}

	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	tail := &lineTail{limit: stderrTail}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ScanProgress(stderr, opts.OnProgress, tail.add)

		return nil
	})

	if opts.Feed != nil {
		g.Go(func() error {
			defer stdin.Close() //nolint:errcheck // Close error surfaces via Wait.

			return opts.Feed(gctx, stdin)
		})
	}

	feedErr := g.Wait()
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("ffmpeg: %w", ctx.Err())
	case waitErr != nil:
		e.logger.Error("ffmpeg failed", slog.Any("err", waitErr), slog.String("stderr", tail.String()))

		return fmt.Errorf("%w: ffmpeg: %w: %s", ErrFailed, waitErr, tail.String())
	case feedErr != nil:
		return fmt.Errorf("feed ffmpeg: %w", feedErr)
	}

	e.logger.Debug("ffmpeg completed")

	return nil
}

// ScanProgress reads ffmpeg "-progress" output from r until EOF. Each
// completed block is passed to onProgress; every other line is passed to
// onLine. Either callback may be nil.
//
// Lines longer than [MaxLineSize] stop parsing; the read error is passed to
// onLine and the rest of r is discarded so the writer never blocks.
func ScanProgress(r io.Reader, onProgress func(Progress), onLine func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MaxLineSize)

	defer func() {
		err := scanner.Err()
		if err != nil && onLine != nil {
			onLine("reading ffmpeg output: " + err.Error())
		}

		io.Copy(io.Discard, r) //nolint:errcheck // Best effort drain.
	}()

	var p Progress

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.ContainsAny(key, " \t") {
			if onLine != nil && line != "" {
				onLine(line)
			}

			continue
		}

		value = strings.TrimSpace(value)

		switch key {
		case "frame":
			p.Frame, _ = strconv.Atoi(value) //nolint:errcheck // Zero on garbage.
		case "fps":
			p.FPS, _ = strconv.ParseFloat(value, 64) //nolint:errcheck // Zero on garbage.
		case "out_time_us", "out_time_ms":
			// Both keys are in microseconds.
			us, err := strconv.ParseInt(value, 10, 64)
			if err == nil && us >= 0 {
				p.OutTime = time.Duration(us) * time.Microsecond
			}
		case "speed":
			p.Speed = value
		case "progress":
			p.Done = value == "end"
			if onProgress != nil {
				onProgress(p)
			}

			p = Progress{}
		}
	}
}

// lineTail keeps the last limit lines written to it.
type lineTail struct {
	lines []string
	mu    sync.Mutex
	limit int
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return strings.Join(t.lines, "\n")
}

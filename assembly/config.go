package assembly

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/beatvid/ffmpeg"
	"go.jacobcolvin.com/beatvid/media"
	"go.jacobcolvin.com/beatvid/writer"
)

// Encoder names a silent video backend.
type Encoder string

const (
	// EncoderFFmpeg pipes raw frames into an ffmpeg H.264 encoder.
	EncoderFFmpeg Encoder = "ffmpeg"
	// EncoderMJPEG writes Motion JPEG in process; ffmpeg re-encodes it when
	// merging.
	EncoderMJPEG Encoder = "mjpeg"
)

// ErrUnknownEncoder indicates an unrecognized encoder name.
var ErrUnknownEncoder = errors.New("unknown encoder")

// GetAllEncoderStrings returns all encoder names.
func GetAllEncoderStrings() []string {
	return []string{string(EncoderFFmpeg), string(EncoderMJPEG)}
}

// ParseEncoder parses an encoder name.
func ParseEncoder(s string) (Encoder, error) {
	switch Encoder(strings.ToLower(s)) {
	case EncoderFFmpeg:
		return EncoderFFmpeg, nil
	case EncoderMJPEG:
		return EncoderMJPEG, nil
	}

	return "", fmt.Errorf("%w: %q, want one of: %s",
		ErrUnknownEncoder, s, strings.Join(GetAllEncoderStrings(), ", "))
}

// Flags holds CLI flag names for assembly configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	OutDir          string
	Encoder         string
	FFmpeg          string
	FFprobe         string
	KeepTemp        string
	MaxFrameRetries string
	Threads         string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for video assembly.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewAssembler] to create an
// [Assembler].
type Config struct {
	OutDir          string
	Encoder         string
	FFmpeg          string
	FFprobe         string
	Flags           Flags
	MaxFrameRetries int
	Threads         int
	KeepTemp        bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		OutDir:          "out-dir",
		Encoder:         "encoder",
		FFmpeg:          "ffmpeg",
		FFprobe:         "ffprobe",
		KeepTemp:        "keep-temp",
		MaxFrameRetries: "max-frame-retries",
		Threads:         "threads",
	}

	return f.NewConfig()
}

// RegisterFlags adds assembly flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.OutDir, c.Flags.OutDir, ".", "directory the finished video is written to")
	flags.StringVar(&c.Encoder, c.Flags.Encoder, string(EncoderFFmpeg),
		fmt.Sprintf("silent video encoder, one of: %s", GetAllEncoderStrings()))
	flags.StringVar(&c.FFmpeg, c.Flags.FFmpeg, "ffmpeg", "ffmpeg executable")
	flags.StringVar(&c.FFprobe, c.Flags.FFprobe, "ffprobe", "ffprobe executable")
	flags.BoolVar(&c.KeepTemp, c.Flags.KeepTemp, false, "keep the intermediate silent video")
	flags.IntVar(&c.MaxFrameRetries, c.Flags.MaxFrameRetries, writer.DefaultMaxRetries,
		"attempts per unavailable frame before giving up")
	flags.IntVar(&c.Threads, c.Flags.Threads, 0, "ffmpeg encoder threads, 0 lets ffmpeg decide")
}

// RegisterCompletions registers shell completions for assembly flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Encoder,
		cobra.FixedCompletions(GetAllEncoderStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Encoder, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.OutDir,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.OutDir, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.MaxFrameRetries, cobra.NoFileCompletions)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.MaxFrameRetries, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Threads, cobra.NoFileCompletions)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Threads, err)
	}

	return nil
}

// NewAssembler resolves ffmpeg and ffprobe and creates an [Assembler] for the
// configured encoder.
func (c *Config) NewAssembler(logger *slog.Logger, opts ...Option) (*Assembler, error) {
	enc, err := ParseEncoder(c.Encoder)
	if err != nil {
		return nil, err
	}

	exec, err := ffmpeg.New(
		ffmpeg.WithLogger(logger),
		ffmpeg.WithFFmpeg(c.FFmpeg),
		ffmpeg.WithFFprobe(c.FFprobe),
		ffmpeg.WithThreads(c.Threads),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	var backend writer.Backend = ffmpeg.NewEncoder(exec, ffmpeg.DefaultQueueDepth)
	if enc == EncoderMJPEG {
		backend = writer.MJPEGBackend{}
	}

	loader := media.NewLoader(media.WithProber(exec), media.WithLogger(logger))

	opts = append([]Option{
		WithLogger(logger),
		WithProfile(exec.Profile()),
		WithKeepTemp(c.KeepTemp),
		WithMaxRetries(c.MaxFrameRetries),
	}, opts...)

	return New(backend, exec, loader, opts...), nil
}

package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	CPU           string
	Heap          string
	Allocs        string
	Goroutine     string
	Block         string
	Mutex         string
	BlockRate     string
	MutexFraction string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds profile output paths and sampling rates. Empty paths disable
// the corresponding profile, so a zero Config profiles nothing.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProfiler] to create a [Profiler].
type Config struct {
	Flags Flags

	CPU       string
	Heap      string
	Allocs    string
	Goroutine string
	Block     string
	Mutex     string

	// BlockRate is passed to [runtime.SetBlockProfileRate].
	BlockRate int

	// MutexFraction is passed to [runtime.SetMutexProfileFraction].
	MutexFraction int
}

// NewConfig creates a new [Config] with default flag names and all profiles
// disabled.
func NewConfig() *Config {
	f := Flags{
		CPU:           "cpu-profile",
		Heap:          "heap-profile",
		Allocs:        "allocs-profile",
		Goroutine:     "goroutine-profile",
		Block:         "block-profile",
		Mutex:         "mutex-profile",
		BlockRate:     "block-profile-rate",
		MutexFraction: "mutex-profile-fraction",
	}

	return f.NewConfig()
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	for _, p := range c.paths() {
		flags.StringVar(p.path, p.flag, "", fmt.Sprintf("write %s profile to file", p.name))
	}

	flags.IntVar(&c.BlockRate, c.Flags.BlockRate, 1, "block profile rate (nanoseconds)")
	flags.IntVar(&c.MutexFraction, c.Flags.MutexFraction, 1, "mutex profile fraction (1/N sampling)")
}

// RegisterCompletions registers shell completions for profile flags on cmd.
// Rate flags disable file completion; path flags keep the default.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	for _, name := range []string{c.Flags.BlockRate, c.Flags.MutexFraction} {
		err := cmd.RegisterFlagCompletionFunc(name, cobra.NoFileCompletions)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// NewProfiler creates a new [Profiler] using a copy of this [Config].
func (c *Config) NewProfiler(opts ...Option) *Profiler {
	p := &Profiler{config: *c}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

type profilePath struct {
	path *string
	name string
	flag string
}

func (c *Config) paths() []profilePath {
	return []profilePath{
		{&c.CPU, "cpu", c.Flags.CPU},
		{&c.Heap, "heap", c.Flags.Heap},
		{&c.Allocs, "allocs", c.Flags.Allocs},
		{&c.Goroutine, "goroutine", c.Flags.Goroutine},
		{&c.Block, "block", c.Flags.Block},
		{&c.Mutex, "mutex", c.Flags.Mutex},
	}
}

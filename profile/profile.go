package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler runs one profiling session.
//
// Call [Profiler.Start] before the work and [Profiler.Stop] after it.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	logger  *slog.Logger
	cpuFile *os.File
	config  Config
}

// Option configures a [Profiler].
type Option func(*Profiler)

// WithLogger sets the logger used to report written profiles.
func WithLogger(l *slog.Logger) Option {
	return func(p *Profiler) {
		p.logger = l
	}
}

// Enabled reports whether any profile is requested.
func (p *Profiler) Enabled() bool {
	for _, pp := range p.config.paths() {
		if *pp.path != "" {
			return true
		}
	}

	return false
}

// Start sets the sampling rates and starts CPU profiling if requested. It is
// a no-op when nothing is enabled.
func (p *Profiler) Start() error {
	if !p.Enabled() {
		return nil
	}

	if p.config.Block != "" {
		runtime.SetBlockProfileRate(p.config.BlockRate)
	}

	if p.config.Mutex != "" {
		runtime.SetMutexProfileFraction(p.config.MutexFraction)
	}

	if p.config.CPU == "" {
		return nil
	}

	f, err := os.Create(p.config.CPU) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating cpu profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		return errors.Join(fmt.Errorf("starting cpu profile: %w", err), f.Close())
	}

	p.cpuFile = f

	return nil
}

// Stop ends CPU profiling and writes every requested snapshot profile. It
// keeps going after a failure and returns all errors joined.
func (p *Profiler) Stop() error {
	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("closing cpu profile: %w", err))
		} else {
			p.log("cpu", p.cpuFile.Name())
		}

		p.cpuFile = nil
	}

	for _, pp := range p.config.paths() {
		if pp.name == "cpu" || *pp.path == "" {
			continue
		}

		err := writeSnapshot(pp.name, *pp.path)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		p.log(pp.name, *pp.path)
	}

	return errors.Join(errs...)
}

func (p *Profiler) log(name, path string) {
	if p.logger == nil {
		return
	}

	p.logger.Debug("wrote profile", slog.String("profile", name), slog.String("path", path))
}

func writeSnapshot(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile: %s", name)
	}

	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating %s profile: %w", name, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		return errors.Join(fmt.Errorf("writing %s profile: %w", name, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("closing %s profile: %w", name, err)
	}

	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/beatvid/log"
	"go.jacobcolvin.com/beatvid/profile"
	"go.jacobcolvin.com/beatvid/version"
)

// app is the state shared by all subcommands.
type app struct {
	logger       *slog.Logger
	logCfg       *log.Config
	profCfg      *profile.Config
	profiler     *profile.Profiler
	stderr       io.Writer
	settingsPath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		logCfg:  log.NewConfig(),
		profCfg: profile.NewConfig(),
		stderr:  stderr,
		logger:  slog.New(slog.DiscardHandler),
	}

	rootCmd := &cobra.Command{
		Use:   "beatvid",
		Short: "Render beat-synced effect videos for audio tracks",
		Long: `beatvid composes a still scene (background, foreground and watermark),
animates it with a periodic effect and renders one frame per 1/30 s of an
audio track, then muxes the audio in.`,
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.stop()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.settingsPath, "settings", defaultSettingsPath(), "settings file")

	a.logCfg.RegisterFlags(flags)
	a.profCfg.RegisterFlags(flags)

	rootCmd.AddCommand(
		newRenderCmd(a),
		newFrameCmd(a),
		newPreviewCmd(a),
		newEffectsCmd(),
		newSchemaCmd(),
		newVersionCmd(a),
	)

	err := errors.Join(
		a.logCfg.RegisterCompletions(rootCmd),
		a.profCfg.RegisterCompletions(rootCmd),
	)
	if err != nil {
		fmt.Fprintf(stderr, "register completions: %v\n", err)
	}

	return rootCmd
}

func (a *app) start() error {
	handler, err := a.logCfg.NewHandler(a.stderr)
	if err != nil {
		return err
	}

	a.logger = slog.New(handler)
	a.profiler = a.profCfg.NewProfiler(profile.WithLogger(a.logger))

	err = a.profiler.Start()
	if err != nil {
		return fmt.Errorf("starting profiler: %w", err)
	}

	return nil
}

func (a *app) stop() error {
	if a.profiler == nil {
		return nil
	}

	err := a.profiler.Stop()
	if err != nil {
		return fmt.Errorf("stopping profiler: %w", err)
	}

	return nil
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "beatvid.yaml"
	}

	return filepath.Join(dir, "beatvid", "settings.yaml")
}

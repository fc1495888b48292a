package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newFrameCmd(a *app) *cobra.Command {
	sf := &sceneFlags{}

	var (
		index  int
		output string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "frame [flags]",
		Short: "Render a single frame as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if index < 0 {
				return fmt.Errorf("frame index must not be negative, got %d", index)
			}

			s, err := sf.apply(cmd, a.settingsPath)
			if err != nil {
				return err
			}

			sess, err := sessionFor(s, sf.unlocked, image.Pt(width, height), a.logger)
			if err != nil {
				return err
			}

			img, err := sess.Render(index)
			if err != nil {
				return err
			}

			err = writePNG(output, img)
			if err != nil {
				return err
			}

			a.logger.Info("wrote frame",
				slog.Int("frame", index),
				slog.String("effect", sess.Selector().String()),
				slog.String("path", output),
			)

			err = sf.saveSettings(s, a.settingsPath, a.logger)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), output)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&index, "index", "n", 0, "frame index (30 per second)")
	flags.StringVarP(&output, "output", "o", "frame.png", "output PNG file")
	flags.IntVar(&width, "width", 0, "scale the frame to this width (0 keeps the canvas size)")
	flags.IntVar(&height, "height", 0, "scale the frame to this height (0 keeps the canvas size)")
	sf.register(flags)

	cmd.MarkFlagsRequiredTogether("width", "height")

	err := sf.registerCompletions(cmd)
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // Output path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	err = png.Encode(f, img)
	if err != nil {
		return errors.Join(fmt.Errorf("encoding %s: %w", path, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	return nil
}

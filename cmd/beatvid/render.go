package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/beatvid/assembly"
	"go.jacobcolvin.com/beatvid/writer"
)

// progressSteps is the resolution of the progress bar.
const progressSteps = 1000

func newRenderCmd(a *app) *cobra.Command {
	cfg := assembly.NewConfig()
	sf := &sceneFlags{}

	var quiet bool

	cmd := &cobra.Command{
		Use:   "render [flags] <audio>",
		Short: "Render a video for an audio file",
		Long: `Render writes one frame per 1/30 s of the audio (rounded up to whole seconds)
to a silent video, muxes the audio in and prints the path of the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd, cfg, sf, args[0], quiet)
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	sf.register(cmd.Flags())
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")

	err := cfg.RegisterCompletions(cmd)
	if err == nil {
		err = sf.registerCompletions(cmd)
	}

	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (a *app) render(cmd *cobra.Command, cfg *assembly.Config, sf *sceneFlags, audio string, quiet bool) error {
	s, err := sf.apply(cmd, a.settingsPath)
	if err != nil {
		return err
	}

	asm, err := cfg.NewAssembler(a.logger)
	if err != nil {
		return err
	}

	p := writer.DefaultProfile

	sess, err := sessionFor(s, sf.unlocked, p.Size(), a.logger)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(progressSteps,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription(sess.Selector().String()),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	job, err := asm.CreateVideo(cmd.Context(), sess, audio, cfg.OutDir, func(pr assembly.Progress) {
		if bar == nil || pr.Finished {
			return
		}

		_ = bar.Set(int(pr.Fraction * progressSteps)) //nolint:errcheck // Display only.
	})
	if err != nil {
		return err
	}

	path, err := job.Wait()

	if bar != nil {
		_ = bar.Finish() //nolint:errcheck // Display only.
	}

	if err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	err = sf.saveSettings(s, a.settingsPath, a.logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	return nil
}

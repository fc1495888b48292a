package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/image/draw"

	"go.jacobcolvin.com/beatvid/effect"
	"go.jacobcolvin.com/beatvid/frame"
	"go.jacobcolvin.com/beatvid/scene"
	"go.jacobcolvin.com/beatvid/settings"
)

const (
	flagEffect          = "effect"
	flagDuration        = "duration"
	flagBackground      = "background"
	flagBackgroundImage = "background-image"
	flagColor           = "color"
	flagForeground      = "foreground"
	flagForegroundImage = "foreground-image"
	flagWatermark       = "watermark"
	flagUnlocked        = "unlocked"
	flagSave            = "save"
)

// sceneFlags override the stored settings for one run.
type sceneFlags struct {
	effect          string
	background      string
	backgroundImage string
	color           string
	foreground      string
	foregroundImage string
	duration        int
	watermark       bool
	unlocked        bool
	save            bool
}

func (f *sceneFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.effect, flagEffect, "e", "",
		fmt.Sprintf("effect, one of: %s", strings.Join(effect.GetAllKindStrings(), ", ")))
	flags.IntVarP(&f.duration, flagDuration, "d", 0,
		fmt.Sprintf("effect period in seconds (%d-%d)", effect.MinDuration, effect.MaxDuration))
	flags.StringVar(&f.background, flagBackground, "",
		fmt.Sprintf("background, one of: %s", strings.Join(scene.GetAllBackgroundStrings(), ", ")))
	flags.StringVar(&f.backgroundImage, flagBackgroundImage, "", "background image (implies --background=image)")
	flags.StringVar(&f.color, flagColor, "", "background color as #RRGGBB (implies --background=custom-color)")
	flags.StringVar(&f.foreground, flagForeground, "",
		fmt.Sprintf("foreground, one of: %s", strings.Join(scene.GetAllForegroundStrings(), ", ")))
	flags.StringVar(&f.foregroundImage, flagForegroundImage, "", "foreground image (implies --foreground=image)")
	flags.BoolVar(&f.watermark, flagWatermark, true, "draw the watermark (only honored with --unlocked)")
	flags.BoolVar(&f.unlocked, flagUnlocked, false, "watermark removal is unlocked")
	flags.BoolVar(&f.save, flagSave, false, "store the resulting settings")
}

func (f *sceneFlags) registerCompletions(cmd *cobra.Command) error {
	fixed := map[string][]string{
		flagEffect:     effect.GetAllKindStrings(),
		flagBackground: scene.GetAllBackgroundStrings(),
		flagForeground: scene.GetAllForegroundStrings(),
	}

	for name, values := range fixed {
		err := cmd.RegisterFlagCompletionFunc(name,
			cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	for _, name := range []string{flagDuration, flagColor} {
		err := cmd.RegisterFlagCompletionFunc(name, cobra.NoFileCompletions)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// apply loads the settings file and overrides it with every flag set on cmd.
func (f *sceneFlags) apply(cmd *cobra.Command, path string) (*settings.File, error) {
	s, err := settings.Load(path)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed

	if changed(flagEffect) {
		k, err := effect.ParseKind(f.effect)
		if err != nil {
			return nil, err
		}

		s.Effect.Type = k.Value()
	}

	if changed(flagDuration) {
		if f.duration < effect.MinDuration || f.duration > effect.MaxDuration {
			return nil, fmt.Errorf("%w: %d, want %d to %d",
				effect.ErrInvalidDuration, f.duration, effect.MinDuration, effect.MaxDuration)
		}

		s.Effect.Duration = f.duration
	}

	if changed(flagBackground) {
		k, err := scene.ParseBackgroundKind(f.background)
		if err != nil {
			return nil, err
		}

		s.Background.Type = int(k)
	}

	if changed(flagBackgroundImage) {
		s.Background.Type = int(scene.BackgroundImage)
		s.Background.Image = f.backgroundImage
	}

	if changed(flagColor) {
		c, err := scene.ParseColor(f.color)
		if err != nil {
			return nil, err
		}

		s.Background.Type = int(scene.BackgroundCustomColor)
		s.Background.Color = scene.FormatColor(c)
	}

	if changed(flagForeground) {
		k, err := scene.ParseForegroundKind(f.foreground)
		if err != nil {
			return nil, err
		}

		s.Foreground.Type = int(k)
	}

	if changed(flagForegroundImage) {
		s.Foreground.Type = int(scene.ForegroundImage)
		s.Foreground.Image = f.foregroundImage
	}

	if changed(flagWatermark) {
		s.ShowWatermark = f.watermark
	}

	return s, nil
}

// saveSettings writes s to path if --save was given.
func (f *sceneFlags) saveSettings(s *settings.File, path string, logger *slog.Logger) error {
	if !f.save {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	err = s.Save(path)
	if err != nil {
		return err
	}

	logger.Info("saved settings", slog.String("path", path))

	return nil
}

// sessionFor composes the scene stored in s and binds it to the stored
// effect. Bad stored values fall back to their defaults with a warning. A
// non-zero size scales the composed canvas before effects are applied.
func sessionFor(s *settings.File, unlocked bool, size image.Point, logger *slog.Logger,
	opts ...frame.Option,
) (*frame.Session, error) {
	sel, err := s.Selector()
	if err != nil {
		logger.Warn("using default effect", slog.Any("err", err))
	}

	sc, err := s.Scene(unlocked, logger)
	if err != nil {
		logger.Warn("using default scene values", slog.Any("err", err))
	}

	base, err := scene.NewComposer(scene.WithLogger(logger)).Compose(sc)
	if err != nil {
		return nil, err
	}

	if size != (image.Point{}) && size != base.Rect.Size() {
		scaled := image.NewRGBA(image.Rectangle{Max: size})
		draw.ApproxBiLinear.Scale(scaled, scaled.Rect, base, base.Rect, draw.Src, nil)
		base = scaled
	}

	sess, err := frame.NewSession(base, sel, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("scene ready",
		slog.String("effect", sel.String()),
		slog.String("background", sc.Background.Kind.String()),
		slog.String("foreground", sc.Foreground.Kind.String()),
		slog.Bool("watermark", sc.Watermark),
	)

	return sess, nil
}

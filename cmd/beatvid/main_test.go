package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/beatvid/effect"
	"go.jacobcolvin.com/beatvid/media"
	"go.jacobcolvin.com/beatvid/settings"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return stdout.String(), stderr.String(), err
}

func TestEffectsCmd(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "effects")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(effect.Kinds())+1)
	assert.Contains(t, lines[0], "DISPLAY NAME")
	assert.Contains(t, lines[4], "Radial Blur")
	assert.Contains(t, lines[8], "noise")
}

func TestSchemaCmd(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "schema")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Contains(t, doc["properties"], "effect")

	out, _, err = execute(t, "schema", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "properties:")

	_, _, err = execute(t, "schema", "--format", "toml")
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "beatvid "), out)
}

func TestFrameCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "conf", "settings.yaml")
	out := filepath.Join(dir, "frame.png")

	stdout, _, err := execute(t, "frame",
		"--settings", cfg,
		"--index", "15",
		"--effect", "vintage",
		"--duration", "4",
		"--color", "#336699",
		"--width", "64", "--height", "36",
		"--output", out,
		"--save",
	)
	require.NoError(t, err)
	assert.Equal(t, out+"\n", stdout)

	f, err := os.Open(out)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, f.Close()) })

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 36), img.Bounds())

	s, err := settings.Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, settings.Effect{Type: effect.KindVintage.Value(), Duration: 4}, s.Effect)
	assert.Equal(t, "#336699", s.Background.Color)
}

func TestSceneFlagErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err  error
		args []string
	}{
		"unknown effect": {
			args: []string{"--effect", "sparkle"},
			err:  effect.ErrUnknownKind,
		},
		"duration out of range": {
			args: []string{"--duration", "11"},
			err:  effect.ErrInvalidDuration,
		},
		"bad settings file": {
			args: []string{"--settings", "BAD"},
			err:  settings.ErrInvalid,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			bad := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(bad, []byte("effect: [1, 2]\n"), 0o600))

			args := []string{"frame", "--settings", filepath.Join(dir, "settings.yaml"), "-o", filepath.Join(dir, "f.png")}
			for _, a := range tc.args {
				if a == "BAD" {
					a = bad
				}

				args = append(args, a)
			}

			_, _, err := execute(t, args...)
			require.ErrorIs(t, err, tc.err)
			assert.NoFileExists(t, filepath.Join(dir, "f.png"))
		})
	}
}

func TestRenderCmd(t *testing.T) {
	t.Parallel()

	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		_, err := exec.LookPath(bin)
		if err != nil {
			t.Skipf("%s not found", bin)
		}
	}

	dir := t.TempDir()
	audio := filepath.Join(dir, "beat.wav")
	require.NoError(t, media.WriteSilentWAV(audio, time.Second, 8000))

	stdout, _, err := execute(t, "render", audio,
		"--settings", filepath.Join(dir, "settings.yaml"),
		"--out-dir", dir,
		"--encoder", "mjpeg",
		"--effect", "negative",
		"--quiet",
	)
	require.NoError(t, err)

	path := strings.TrimSpace(stdout)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "beat-"), path)
	assert.FileExists(t, path)
}

func TestRenderCmdMissingAudio(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := execute(t, "render", filepath.Join(dir, "missing.wav"),
		"--settings", filepath.Join(dir, "settings.yaml"),
		"--out-dir", dir,
		"--ffmpeg", "definitely-not-ffmpeg",
	)
	require.Error(t, err)
}

func TestDrawHalfBlocks(t *testing.T) {
	t.Parallel()

	var (
		red   = color.RGBA{R: 255, A: 255}
		green = color.RGBA{G: 255, A: 255}
		blue  = color.RGBA{B: 255, A: 255}
	)

	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.SetRGBA(0, 0, red)
	img.SetRGBA(1, 0, red)
	img.SetRGBA(0, 1, blue)
	img.SetRGBA(1, 1, green)
	img.SetRGBA(0, 2, green)
	img.SetRGBA(1, 2, green)

	var sb strings.Builder
	drawHalfBlocks(&sb, img)

	want := "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m▀\x1b[48;2;0;255;0m▀\x1b[0m\n" +
		"\x1b[38;2;0;255;0m\x1b[48;2;0;0;0m▀▀\x1b[0m\n"
	assert.Equal(t, want, sb.String())
}

func TestFitCells(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	got := fitCells(src, 8, 2)
	require.Equal(t, image.Rect(0, 0, 8, 4), got.Bounds())

	// A square source is pillarboxed: 4 white columns in the middle.
	assert.Equal(t, color.RGBA{}, got.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, got.RGBAAt(7, 3))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, got.RGBAAt(3, 1))

	assert.True(t, fitCells(src, 0, 0).Bounds().Empty())
}

func TestPreviewHelpers(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		fn   func() int
		want int
	}{
		"cycle advances":        {fn: func() int { return cycle(1, 8) }, want: 2},
		"cycle wraps":           {fn: func() int { return cycle(7, 8) }, want: 0},
		"cycle resets unknown":  {fn: func() int { return cycle(42, 8) }, want: 0},
		"duration from default": {fn: func() int { return stepDuration(0, 1) }, want: effect.DefaultDuration + 1},
		"duration upper bound":  {fn: func() int { return stepDuration(effect.MaxDuration, 1) }, want: effect.MaxDuration},
		"duration lower bound":  {fn: func() int { return stepDuration(effect.MinDuration, -1) }, want: effect.MinDuration},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.fn())
		})
	}
}

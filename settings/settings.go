package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/beatvid/effect"
	"go.jacobcolvin.com/beatvid/scene"
)

var (
	// ErrInvalid indicates a document that does not match [Schema].
	ErrInvalid = errors.New("invalid settings")
	// ErrVersion indicates a document written with a newer discriminant
	// numbering than this build understands.
	ErrVersion = errors.New("unsupported settings version")
)

// File is the persisted preference document.
type File struct {
	Background Background `json:"background"    yaml:"background"`
	Foreground Foreground `json:"foreground"    yaml:"foreground"`
	Effect     Effect     `json:"effect"        yaml:"effect"`

	// Version is the discriminant numbering the document was written with.
	// Zero is read as [effect.DiscriminantVersion].
	Version int `json:"version" yaml:"version"`

	// ShowWatermark is the user's watermark preference. It only has an
	// effect once watermark removal is unlocked.
	ShowWatermark bool `json:"showWatermark" yaml:"showWatermark"`
}

// Effect is the persisted [effect.Selector].
type Effect struct {
	Type     int `json:"type"     yaml:"type"`
	Duration int `json:"duration" yaml:"duration"`
}

// Background is the persisted [scene.Background].
type Background struct {
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Type  int    `json:"type"            yaml:"type"`
}

// Foreground is the persisted [scene.Foreground].
type Foreground struct {
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	Type  int    `json:"type"            yaml:"type"`
}

// Default returns the settings used when nothing is stored: no effect with
// the default duration, a black background, no foreground and the watermark
// on.
func Default() *File {
	return &File{
		Version:       effect.DiscriminantVersion,
		Effect:        Effect{Type: effect.KindNone.Value(), Duration: effect.DefaultDuration},
		Background:    Background{Type: int(scene.BackgroundBlack)},
		Foreground:    Foreground{Type: int(scene.ForegroundNone)},
		ShowWatermark: true,
	}
}

// Schema returns the JSON Schema settings documents are validated against.
//
// Discriminants are only checked to be non-negative integers, so documents
// written by a newer build still load; unknown values are reported when the
// settings are applied.
func Schema() *jsonschema.Schema {
	discriminant := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:        "integer",
			Description: desc,
			Minimum:     jsonschema.Ptr(0.0),
		}
	}

	object := func(desc string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:                 "object",
			Description:          desc,
			Properties:           props,
			AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
		}
	}

	s := object("BeatVid settings.", map[string]*jsonschema.Schema{
		"version": {
			Type:        "integer",
			Description: "Discriminant numbering the document was written with.",
			Minimum:     jsonschema.Ptr(0.0),
		},
		"effect": object("Per-frame effect.", map[string]*jsonschema.Schema{
			"type": discriminant(fmt.Sprintf("Effect kind: %s.", kindValues())),
			"duration": {
				Type: "integer",
				Description: fmt.Sprintf("Effect period in seconds, %d to %d. Zero selects %d.",
					effect.MinDuration, effect.MaxDuration, effect.DefaultDuration),
				Minimum: jsonschema.Ptr(0.0),
				Maximum: jsonschema.Ptr(float64(effect.MaxDuration)),
			},
		}),
		"background": object("Canvas fill.", map[string]*jsonschema.Schema{
			"type":  discriminant("Background kind: 0 black, 1 white, 2 image, 3 custom color."),
			"image": {Type: "string", Description: "Image path for the image background."},
			"color": {
				Type:        "string",
				Description: "Color for the custom color background, as #RRGGBB.",
				Pattern:     "^#?[0-9A-Fa-f]{6}$",
			},
		}),
		"foreground": object("Centered overlay.", map[string]*jsonschema.Schema{
			"type":  discriminant("Foreground kind: 0 none, 1 image, 2 logo."),
			"image": {Type: "string", Description: "Image path for the image foreground."},
		}),
		"showWatermark": {
			Type:        "boolean",
			Description: "Draw the watermark. Only honored once watermark removal is unlocked.",
		},
	})
	s.Schema = "https://json-schema.org/draft/2020-12/schema"
	s.Title = "BeatVid settings"

	return s
}

func kindValues() string {
	var b bytes.Buffer

	for i, k := range effect.Kinds() {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%d %s", k.Value(), k)
	}

	return b.String()
}

var resolved = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return Schema().Resolve(nil)
})

// Parse validates a YAML (or JSON) settings document and decodes it on top of
// [Default]. An empty document yields the defaults.
func Parse(data []byte) (*File, error) {
	f := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}

	err := validate(data)
	if err != nil {
		return nil, err
	}

	err = yaml.UnmarshalWithOptions(data, f, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if f.Version == 0 {
		f.Version = effect.DiscriminantVersion
	}

	if f.Version > effect.DiscriminantVersion {
		return nil, fmt.Errorf("%w: %d, want at most %d", ErrVersion, f.Version, effect.DiscriminantVersion)
	}

	return f, nil
}

func validate(data []byte) error {
	rs, err := resolved()
	if err != nil {
		return fmt.Errorf("resolving schema: %w", err)
	}

	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var doc any

	err = json.Unmarshal(js, &doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	err = rs.Validate(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Load reads settings from path. A missing file yields [Default].
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path.
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	data, err := yaml.MarshalWithOptions(f, yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}

	return data, nil
}

// Save writes f to path as YAML.
func (f *File) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	return nil
}

// Selector returns the stored effect. A zero duration selects
// [effect.DefaultDuration]. An unknown effect type yields [effect.None]
// together with an error naming the value.
func (f *File) Selector() (effect.Selector, error) {
	sel, err := effect.FromValue(f.Effect.Type, f.Effect.Duration)
	if err != nil {
		return sel, fmt.Errorf("effect: %w", err)
	}

	return sel, nil
}

// SetSelector stores sel.
func (f *File) SetSelector(sel effect.Selector) {
	f.Effect = Effect{Type: sel.Kind.Value(), Duration: sel.Duration}
}

// Scene returns the stored scene for a user whose watermark removal is (or
// is not) unlocked.
//
// Image kinds whose file no longer exists fall back to a black background
// or no foreground, with a warning. Unknown discriminants and bad colors also
// fall back to those defaults; the returned error then lists every bad value
// while the scene is still usable.
func (f *File) Scene(unlocked bool, logger *slog.Logger) (scene.Scene, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error

	bg, err := f.background(logger)
	if err != nil {
		errs = append(errs, err)
	}

	fg, err := f.foreground(logger)
	if err != nil {
		errs = append(errs, err)
	}

	s := scene.Scene{
		Background: bg,
		Foreground: fg,
		Watermark:  scene.ShowWatermark(unlocked, f.ShowWatermark),
	}

	return s, errors.Join(errs...)
}

func (f *File) background(logger *slog.Logger) (scene.Background, error) {
	kind, err := scene.BackgroundFromValue(f.Background.Type)
	if err != nil {
		return scene.Background{Kind: scene.BackgroundBlack}, fmt.Errorf("background: %w", err)
	}

	bg := scene.Background{Kind: kind, Image: f.Background.Image}

	switch kind {
	case scene.BackgroundImage:
		if !exists(bg.Image) {
			logger.Warn("background image is missing, using black", slog.String("path", bg.Image))

			return scene.Background{Kind: scene.BackgroundBlack}, nil
		}

	case scene.BackgroundCustomColor:
		c, err := scene.ParseColor(f.Background.Color)
		if err != nil {
			return scene.Background{Kind: scene.BackgroundBlack}, fmt.Errorf("background: %w", err)
		}

		bg.Color = c
	}

	return bg, nil
}

func (f *File) foreground(logger *slog.Logger) (scene.Foreground, error) {
	kind, err := scene.ForegroundFromValue(f.Foreground.Type)
	if err != nil {
		return scene.Foreground{Kind: scene.ForegroundNone}, fmt.Errorf("foreground: %w", err)
	}

	fg := scene.Foreground{Kind: kind, Image: f.Foreground.Image}

	if kind == scene.ForegroundImage && !exists(fg.Image) {
		logger.Warn("foreground image is missing, using none", slog.String("path", fg.Image))

		return scene.Foreground{Kind: scene.ForegroundNone}, nil
	}

	return fg, nil
}

// SetScene stores s. The watermark preference is stored as given.
func (f *File) SetScene(s scene.Scene) {
	f.Background = Background{Type: int(s.Background.Kind), Image: s.Background.Image}
	if s.Background.Kind == scene.BackgroundCustomColor {
		f.Background.Color = scene.FormatColor(s.Background.Color)
	}

	f.Foreground = Foreground{Type: int(s.Foreground.Kind), Image: s.Foreground.Image}
	f.ShowWatermark = s.Watermark
}

func exists(path string) bool {
	if path == "" {
		return false
	}

	fi, err := os.Stat(path)

	return err == nil && !fi.IsDir()
}

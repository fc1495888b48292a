package effect

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind identifies an effect family. The integer value of a Kind is its
// persisted discriminant and must never be renumbered; new kinds are appended
// and [DiscriminantVersion] is bumped.
type Kind int

const (
	KindNone Kind = iota
	KindVintage
	KindNegative
	KindRadialBlur
	KindPixellate
	KindExposure
	KindHueAdjust
	KindNoise
)

// DiscriminantVersion is the version of the Kind numbering above. Persisted
// documents carry it so a future renumbering can be migrated.
const DiscriminantVersion = 1

const (
	// DefaultDuration is the effect duration used when none is given.
	DefaultDuration = 3
	// MinDuration and MaxDuration bound the user-selectable effect duration.
	MinDuration = 1
	MaxDuration = 10
)

var (
	// ErrUnknownKind indicates an unrecognized effect discriminant or name.
	ErrUnknownKind = errors.New("unknown effect kind")
	// ErrInvalidDuration indicates a non-positive effect duration.
	ErrInvalidDuration = errors.New("invalid effect duration")
)

var kindNames = map[Kind]struct {
	id      string
	display string
}{
	KindNone:       {"none", "None"},
	KindVintage:    {"vintage", "Vintage"},
	KindNegative:   {"negative", "Negative"},
	KindRadialBlur: {"radial-blur", "Radial Blur"},
	KindPixellate:  {"pixellate", "Pixellate"},
	KindExposure:   {"exposure", "Exposure"},
	KindHueAdjust:  {"hue-adjust", "Hue Adjust"},
	KindNoise:      {"noise", "Noise"},
}

// Kinds returns every known [Kind] in discriminant order.
func Kinds() []Kind {
	return []Kind{
		KindNone, KindVintage, KindNegative, KindRadialBlur,
		KindPixellate, KindExposure, KindHueAdjust, KindNoise,
	}
}

// GetAllKindStrings returns the identifiers accepted by [ParseKind].
func GetAllKindStrings() []string {
	ks := Kinds()
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.String())
	}

	return out
}

// String returns the identifier of k, e.g. "radial-blur".
func (k Kind) String() string {
	n, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return n.id
}

// DisplayName returns the human readable name of k, e.g. "Radial Blur".
func (k Kind) DisplayName() string {
	n, ok := kindNames[k]
	if !ok {
		return k.String()
	}

	return n.display
}

// Value returns the persisted discriminant of k.
func (k Kind) Value() int {
	return int(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]

	return ok
}

// KindFromValue returns the [Kind] for a persisted discriminant.
func KindFromValue(v int) (Kind, error) {
	k := Kind(v)
	if !k.Valid() {
		return KindNone, fmt.Errorf("%w: %d", ErrUnknownKind, v)
	}

	return k, nil
}

// ParseKind parses an identifier (as returned by [Kind.String]) or display
// name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if norm == k.String() || norm == strings.ToLower(k.DisplayName()) {
			return k, nil
		}
	}

	return KindNone, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownKind, s,
		strings.Join(GetAllKindStrings(), ", "))
}

// Selector chooses an effect and its oscillation period. Duration is the
// effect duration in seconds and is ignored for [KindNone].
type Selector struct {
	Kind     Kind
	Duration int
}

// None returns the identity selector.
func None() Selector { return Selector{Kind: KindNone} }

// Vintage returns a sepia, noise and scratch selector.
func Vintage(seconds int) Selector { return Selector{Kind: KindVintage, Duration: seconds} }

// Negative returns an inverting color remap selector.
func Negative(seconds int) Selector { return Selector{Kind: KindNegative, Duration: seconds} }

// RadialBlur returns a selector that blurs outside a growing central disk.
func RadialBlur(seconds int) Selector { return Selector{Kind: KindRadialBlur, Duration: seconds} }

// Pixellate returns a centered mosaic selector.
func Pixellate(seconds int) Selector { return Selector{Kind: KindPixellate, Duration: seconds} }

// Exposure returns an oscillating exposure selector.
func Exposure(seconds int) Selector { return Selector{Kind: KindExposure, Duration: seconds} }

// HueAdjust returns an oscillating hue rotation selector.
func HueAdjust(seconds int) Selector { return Selector{Kind: KindHueAdjust, Duration: seconds} }

// Noise returns a random noise multiply selector.
func Noise(seconds int) Selector { return Selector{Kind: KindNoise, Duration: seconds} }

// Validate checks that s names a known kind and, for every kind except
// [KindNone], carries a positive duration.
func (s Selector) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(s.Kind))
	}

	if s.Kind != KindNone && s.Duration <= 0 {
		return fmt.Errorf("%w: %s needs a positive duration, got %d",
			ErrInvalidDuration, s.Kind, s.Duration)
	}

	return nil
}

// String returns a compact description such as "vintage(3s)".
func (s Selector) String() string {
	if s.Kind == KindNone {
		return s.Kind.String()
	}

	return fmt.Sprintf("%s(%ds)", s.Kind, s.Duration)
}

// FromValue builds a [Selector] from a persisted discriminant and duration.
// A non-positive duration falls back to [DefaultDuration]. Unknown
// discriminants yield the identity selector together with an error naming
// the bad value, so callers may choose to continue with the default.
func FromValue(v, seconds int) (Selector, error) {
	k, err := KindFromValue(v)
	if err != nil {
		return None(), err
	}

	if seconds <= 0 {
		seconds = DefaultDuration
	}

	return Selector{Kind: k, Duration: seconds}, nil
}

// Periodic reports whether the kind's intensity is derived from the frame
// index. [KindNone] and [KindNoise] are not.
func (k Kind) Periodic() bool {
	return slices.Contains([]Kind{
		KindVintage, KindNegative, KindRadialBlur,
		KindPixellate, KindExposure, KindHueAdjust,
	}, k)
}

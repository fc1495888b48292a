package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/beatvid/effect"
)

func TestFromValue(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    effect.Selector
		wantErr error
		value   int
		seconds int
	}{
		"none ignores duration": {
			value:   0,
			seconds: 7,
			want:    effect.Selector{Kind: effect.KindNone, Duration: 7},
		},
		"vintage keeps duration": {
			value:   1,
			seconds: 5,
			want:    effect.Vintage(5),
		},
		"negative": {
			value:   2,
			seconds: 2,
			want:    effect.Negative(2),
		},
		"radial blur": {
			value:   3,
			seconds: 1,
			want:    effect.RadialBlur(1),
		},
		"pixellate": {
			value:   4,
			seconds: 10,
			want:    effect.Pixellate(10),
		},
		"exposure": {
			value:   5,
			seconds: 3,
			want:    effect.Exposure(3),
		},
		"hue adjust": {
			value:   6,
			seconds: 4,
			want:    effect.HueAdjust(4),
		},
		"noise": {
			value:   7,
			seconds: 3,
			want:    effect.Noise(3),
		},
		"missing duration uses default": {
			value:   1,
			seconds: 0,
			want:    effect.Vintage(effect.DefaultDuration),
		},
		"unknown discriminant": {
			value:   42,
			seconds: 3,
			want:    effect.None(),
			wantErr: effect.ErrUnknownKind,
		},
		"negative discriminant": {
			value:   -1,
			seconds: 3,
			want:    effect.None(),
			wantErr: effect.ErrUnknownKind,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := effect.FromValue(tc.value, tc.seconds)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKindRoundTrip(t *testing.T) {
	t.Parallel()

	for i, k := range effect.Kinds() {
		assert.Equal(t, i, k.Value())

		got, err := effect.KindFromValue(k.Value())
		require.NoError(t, err)
		assert.Equal(t, k, got)

		parsed, err := effect.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)

		parsed, err = effect.ParseKind(k.DisplayName())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestDisplayNames(t *testing.T) {
	t.Parallel()

	want := []string{
		"None", "Vintage", "Negative", "Radial Blur",
		"Pixellate", "Exposure", "Hue Adjust", "Noise",
	}

	got := make([]string, 0, len(want))
	for _, k := range effect.Kinds() {
		got = append(got, k.DisplayName())
	}

	assert.Equal(t, want, got)
}

func TestParseKindUnknown(t *testing.T) {
	t.Parallel()

	_, err := effect.ParseKind("sparkle")
	require.ErrorIs(t, err, effect.ErrUnknownKind)
	assert.Contains(t, err.Error(), "radial-blur")
}

func TestSelectorValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		sel     effect.Selector
		wantErr error
	}{
		"none without duration": {
			sel: effect.None(),
		},
		"vintage with duration": {
			sel: effect.Vintage(3),
		},
		"zero duration": {
			sel:     effect.Exposure(0),
			wantErr: effect.ErrInvalidDuration,
		},
		"negative duration": {
			sel:     effect.Noise(-2),
			wantErr: effect.ErrInvalidDuration,
		},
		"unknown kind": {
			sel:     effect.Selector{Kind: effect.Kind(99), Duration: 3},
			wantErr: effect.ErrUnknownKind,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.sel.Validate()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestSelectorString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", effect.None().String())
	assert.Equal(t, "radial-blur(4s)", effect.RadialBlur(4).String())
}

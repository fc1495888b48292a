package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/beatvid/ffmpeg"
	"go.jacobcolvin.com/beatvid/media"
)

type fakeProber struct {
	info *ffmpeg.Info
	err  error
}

func (p fakeProber) Probe(_ context.Context, _ string) (*ffmpeg.Info, error) {
	return p.info, p.err
}

func TestWriteSilentWAV(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		d          time.Duration
		sampleRate int
	}{
		"two seconds": {
			d:          2 * time.Second,
			sampleRate: 44100,
		},
		"default rate": {
			d:          1500 * time.Millisecond,
			sampleRate: 0,
		},
		"low rate": {
			d:          3 * time.Second,
			sampleRate: 8000,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "silence.wav")

			err := media.WriteSilentWAV(path, tc.d, tc.sampleRate)
			require.NoError(t, err)

			got, err := media.WAVDuration(path)
			require.NoError(t, err)
			assert.Equal(t, tc.d, got)
		})
	}
}

func TestLoaderDuration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	wavPath := filepath.Join(dir, "track.wav")
	require.NoError(t, media.WriteSilentWAV(wavPath, 2*time.Second, 8000))

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("not audio"), 0o600))

	audioInfo := &ffmpeg.Info{
		Duration: 5 * time.Second,
		Streams:  []ffmpeg.Stream{{Type: "audio", Codec: "mp3"}},
	}
	videoInfo := &ffmpeg.Info{
		Duration: 9 * time.Second,
		Streams:  []ffmpeg.Stream{{Type: "video", Codec: "h264"}},
	}

	tcs := map[string]struct {
		prober  media.Prober
		wantErr error
		path    string
		want    time.Duration
	}{
		"wav without prober": {
			path: wavPath,
			want: 2 * time.Second,
		},
		"prober wins": {
			prober: fakeProber{info: audioInfo},
			path:   wavPath,
			want:   5 * time.Second,
		},
		"prober error falls back": {
			prober: fakeProber{err: errors.New("no ffprobe")},
			path:   wavPath,
			want:   2 * time.Second,
		},
		"no audio stream falls back": {
			prober: fakeProber{info: videoInfo},
			path:   wavPath,
			want:   2 * time.Second,
		},
		"missing file": {
			prober:  fakeProber{info: audioInfo},
			path:    filepath.Join(dir, "missing.wav"),
			wantErr: media.ErrNotFound,
		},
		"not audio": {
			path:    textPath,
			wantErr: media.ErrUnsupported,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var opts []media.Option
			if tc.prober != nil {
				opts = append(opts, media.WithProber(tc.prober))
			}

			got, err := media.NewLoader(opts...).Duration(t.Context(), tc.path)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

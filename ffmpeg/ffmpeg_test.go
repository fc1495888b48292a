package ffmpeg_test

import (
	"context"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/beatvid/ffmpeg"
	"go.jacobcolvin.com/beatvid/media"
	"go.jacobcolvin.com/beatvid/mediatest"
	"go.jacobcolvin.com/beatvid/writer"
)

func TestScanProgress(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"frame=30",
		"fps=29.97",
		"stream_0_0_q=28.0",
		"bitrate=N/A",
		"out_time_us=1000000",
		"out_time=00:00:01.000000",
		"speed=2.5x",
		"progress=continue",
		"[libx264 @ 0x1234] using cpu capabilities: SSE2",
		"frame=60",
		"out_time_ms=2000000",
		"progress=end",
	}, "\n")

	var (
		got   []ffmpeg.Progress
		lines []string
	)

	ffmpeg.ScanProgress(strings.NewReader(input), func(p ffmpeg.Progress) {
		got = append(got, p)
	}, func(line string) {
		lines = append(lines, line)
	})

	require.Len(t, got, 2)
	assert.Equal(t, ffmpeg.Progress{
		Frame:   30,
		FPS:     29.97,
		OutTime: time.Second,
		Speed:   "2.5x",
	}, got[0])
	assert.Equal(t, ffmpeg.Progress{
		Frame:   60,
		OutTime: 2 * time.Second,
		Done:    true,
	}, got[1])
	assert.Equal(t, []string{"[libx264 @ 0x1234] using cpu capabilities: SSE2"}, lines)
}

func TestScanProgressLongLines(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		lineSize     int
		wantProgress int
		wantErr      bool
	}{
		"longer than the default scanner token": {
			lineSize:     70_000,
			wantProgress: 1,
		},
		"longer than the line limit": {
			lineSize: ffmpeg.MaxLineSize + 1,
			wantErr:  true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			input := strings.Repeat("x", tc.lineSize) + "\n" +
				strings.Repeat("[libx264] noise\n", 20_000) +
				"frame=1\nprogress=end\n"

			r := strings.NewReader(input)

			var (
				progress int
				lines    []string
			)

			ffmpeg.ScanProgress(r, func(ffmpeg.Progress) {
				progress++
			}, func(line string) {
				lines = append(lines, line)
			})

			// Everything is consumed so a writing process never blocks.
			assert.Zero(t, r.Len())
			assert.Equal(t, tc.wantProgress, progress)

			require.NotEmpty(t, lines)

			last := lines[len(lines)-1]
			if tc.wantErr {
				assert.Contains(t, last, "token too long")
			} else {
				assert.NotContains(t, last, "reading ffmpeg output")
			}
		})
	}
}

// fakeFFmpeg writes an executable shell script standing in for ffmpeg and
// ffprobe and returns its path.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()

	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found in PATH")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")

	//nolint:gosec // Test executable.
	require.NoError(t, os.WriteFile(path, []byte("#!"+sh+"\n"+body), 0o700))

	return path
}

func TestRunDrainsOversizedOutput(t *testing.T) {
	t.Parallel()

	fake := fakeFFmpeg(t, "head -c "+strconv.Itoa(ffmpeg.MaxLineSize+10)+" /dev/zero | tr '\\0' x >&2\n"+
		"echo >&2\n"+
		"head -c 200000 /dev/zero | tr '\\0' y >&2\n"+
		"exit 0\n")

	e, err := ffmpeg.New(ffmpeg.WithFFmpeg(fake), ffmpeg.WithFFprobe(fake))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
	defer cancel()

	require.NoError(t, e.Run(ctx, ffmpeg.RunOptions{Args: []string{"x"}}))
}

func TestRunThreads(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    []string
		threads int
	}{
		"default": {
			want: []string{"-i", "in.avi", "out.mp4"},
		},
		"limited": {
			threads: 2,
			want:    []string{"-i", "in.avi", "-threads", "2", "out.mp4"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			argsFile := filepath.Join(t.TempDir(), "args")
			fake := fakeFFmpeg(t, "printf '%s\\n' \"$@\" > '"+argsFile+"'\n")

			e, err := ffmpeg.New(
				ffmpeg.WithFFmpeg(fake),
				ffmpeg.WithFFprobe(fake),
				ffmpeg.WithThreads(tc.threads),
			)
			require.NoError(t, err)

			require.NoError(t, e.Run(t.Context(), ffmpeg.RunOptions{Args: []string{"-i", "in.avi", "out.mp4"}}))

			data, err := os.ReadFile(argsFile)
			require.NoError(t, err)

			got := strings.Fields(string(data))
			require.GreaterOrEqual(t, len(got), len(tc.want))
			assert.Equal(t, tc.want, got[len(got)-len(tc.want):])

			if tc.threads == 0 {
				assert.NotContains(t, got, "-threads")
			}
		})
	}
}

func TestParseProbe(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"streams": [
			{"index": 0, "codec_type": "video", "codec_name": "h264",
			 "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
			{"index": 1, "codec_type": "audio", "codec_name": "aac",
			 "sample_rate": "48000", "channels": 2, "r_frame_rate": "0/0"}
		],
		"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "4.200000"}
	}`)

	info, err := ffmpeg.ParseProbe(data)
	require.NoError(t, err)

	assert.Equal(t, 4200*time.Millisecond, info.Duration)
	assert.True(t, info.HasVideo())
	assert.True(t, info.HasAudio())
	require.Len(t, info.Streams, 2)

	v := info.Video()
	require.NotNil(t, v)
	assert.Equal(t, 1920, v.Width)
	assert.InDelta(t, 29.97, v.FrameRate, 0.01)
	assert.Equal(t, 48000, info.Streams[1].SampleRate)
	assert.Equal(t, 2, info.Streams[1].Channels)
	assert.Zero(t, info.Streams[1].FrameRate)

	_, err = ffmpeg.ParseProbe([]byte("not json"))
	require.Error(t, err)
}

func TestEncodeArgs(t *testing.T) {
	t.Parallel()

	args := ffmpeg.EncodeArgs(writer.DefaultProfile, "/tmp/out.mp4")

	assert.Equal(t, []string{
		"-f", "rawvideo",
		"-pix_fmt", "bgra",
		"-s", "1920x1080",
		"-r", "30",
		"-i", "pipe:0",
		"-an",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-r", "30",
		"/tmp/out.mp4",
	}, args)
}

func TestMergeArgs(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		codec string
		want  []string
	}{
		"h264 is copied": {
			codec: "h264",
			want:  []string{"-c:v", "copy"},
		},
		"mjpeg is re-encoded": {
			codec: "mjpeg",
			want:  []string{"-c:v", "libx264", "-preset", "medium", "-crf", "23", "-pix_fmt", "yuv420p"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			vi := &ffmpeg.Info{
				Path:     "/tmp/video",
				Duration: 3 * time.Second,
				Streams:  []ffmpeg.Stream{{Type: "video", Codec: tc.codec}},
			}

			args := ffmpeg.MergeArgs(vi, "/tmp/song.m4a", "/out/song.mp4", writer.DefaultProfile)

			head := []string{"-i", "/tmp/video", "-i", "/tmp/song.m4a", "-map", "0:v:0", "-map", "1:a:0"}
			tail := []string{"-c:a", "aac", "-t", "3.000000", "-movflags", "+faststart", "/out/song.mp4"}

			want := append(append(append([]string{}, head...), tc.want...), tail...)
			assert.Equal(t, want, args)
		})
	}
}

func TestMergeArgsDuration(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want     []string
		duration time.Duration
	}{
		"whole seconds": {
			duration: 3 * time.Second,
			want:     []string{"-t", "3.000000"},
		},
		"one frame past a second": {
			duration: time.Second + time.Second/30,
			want:     []string{"-t", "1.033333"},
		},
		"fractional": {
			duration: 2500 * time.Millisecond,
			want:     []string{"-t", "2.500000"},
		},
		"unknown duration": {},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			vi := &ffmpeg.Info{
				Path:     "/tmp/video",
				Duration: tc.duration,
				Streams:  []ffmpeg.Stream{{Type: "video", Codec: "h264"}},
			}

			args := ffmpeg.MergeArgs(vi, "/tmp/song.wav", "/out/song.mp4", writer.DefaultProfile)

			want := []string{
				"-i", "/tmp/video", "-i", "/tmp/song.wav", "-map", "0:v:0", "-map", "1:a:0",
				"-c:v", "copy", "-c:a", "aac",
			}
			want = append(want, tc.want...)
			want = append(want, "-movflags", "+faststart", "/out/song.mp4")

			assert.Equal(t, want, args)
		})
	}
}

func requireFFmpeg(t *testing.T) *ffmpeg.Executor {
	t.Helper()

	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		_, err := exec.LookPath(bin)
		if err != nil {
			t.Skipf("%s not found in PATH", bin)
		}
	}

	e, err := ffmpeg.New(ffmpeg.WithProfile(writer.Profile{
		Width:       64,
		Height:      36,
		FPS:         30,
		Codec:       "libx264",
		Preset:      "ultrafast",
		CRF:         30,
		PixelFormat: "yuv420p",
	}))
	require.NoError(t, err)

	return e
}

func TestEncodeAndMerge(t *testing.T) {
	t.Parallel()

	e := requireFFmpeg(t)

	// The silent video covers the audio rounded up to whole seconds and the
	// output spans the video.
	tcs := map[string]struct {
		audio time.Duration
		want  float64
	}{
		"whole seconds": {
			audio: 2 * time.Second,
			want:  2,
		},
		"fractional seconds": {
			audio: 1500 * time.Millisecond,
			want:  2,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()

			w := writer.New(ffmpeg.NewEncoder(e, 2),
				writer.WithProfile(e.Profile()),
				writer.WithTempDir(dir),
			)

			src := mediatest.NewSource(64, 36, color.RGBA{R: 255, A: 255})
			frames := writer.TotalFrames(tc.audio, e.Profile().FPS)

			res, err := w.Write(t.Context(), src, frames, nil)
			require.NoError(t, err)

			vi, err := e.Probe(t.Context(), res.Path)
			require.NoError(t, err)
			require.True(t, vi.HasVideo())
			assert.False(t, vi.HasAudio())
			assert.InDelta(t, tc.want, vi.Duration.Seconds(), 1.0/30)

			audio := filepath.Join(dir, "song.wav")
			require.NoError(t, media.WriteSilentWAV(audio, tc.audio, 44100))

			out := filepath.Join(dir, "song.mp4")

			var last float64

			err = e.Merge(t.Context(), res.Path, audio, out, func(f float64) {
				assert.GreaterOrEqual(t, f, 0.0)
				assert.LessOrEqual(t, f, 1.0)
				last = f
			})
			require.NoError(t, err)
			assert.Positive(t, last)

			oi, err := e.Probe(t.Context(), out)
			require.NoError(t, err)
			assert.True(t, oi.HasVideo())
			assert.True(t, oi.HasAudio())
			assert.InDelta(t, tc.want, oi.Duration.Seconds(), 1.0/30)
		})
	}
}

func TestMergeMissingTracks(t *testing.T) {
	t.Parallel()

	e := requireFFmpeg(t)
	dir := t.TempDir()

	audio := filepath.Join(dir, "song.wav")
	require.NoError(t, media.WriteSilentWAV(audio, time.Second, 8000))

	// A WAV has no video stream.
	err := e.Merge(t.Context(), audio, audio, filepath.Join(dir, "out.mp4"), nil)
	require.ErrorIs(t, err, ffmpeg.ErrNoVideoTrack)
}

func TestNewNotFound(t *testing.T) {
	t.Parallel()

	_, err := ffmpeg.New(ffmpeg.WithFFmpeg("beatvid-no-such-ffmpeg"))
	require.ErrorIs(t, err, ffmpeg.ErrNotFound)
}

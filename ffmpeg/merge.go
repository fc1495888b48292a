package ffmpeg

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.jacobcolvin.com/beatvid/writer"
)

var (
	// ErrNoVideoTrack indicates the video input has no video stream.
	ErrNoVideoTrack = errors.New("no video track")
	// ErrNoAudioTrack indicates the audio input has no audio stream.
	ErrNoAudioTrack = errors.New("no audio track")
)

// Merge muxes the first video stream of video with the first audio stream of
// audio into an MP4 at out.
//
// The output spans the video's duration. Audio longer than the video is cut
// and shorter audio leaves the tail silent. H.264 video is copied as is;
// anything else is re-encoded with the executor's profile. Audio is encoded
// as AAC and the file is laid out for progressive playback.
//
// onProgress, if not nil, receives the fraction of the output written.
func (e *Executor) Merge(ctx context.Context, video, audio, out string, onProgress func(float64)) error {
	vi, err := e.Probe(ctx, video)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoVideoTrack, err)
	}

	if !vi.HasVideo() {
		return fmt.Errorf("%w: %s", ErrNoVideoTrack, video)
	}

	ai, err := e.Probe(ctx, audio)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoAudioTrack, err)
	}

	if !ai.HasAudio() {
		return fmt.Errorf("%w: %s", ErrNoAudioTrack, audio)
	}

	args := MergeArgs(vi, audio, out, e.profile)

	e.logger.Debug("merging",
		slog.String("video", video),
		slog.String("audio", audio),
		slog.String("out", out),
		slog.Duration("duration", vi.Duration),
	)

	err = e.Run(ctx, RunOptions{
		Args: args,
		OnProgress: func(p Progress) {
			if onProgress == nil || vi.Duration <= 0 {
				return
			}

			onProgress(min(float64(p.OutTime)/float64(vi.Duration), 1))
		},
	})
	if err != nil {
		return fmt.Errorf("merge %s: %w", out, err)
	}

	return nil
}

// MergeArgs returns the ffmpeg arguments Merge runs for the probed video
// vi, the audio file at audio and the output path out.
func MergeArgs(vi *Info, audio, out string, p writer.Profile) []string {
	args := []string{
		"-i", vi.Path,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}

	if v := vi.Video(); v != nil && v.Codec == "h264" {
		args = append(args, "-c:v", "copy")
	} else {
		args = append(args, "-c:v", cmp.Or(p.Codec, writer.DefaultProfile.Codec))
		if p.Preset != "" {
			args = append(args, "-preset", p.Preset)
		}

		if p.CRF > 0 {
			args = append(args, "-crf", strconv.Itoa(p.CRF))
		}

		if p.PixelFormat != "" {
			args = append(args, "-pix_fmt", p.PixelFormat)
		}
	}

	args = append(args, "-c:a", "aac")

	if vi.Duration > 0 {
		args = append(args, "-t", formatSeconds(vi.Duration))
	}

	return append(args, "-movflags", "+faststart", out)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

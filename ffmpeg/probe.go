package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Stream is one elementary stream of a media file.
type Stream struct {
	Type       string
	Codec      string
	Index      int
	Width      int
	Height     int
	FrameRate  float64
	SampleRate int
	Channels   int
}

// Info describes a media file as reported by ffprobe.
type Info struct {
	Path     string
	Format   string
	Streams  []Stream
	Duration time.Duration
}

// HasVideo reports whether the file has at least one video stream.
func (i *Info) HasVideo() bool {
	return i.first("video") != nil
}

// HasAudio reports whether the file has at least one audio stream.
func (i *Info) HasAudio() bool {
	return i.first("audio") != nil
}

// Video returns the first video stream, or nil.
func (i *Info) Video() *Stream {
	return i.first("video")
}

func (i *Info) first(kind string) *Stream {
	for n := range i.Streams {
		if i.Streams[n].Type == kind {
			return &i.Streams[n]
		}
	}

	return nil
}

// Probe runs ffprobe on path.
func (e *Executor) Probe(ctx context.Context, path string) (*Info, error) {
	if path == "" {
		return nil, errors.New("probe: empty path")
	}

	//nolint:gosec // The path is a user-selected media file.
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		e.logger.Debug("ffprobe failed",
			slog.String("path", path),
			slog.String("stderr", strings.TrimSpace(stderr.String())),
		)

		return nil, fmt.Errorf("%w: ffprobe %s: %w: %s",
			ErrFailed, path, err, strings.TrimSpace(stderr.String()))
	}

	info, err := ParseProbe(out)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	info.Path = path

	return info, nil
}

// ParseProbe decodes ffprobe's JSON output (-show_format -show_streams).
func ParseProbe(data []byte) (*Info, error) {
	var probe probeResult

	err := json.Unmarshal(data, &probe)
	if err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &Info{Format: probe.Format.FormatName}

	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err == nil && dur > 0 {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	for _, s := range probe.Streams {
		st := Stream{
			Index:     s.Index,
			Type:      s.CodecType,
			Codec:     s.CodecName,
			Width:     s.Width,
			Height:    s.Height,
			FrameRate: parseRate(s.RFrameRate),
			Channels:  s.Channels,
		}

		sr, err := strconv.Atoi(s.SampleRate)
		if err == nil {
			st.SampleRate = sr
		}

		info.Streams = append(info.Streams, st)
	}

	return info, nil
}

// parseRate parses an ffprobe rational such as "30/1" or "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}

		return f
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	return n / d
}

// probeResult matches ffprobe's JSON output.
type probeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		RFrameRate string `json:"r_frame_rate"`
		SampleRate string `json:"sample_rate"`
		Index      int    `json:"index"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

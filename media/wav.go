package media

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultSampleRate is used by [WriteSilentWAV] when no rate is given.
const DefaultSampleRate = 44100

// WriteSilentWAV writes d of 16-bit mono silence to path.
func WriteSilentWAV(path string, d time.Duration, sampleRate int) error {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	f, err := os.Create(path) //nolint:gosec // Caller-chosen output path.
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	samples := int(d * time.Duration(sampleRate) / time.Second)

	err = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, samples),
		SourceBitDepth: 16,
	})
	if err != nil {
		f.Close() //nolint:errcheck,gosec // Already failing.

		return fmt.Errorf("write %s: %w", path, err)
	}

	err = enc.Close()
	if err != nil {
		f.Close() //nolint:errcheck,gosec // Already failing.

		return fmt.Errorf("finalize %s: %w", path, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

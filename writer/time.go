package writer

import (
	"fmt"
	"math"
	"time"
)

// Time is a rational presentation timestamp, Value/Scale seconds. It is
// exact: frame k at r frames per second is Time{k, r} regardless of k.
type Time struct {
	Value int64
	Scale int32
}

// FrameTime returns the presentation time of frame at fps.
func FrameTime(frame int64, fps int32) Time {
	return Time{Value: frame, Scale: fps}
}

// Seconds returns t as floating point seconds, for display only.
func (t Time) Seconds() float64 {
	if t.Scale == 0 {
		return math.NaN()
	}

	return float64(t.Value) / float64(t.Scale)
}

// Duration returns t rounded to the nearest nanosecond.
func (t Time) Duration() time.Duration {
	if t.Scale == 0 {
		return 0
	}

	whole := t.Value / int64(t.Scale)
	rem := t.Value % int64(t.Scale)

	return time.Duration(whole)*time.Second +
		time.Duration((rem*int64(time.Second)+int64(t.Scale)/2)/int64(t.Scale))
}

// Cmp compares t and u exactly and returns -1, 0 or +1.
func (t Time) Cmp(u Time) int {
	l := t.Value * int64(u.Scale)
	r := u.Value * int64(t.Scale)

	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}

	return 0
}

// String formats t as "value/scale".
func (t Time) String() string {
	return fmt.Sprintf("%d/%d", t.Value, t.Scale)
}

// TotalFrames returns the number of frames needed to cover d at fps:
// d rounded up to whole seconds, times fps.
func TotalFrames(d time.Duration, fps int) int {
	if d <= 0 || fps <= 0 {
		return 0
	}

	secs := int((d + time.Second - 1) / time.Second)

	return secs * fps
}

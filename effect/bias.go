package effect

import "math"

// FPS is the fixed frame rate every bias is computed against.
const FPS = 30

// Oscillation returns sin(frame / (fps*seconds)).
//
// The phase is split into whole radians and a remainder before the sine is
// taken so that arbitrarily large frame indices keep full precision:
// frame = q*p + r gives sin(q + r/p) = sin(q)cos(r/p) + cos(q)sin(r/p).
// Non-positive fps or seconds are treated as 1.
func Oscillation(frame, fps, seconds int) float64 {
	period := int64(max(fps, 1)) * int64(max(seconds, 1))

	f := int64(frame)
	q, r := f/period, f%period

	sq, cq := sincosInt(q)
	sb, cb := math.Sincos(float64(r) / float64(period))

	return clampUnit(sq*cb + cq*sb)
}

// sincosInt returns the sine and cosine of n radians. A float64 holds
// integers exactly only up to 2^53, so n is split into 32-bit halves that
// are each exact: n = hi*2^32 + lo.
func sincosInt(n int64) (sin, cos float64) {
	hi, lo := n>>32, n&(1<<32-1)

	sh, ch := math.Sincos(math.Ldexp(float64(hi), 32))
	sl, cl := math.Sincos(float64(lo))

	return sh*cl + ch*sl, ch*cl - sh*sl
}

// Bias returns the canonical |sin(frame / (fps*seconds))| in [0, 1].
func Bias(frame, fps, seconds int) float64 {
	return math.Abs(Oscillation(frame, fps, seconds))
}

// NegativeBias returns -|sin| - 0.75, in [-1.75, -0.75].
func NegativeBias(frame, fps, seconds int) float64 {
	return -Bias(frame, fps, seconds) - 0.75
}

// ExposureBias returns the signed exposure in EV stops, in [-2, 2].
func ExposureBias(frame, fps, seconds int) float32 {
	return float32(Oscillation(frame, fps, seconds)) * 2
}

// HueAngle returns the signed hue rotation in radians, in [-pi, pi].
func HueAngle(frame, fps, seconds int) float32 {
	return float32(Oscillation(frame, fps, seconds)) * math.Pi
}

// PixellateBias returns |sin| rounded to single precision.
func PixellateBias(frame, fps, seconds int) float32 {
	return float32(Bias(frame, fps, seconds))
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

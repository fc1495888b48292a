package effect

// noiseTile is the side of the repeating random field.
const noiseTile = 512

// noise returns a uniformly distributed value in [0, 1) for channel ch of
// the random field at integer coordinate (x, y). The field is a fixed
// function of its coordinates and repeats every noiseTile pixels.
func noise(x, y, ch int) float32 {
	x = ((x % noiseTile) + noiseTile) % noiseTile
	y = ((y % noiseTile) + noiseTile) % noiseTile

	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ uint32(ch)*0xcb1ab31f
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16

	return float32(h>>8) / (1 << 24)
}

// noiseAt samples the field at real coordinates, snapping to the containing
// cell.
func noiseAt(x, y float64, ch int) float32 {
	return noise(floor(x), floor(y), ch)
}

func floor(v float64) int {
	i := int(v)
	if float64(i) > v {
		i--
	}

	return i
}

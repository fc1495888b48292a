// Package writer turns a stream of rendered frames into a silent video
// container.
//
// A [Writer] pulls frames from a [Source] one at a time, paced by the
// readiness channel of a [Sink], and stamps each with an exact rational
// presentation time (see [Time]). Sinks come from a [Backend]: the
// [MJPEGBackend] in this package writes Motion JPEG AVI files in pure Go, and
// package ffmpeg provides an H.264 backend that pipes raw frames to an
// external encoder.
//
// A frame the source reports as unavailable is retried a bounded number of
// times before the write fails with [ErrFrameStarved]. Every failure removes
// the partially written file.
package writer

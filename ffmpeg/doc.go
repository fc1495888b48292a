// Package ffmpeg drives the ffmpeg and ffprobe executables.
//
// An [Executor] resolves both tools once and runs them with cancellation
// tied to a [context.Context]. It provides media probing ([Executor.Probe]),
// a raw-frame H.264 encoder usable as a [writer.Backend] ([Encoder]) and the
// final audio/video mux ([Executor.Merge]).
//
// ffmpeg reports progress with "-progress pipe:2"; [ScanProgress] turns
// that stream into [Progress] values.
package ffmpeg

// Package assembly produces finished videos from a frame source and an audio
// file.
//
// [Assembler.CreateVideo] checks its inputs, then runs a [Job] in the
// background: it reads the audio duration, writes one silent video frame per
// 1/30 s of (rounded up) audio with package writer, muxes the audio in
// through a [Merger] and reports progress along the way. Writing accounts for
// the first [WriteWeight] of the reported fraction and merging for the rest.
//
// Failures fall into three classes matched with [errors.Is]:
// [ErrValidation] for missing inputs (returned synchronously),
// [ErrTrackComposition] for media without the expected track and
// [ErrBackend] for encoder or merger failures.
package assembly

// Package frame turns effect output into encoder-ready pixel buffers.
//
// A [Session] pairs one base image with one [effect.Selector]. Video export
// pulls frames by explicit index with [Session.At]; a live preview uses the
// monotonically increasing counter behind [Session.Next]. A frame that
// cannot be produced yields [ErrUnavailable], which callers treat as "skip
// and retry" rather than a fatal error.
package frame

// Package media loads audio assets.
//
// The duration of an audio file decides how many frames a video needs.
// [Loader.Duration] asks ffprobe when one is configured and falls back to
// reading WAV headers directly. [WriteSilentWAV] produces silent tracks for
// previews and tests.
package media

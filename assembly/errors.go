package assembly

import (
	"errors"
	"fmt"
)

// User-facing failure messages.
const (
	MsgOutputDirMissing = "Output directory does not exist!"
	MsgAudioMissing     = "Audio file does not exist!"
	MsgVideoTrack       = "Failed to load video track"
	MsgAudioTrack       = "Failed to load Audio track"
)

var (
	// ErrValidation indicates unusable job inputs. It is returned
	// synchronously by [Assembler.CreateVideo] before any work starts.
	ErrValidation = errors.New("invalid job")
	// ErrTrackComposition indicates a media input lacks the expected track.
	ErrTrackComposition = errors.New("track composition failed")
	// ErrBackend indicates the encoder or merger failed.
	ErrBackend = errors.New("backend failed")
)

// ValidationError describes a missing or unusable input. Its message is
// suitable for showing to the user as is.
type ValidationError struct {
	Err     error
	Message string
	Path    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is [ErrValidation].
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func trackError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTrackComposition, msg, err)
}

func backendError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, stage, err)
}

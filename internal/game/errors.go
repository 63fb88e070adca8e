package game

import "errors"

var (
	// ErrConfiguration means the session cannot start: bad tuning or missing
	// initial level geometry.
	ErrConfiguration = errors.New("configuration error")

	// ErrGenerationFailed means the level factory could not produce a level.
	// Contiguity cannot be approximated, so there is no retry.
	ErrGenerationFailed = errors.New("level generation failed")

	// ErrGenerationNotReady means a hole completed before the next level was
	// spliced into the window.
	ErrGenerationNotReady = errors.New("next level not ready")

	// ErrSessionHalted is returned for input delivered after a fatal error.
	ErrSessionHalted = errors.New("session halted")
)

// IsFatal reports whether err must halt the session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrGenerationFailed) ||
		errors.Is(err, ErrGenerationNotReady)
}

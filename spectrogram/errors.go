package spectrogram

import (
	"errors"

	"github.com/RyanBlaney/spectro/transcode"
)

var (
	// ErrResolutionMismatch is returned when two spectrograms with different
	// time or frequency resolution are combined.
	ErrResolutionMismatch = errors.New("spectrograms have different resolutions")

	// ErrFrequencyRangeMismatch is returned by Append when the frequency axes differ.
	ErrFrequencyRangeMismatch = errors.New("spectrograms have different frequency ranges")

	// ErrEmptySegment is returned when a requested audio segment holds no samples.
	ErrEmptySegment = transcode.ErrEmptySegment

	// ErrInvalidArgument is returned for malformed images, options and parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRejected is returned by Interbreed when the attempt budget runs out
	// before enough composites were accepted.
	ErrRejected = errors.New("too many composites rejected")
)

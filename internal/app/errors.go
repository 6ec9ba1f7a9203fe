package session

import "errors"

// Sentinel kinds for submission failures caused by the submitter. Everything
// else coming out of Analyze is system-class and surfaces generically.
var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrAlreadyAnalyzed  = errors.New("content already analyzed")
)

// IsUserInput reports whether err should be shown to the submitter as their
// own mistake rather than logged as a failure.
func IsUserInput(err error) bool {
	return errors.Is(err, ErrUnsupportedMedia) || errors.Is(err, ErrAlreadyAnalyzed)
}

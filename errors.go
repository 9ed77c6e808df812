// errors.go defines public error types for the rnnoise package.

package rnnoise

import "errors"

// Public error types for constructing a DenoiseState. process_frame
// itself never returns an error: a caller passing the wrong slice
// lengths is a programming error and causes a panic (see state.go).
var (
	// ErrNilModel indicates NewDenoiseStateWithModel was given a nil model.
	ErrNilModel = errors.New("rnnoise: model must not be nil")
)

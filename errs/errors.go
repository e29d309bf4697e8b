// Package errs defines the sentinel errors returned by coltab packages.
//
// Errors are wrapped with additional context using fmt.Errorf and the %w verb,
// so callers should match them with errors.Is:
//
//	if errors.Is(err, errs.ErrTruncatedStream) {
//	    // the file ended before a header or payload was complete
//	}
package errs

import "errors"

// Codec failures. The selection policy recovers from these by falling back to
// Direct; they never reach a table writer's caller.
var (
	// ErrDictionaryOverflow is returned when a column holds more distinct values than
	// a one-byte index can address.
	ErrDictionaryOverflow = errors.New("dictionary overflow: more than 256 distinct values")
	// ErrDeltaOverflow is returned when the difference of two consecutive values does
	// not fit in a signed byte.
	ErrDeltaOverflow = errors.New("delta overflow: difference outside [-128, 127]")
	// ErrUnsupportedType is returned when delta encoding is attempted on a float or empty column.
	ErrUnsupportedType = errors.New("unsupported column type for representation")
	// ErrNotConstant is returned when constant encoding is attempted on differing values.
	ErrNotConstant = errors.New("column is not constant")
)

// Decode failures.
var (
	ErrUnknownRepresentation = errors.New("unknown representation kind")
	ErrTruncatedStream       = errors.New("truncated stream")
	ErrCorruptPayload        = errors.New("corrupt payload")
	ErrChecksumMismatch      = errors.New("row group checksum mismatch")
	ErrInvalidHeader         = errors.New("invalid header")
)

// Standalone tool failures.
var (
	ErrEmptyInput    = errors.New("input is empty")
	ErrUnknownMethod = errors.New("unknown encoding method")
	ErrInputTooLarge = errors.New("input exceeds 4 GiB container limit")
)

// Data model and configuration failures.
var (
	ErrMixedValueKinds      = errors.New("column mixes value kinds")
	ErrColumnLengthMismatch = errors.New("column length mismatch")
	ErrInvalidColumnCount   = errors.New("invalid column count")
	ErrInvalidRowGroupSize  = errors.New("invalid row group size")
	ErrInvalidRowCount      = errors.New("invalid row count")
	ErrUnknownCompression   = errors.New("unknown compression type")
)

// IsCodecFailure reports whether err is one of the codec failures a selection
// policy is allowed to recover from by falling back to Direct.
func IsCodecFailure(err error) bool {
	return errors.Is(err, ErrDictionaryOverflow) ||
		errors.Is(err, ErrDeltaOverflow) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrNotConstant)
}

package colblock

import "errors"

// Error taxonomy per the format's error handling design: corruption and I/O
// failures are always fatal and never retried; usage errors indicate the
// caller violated a documented precondition. sntable takes the same
// plain-sentinel-plus-fmt.Errorf-wrapping approach rather than reaching for
// a wrapping library, and colblock follows suit.
var (
	// ErrCorruption is wrapped by errors describing an inconsistent header,
	// a non-monotonic block index, a decompressed-size mismatch, or an
	// unknown algorithm id encountered while reading.
	ErrCorruption = errors.New("colblock: corrupt column")

	// ErrShortIO is wrapped by errors describing a short read/write or a
	// seek past the end of the underlying file.
	ErrShortIO = errors.New("colblock: short read or write")

	// ErrUsage is wrapped by errors describing a violated precondition,
	// such as a row range exceeding the column length or an output buffer
	// too small to hold the requested slice.
	ErrUsage = errors.New("colblock: invalid usage")
)

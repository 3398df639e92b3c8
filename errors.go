package vecash

import "errors"

// Sentinel errors for the discrete failure kinds the engine can report.
// Constructor-style calls in the reference C implementation return a null
// handle on failure; Go callers get a normal error instead.
var (
	// ErrOutOfRange is returned when a block number falls outside
	// [0, epochLength*maxEpoch).
	ErrOutOfRange = errors.New("vecash: block number out of range")

	// ErrInvalidCacheSize is returned when a cache size is not a multiple of
	// the node size.
	ErrInvalidCacheSize = errors.New("vecash: invalid cache size")

	// ErrInvalidDatasetSize is returned when a dataset size is not aligned to
	// a mix page or to the node size.
	ErrInvalidDatasetSize = errors.New("vecash: invalid dataset size")

	// ErrCanceled is returned when a progress callback aborts DAG
	// materialization.
	ErrCanceled = errors.New("vecash: dataset generation canceled")

	// ErrClosed is returned by Engine methods called after Close.
	ErrClosed = errors.New("vecash: engine closed")
)

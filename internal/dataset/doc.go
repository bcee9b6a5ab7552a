// Package dataset loads the precomputed inputs of a retrieval experiment:
// ground-truth rankings, reference score pitch contours, query pitch tracks,
// per-query candidate result tables, and DTW alignment paths.
//
// JSON files are accepted as written by Python's json module, so bare NaN and
// Infinity tokens load as NaN (an unvoiced frame). Rankings keep the key order
// of their source file; every other mapping is keyed lookup only.
//
// Everything returned by this package is read-only after load.
package dataset

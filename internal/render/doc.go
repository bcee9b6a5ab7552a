// Package render draws the diagnostic figures of an error case with
// gonum/plot: an overlay of the query, ground-truth and best-match contours,
// and a view of the DTW alignment between the query and its ground truth.
//
// When saving is disabled a figure is still drawn in full to an in-memory
// canvas and discarded, so failures surface the same way in both modes.
package render

// Command melodicsim inspects the retrieval failures of a melodic similarity
// experiment: it lists the queries whose ground-truth reference ranked poorly,
// rebuilds why from the per-query candidate tables, and draws the contour and
// alignment figures for each of them.
package main

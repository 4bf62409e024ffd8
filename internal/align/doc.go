// Package align implements global pairwise alignment with affine gap costs
// (Gotoh) against a fixed reference.
//
// The aligner is total: any two sequences align, including empty ones and
// sequences with no meaningful homology. Unrelated inputs simply produce
// low-scoring alignments with many differing columns.
package align

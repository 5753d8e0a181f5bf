// Package rgp detects regions of genomic plasticity on annotated contigs.
//
// Each contig is scored gene by gene: variable genes add a flat gain while runs
// of persistent genes subtract an exponentially growing penalty. The resulting
// score chain is then emptied greedily, extracting the best-scoring run of
// genes, rescoring what follows it, and repeating until no run reaches the
// minimum score.
package rgp

package core

import "errors"

// Precondition failures of PredictRGP. They are reported before any contig is
// scored and leave the store untouched.
var (
	ErrMissingAnnotations = errors.New("pangenome has no annotated organisms")
	ErrMissingFamilies    = errors.New("pangenome genes are not clustered into families")
	ErrMissingPartitions  = errors.New("pangenome families are not partitioned")
)

var (
	// ErrRegionsExist is returned when regions were already predicted and the
	// caller did not ask to replace them.
	ErrRegionsExist = errors.New("regions of genomic plasticity already predicted")
	// ErrNoBlobStore is returned by blob-backed operations on a service built
	// without WithBlobStore.
	ErrNoBlobStore = errors.New("no blob store configured")
	// ErrNoRegions is returned by Export when nothing has been predicted.
	ErrNoRegions = errors.New("no regions predicted")
)

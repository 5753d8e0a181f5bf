package rgp

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid rgp parameters")

// Params configures scoring and region filtering.
type Params struct {
	// PersistentPenalty is the base of the penalty applied to the k-th
	// consecutive persistent gene: -(PersistentPenalty^k).
	PersistentPenalty float64
	// VariableGain is added for every gene that is not penalized.
	VariableGain float64
	// MinLength is the genomic span (bp) a region must exceed to be kept.
	MinLength int
	// MinScore is the lowest seed score a region may be extracted from.
	MinScore float64
	// DupMargin is the fraction of carrying genomes in which a family must
	// be duplicated to be treated as multigenic.
	DupMargin float64
}

// DefaultParams returns the standard prediction settings.
func DefaultParams() Params {
	return Params{
		PersistentPenalty: 3,
		VariableGain:      1,
		MinLength:         3000,
		MinScore:          4,
		DupMargin:         0.05,
	}
}

// Validate rejects settings the extraction loop cannot work with.
func (p Params) Validate() error {
	switch {
	case !finite(p.PersistentPenalty) || p.PersistentPenalty <= 0:
		return fmt.Errorf("%w: persistent penalty must be positive, got %v", ErrInvalidParams, p.PersistentPenalty)
	case !finite(p.VariableGain) || p.VariableGain < 0:
		return fmt.Errorf("%w: variable gain must be non-negative, got %v", ErrInvalidParams, p.VariableGain)
	case p.MinLength < 0:
		return fmt.Errorf("%w: min length must be non-negative, got %d", ErrInvalidParams, p.MinLength)
	case !finite(p.MinScore) || p.MinScore < 0:
		return fmt.Errorf("%w: min score must be non-negative, got %v", ErrInvalidParams, p.MinScore)
	case math.IsNaN(p.DupMargin) || p.DupMargin < 0 || p.DupMargin > 1:
		return fmt.Errorf("%w: dup margin must be within [0,1], got %v", ErrInvalidParams, p.DupMargin)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

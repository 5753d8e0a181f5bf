package core

import (
	"context"
	"fmt"

	"github.com/biogo/store/interval"

	"panrgp/internal/regionindex"
	"panrgp/pkg/domain"
)

// NewRegionDisjointnessRule blocks commits in which two regions of the same
// contig share a gene.
func NewRegionDisjointnessRule() domain.Rule {
	return regionDisjointnessRule{}
}

type regionDisjointnessRule struct{}

func (regionDisjointnessRule) Name() string { return "region_disjointness" }

type positionSpan struct {
	uid    uintptr
	region string
	start  int
	end    int
}

func (p positionSpan) Overlap(b interval.IntRange) bool { return p.start < b.End && b.Start < p.end }
func (p positionSpan) ID() uintptr                      { return p.uid }
func (p positionSpan) Range() interval.IntRange         { return interval.IntRange{Start: p.start, End: p.end} }

func (r regionDisjointnessRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if !touches(changes, domain.EntityRegion) {
		return res, nil
	}
	trees := make(map[[2]string]*interval.IntTree)
	var uid uintptr
	for _, region := range view.ListRegions() {
		key := [2]string{region.OrganismID, region.Contig}
		tree, ok := trees[key]
		if !ok {
			tree = &interval.IntTree{}
			trees[key] = tree
		}
		for _, iv := range regionindex.PositionIntervals(region) {
			uid++
			span := positionSpan{uid: uid, region: region.Name, start: iv[0], end: iv[1]}
			for _, hit := range tree.Get(span) {
				other := hit.(positionSpan)
				if other.region == region.Name {
					continue
				}
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     r.Name(),
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("region %s shares genes with %s on %s", region.Name, other.region, region.Contig),
					Entity:   domain.EntityRegion,
					EntityID: region.ID,
				})
			}
			if err := tree.Insert(span, false); err != nil {
				return domain.Result{}, err
			}
		}
	}
	return res, nil
}

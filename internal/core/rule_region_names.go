package core

import (
	"context"
	"fmt"

	"panrgp/pkg/domain"
)

// NewRegionNameRule blocks duplicate region names.
func NewRegionNameRule() domain.Rule {
	return regionNameRule{}
}

type regionNameRule struct{}

func (regionNameRule) Name() string { return "region_name_unique" }

func (r regionNameRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if !touches(changes, domain.EntityRegion) {
		return res, nil
	}
	seen := make(map[string]struct{})
	for _, region := range view.ListRegions() {
		if region.Name == "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("region %d of %s/%s has no name", region.LocalID, region.OrganismID, region.Contig),
				Entity:   domain.EntityRegion,
			})
			continue
		}
		if _, dup := seen[region.Name]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("region name %s is not unique", region.Name),
				Entity:   domain.EntityRegion,
				EntityID: region.ID,
			})
		}
		seen[region.Name] = struct{}{}
	}
	return res, nil
}

package core

import (
	"context"
	"fmt"

	"panrgp/pkg/domain"
)

// NewRegionGeneReferenceRule blocks regions whose genes do not match the
// stored contig at the recorded positions.
func NewRegionGeneReferenceRule() domain.Rule {
	return regionGeneReferenceRule{}
}

type regionGeneReferenceRule struct{}

func (regionGeneReferenceRule) Name() string { return "region_gene_reference" }

func (r regionGeneReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if !touches(changes, domain.EntityRegion, domain.EntityOrganism) {
		return res, nil
	}
	orgs := make(map[string]domain.Organism)
	for _, region := range view.ListRegions() {
		org, ok := orgs[region.OrganismID]
		if !ok {
			if org, ok = view.FindOrganism(region.OrganismID); !ok {
				res.Violations = append(res.Violations, r.violation(region, "references unknown organism "+region.OrganismID))
				continue
			}
			orgs[region.OrganismID] = org
		}
		if msg := checkRegionGenes(org, region); msg != "" {
			res.Violations = append(res.Violations, r.violation(region, msg))
		}
	}
	return res, nil
}

func (r regionGeneReferenceRule) violation(region domain.Region, msg string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("region %s %s", region.Name, msg),
		Entity:   domain.EntityRegion,
		EntityID: region.ID,
	}
}

func checkRegionGenes(org domain.Organism, region domain.Region) string {
	for _, c := range org.Contigs {
		if c.Name != region.Contig {
			continue
		}
		for _, g := range region.Genes {
			if g.Position < 0 || g.Position >= len(c.Genes) || c.Genes[g.Position].ID != g.ID {
				return fmt.Sprintf("gene %s is not at position %d of %s", g.ID, g.Position, c.Name)
			}
		}
		return ""
	}
	return "references unknown contig " + region.Contig
}

// NewFamilyReferenceRule warns about genes whose family is not stored.
func NewFamilyReferenceRule() domain.Rule {
	return familyReferenceRule{}
}

type familyReferenceRule struct{}

func (familyReferenceRule) Name() string { return "gene_family_reference" }

func (r familyReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if !touches(changes, domain.EntityOrganism, domain.EntityFamily) {
		return res, nil
	}
	for _, org := range view.ListOrganisms() {
		missing, unclustered := 0, 0
		for _, c := range org.Contigs {
			for _, g := range c.Genes {
				switch {
				case g.FamilyID == "":
					unclustered++
				default:
					if _, ok := view.FindFamily(g.FamilyID); !ok {
						missing++
					}
				}
			}
		}
		if missing+unclustered == 0 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("organism %s has %d genes without family and %d referencing unknown families", org.Name, unclustered, missing),
			Entity:   domain.EntityOrganism,
			EntityID: org.ID,
		})
	}
	return res, nil
}

package rgp

import "panrgp/pkg/domain"

// ContigRegions scores one contig and returns its retained regions, named and
// numbered in extraction order. Empty contigs yield nothing.
func ContigRegions(org domain.Organism, contig domain.Contig, fams Families, scheme NamingScheme, p Params) []domain.Region {
	if len(contig.Genes) == 0 {
		return nil
	}
	chain := BuildChain(contig, fams, p)
	candidates := chain.Extract()
	if len(candidates) == 0 {
		return nil
	}
	scope := scheme.Scope(org, contig)
	regions := make([]domain.Region, 0, len(candidates))
	for id, cand := range candidates {
		genes := make([]domain.RegionGene, len(cand.Positions))
		for i, pos := range cand.Positions {
			genes[i] = domain.RegionGene{ID: contig.Genes[pos].ID, Position: pos}
		}
		name := domain.RegionName(scope, id)
		regions = append(regions, domain.Region{
			Base:         domain.Base{ID: name},
			Name:         name,
			OrganismID:   org.ID,
			OrganismName: org.Name,
			Contig:       contig.Name,
			LocalID:      id,
			Score:        cand.Score,
			Start:        contig.Genes[cand.Positions[0]].Start,
			Stop:         contig.Genes[cand.Seed].Stop,
			Genes:        genes,
		})
	}
	return regions
}

// OrganismRegions runs ContigRegions over every contig of org, in contig order.
func OrganismRegions(org domain.Organism, fams Families, scheme NamingScheme, p Params) []domain.Region {
	var out []domain.Region
	for _, contig := range org.Contigs {
		out = append(out, ContigRegions(org, contig, fams, scheme, p)...)
	}
	return out
}

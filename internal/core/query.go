package core

import (
	"context"

	"panrgp/internal/regionindex"
)

// RegionFilter narrows Regions. Empty fields match everything.
type RegionFilter struct {
	OrganismID string
	Contig     string
	MinScore   float64
}

func (f RegionFilter) match(r Region) bool {
	return (f.OrganismID == "" || r.OrganismID == f.OrganismID) &&
		(f.Contig == "" || r.Contig == f.Contig) &&
		r.Score >= f.MinScore
}

// Regions lists stored regions in prediction order.
func (s *Service) Regions(ctx context.Context, filter RegionFilter) ([]Region, error) {
	var out []Region
	err := s.run(ctx, "list_regions", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			for _, r := range v.ListRegions() {
				if filter.match(r) {
					out = append(out, r)
				}
			}
			return nil
		})
	})
	return out, err
}

// Locus is a 1-based coordinate on an organism contig.
type Locus struct {
	OrganismID string
	Contig     string
	Position   int
}

// Locate returns the regions covering locus.
func (s *Service) Locate(ctx context.Context, locus Locus) ([]Region, error) {
	var out []Region
	err := s.run(ctx, "locate", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			idx, err := regionindex.New(v.ListRegions())
			if err != nil {
				return err
			}
			out = idx.Locate(locus.OrganismID, locus.Contig, locus.Position)
			return nil
		})
	})
	return out, err
}

// Overview summarizes the stored pangenome.
type Overview struct {
	Status     Status
	Organisms  int
	Families   int
	Regions    int
	Parameters *RGPParameters
}

// Overview reports the status flags, record counts and the parameters of
// the latest prediction.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	err := s.run(ctx, "overview", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			out = Overview{
				Status:    v.Status(),
				Organisms: len(v.ListOrganisms()),
				Families:  len(v.ListFamilies()),
				Regions:   len(v.ListRegions()),
			}
			if p, ok := v.Parameters(); ok {
				out.Parameters = &p
			}
			return nil
		})
	})
	return out, err
}

package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"panrgp/pkg/domain"
)

// ReadJSON decodes a Dataset. Gene positions are renumbered in contig order,
// organism and family IDs default to their names, partitions accept the
// P/S/C short forms, and families referenced by
// genes but not listed are added with an unknown partition.
func ReadJSON(r io.Reader) (Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	known := make(map[string]struct{}, len(d.Families))
	for i := range d.Families {
		f := &d.Families[i]
		if f.ID == "" {
			f.ID = f.Name
		}
		if f.ID == "" {
			return Dataset{}, fmt.Errorf("decode dataset: family %d has no id", i)
		}
		if f.Name == "" {
			f.Name = f.ID
		}
		f.Partition = domain.ParsePartition(string(f.Partition))
		if _, dup := known[f.ID]; dup {
			return Dataset{}, fmt.Errorf("%w: family %s listed twice", ErrConflict, f.ID)
		}
		known[f.ID] = struct{}{}
	}
	names := make(map[string]struct{}, len(d.Organisms))
	for i := range d.Organisms {
		o := &d.Organisms[i]
		if o.Name == "" {
			return Dataset{}, fmt.Errorf("decode dataset: organism %d has no name", i)
		}
		if _, dup := names[o.Name]; dup {
			return Dataset{}, fmt.Errorf("%w: organism %s appears twice", ErrConflict, o.Name)
		}
		names[o.Name] = struct{}{}
		if o.ID == "" {
			o.ID = o.Name
		}
		for ci := range o.Contigs {
			for gi := range o.Contigs[ci].Genes {
				g := &o.Contigs[ci].Genes[gi]
				g.Position = gi
				if g.FamilyID == "" {
					continue
				}
				if _, ok := known[g.FamilyID]; !ok {
					known[g.FamilyID] = struct{}{}
					d.Families = append(d.Families, domain.Family{Base: domain.Base{ID: g.FamilyID}, Name: g.FamilyID})
				}
			}
		}
	}
	sortFamilies(d.Families)
	return d, nil
}

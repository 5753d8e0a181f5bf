// Package ingest reads annotated genomes with their gene families into the
// pangenome data model. Annotations come as GFF files, one per organism, or
// as a JSON dataset carrying organisms and families together.
package ingest

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"panrgp/pkg/domain"
)

var (
	// ErrConflict is wrapped when two inputs disagree on the same record.
	ErrConflict = errors.New("conflicting input records")
	// ErrUnknownFormat is returned for inputs whose format cannot be inferred.
	ErrUnknownFormat = errors.New("unknown input format")
)

// Format identifies an input encoding.
type Format string

const (
	FormatGFF  Format = "gff"
	FormatJSON Format = "json"
)

// FormatFor infers the input format from a file name or blob key.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(strings.TrimSuffix(name, ".gz"))) {
	case ".gff", ".gff3", ".gff2":
		return FormatGFF, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// OrganismName derives an organism name from a file name or blob key.
func OrganismName(name string) string {
	base := path.Base(strings.TrimSuffix(name, ".gz"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Dataset is a batch of organisms and the families their genes reference.
type Dataset struct {
	Organisms []domain.Organism `json:"organisms"`
	Families  []domain.Family   `json:"families"`
}

// GeneCount returns the number of genes across all organisms.
func (d Dataset) GeneCount() int {
	n := 0
	for _, o := range d.Organisms {
		n += o.GeneCount()
	}
	return n
}

// Merge folds other into d. Organism names must not repeat. A family seen
// twice keeps a single record; its partitions must agree unless one is
// unknown.
func (d *Dataset) Merge(other Dataset) error {
	names := make(map[string]struct{}, len(d.Organisms))
	for _, o := range d.Organisms {
		names[o.Name] = struct{}{}
	}
	for _, o := range other.Organisms {
		if _, dup := names[o.Name]; dup {
			return fmt.Errorf("%w: organism %s appears twice", ErrConflict, o.Name)
		}
		names[o.Name] = struct{}{}
		d.Organisms = append(d.Organisms, o)
	}
	index := make(map[string]int, len(d.Families))
	for i, f := range d.Families {
		index[f.ID] = i
	}
	for _, f := range other.Families {
		i, ok := index[f.ID]
		if !ok {
			index[f.ID] = len(d.Families)
			d.Families = append(d.Families, f)
			continue
		}
		merged, err := mergeFamily(d.Families[i], f)
		if err != nil {
			return err
		}
		d.Families[i] = merged
	}
	return nil
}

func mergeFamily(a, b domain.Family) (domain.Family, error) {
	switch {
	case a.Partition == b.Partition || b.Partition == domain.PartitionUnknown:
		return a, nil
	case a.Partition == domain.PartitionUnknown:
		a.Partition = b.Partition
		return a, nil
	}
	return a, fmt.Errorf("%w: family %s is both %s and %s", ErrConflict, a.ID, a.Partition, b.Partition)
}

// sortFamilies orders families by ID.
func sortFamilies(fams []domain.Family) {
	sort.Slice(fams, func(i, j int) bool { return fams[i].ID < fams[j].ID })
}

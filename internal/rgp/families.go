package rgp

import "panrgp/pkg/domain"

// Families answers which genes count as persistence evidence. It is built once
// per run and shared read-only by every worker.
type Families struct {
	partitions map[string]domain.Partition
	multigenic domain.FamilySet
}

// NewFamilies indexes family partitions alongside the multigenic set.
func NewFamilies(families []domain.Family, multigenic domain.FamilySet) Families {
	partitions := make(map[string]domain.Partition, len(families))
	for _, f := range families {
		partitions[f.ID] = f.Partition
	}
	return Families{partitions: partitions, multigenic: multigenic}
}

// Partition returns the partition of a family, or PartitionUnknown.
func (f Families) Partition(familyID string) domain.Partition {
	return f.partitions[familyID]
}

// Multigenic reports whether the family is exempt from the persistence penalty.
func (f Families) Multigenic(familyID string) bool {
	return f.multigenic.Contains(familyID)
}

// Penalized reports whether g belongs to a persistent, non-multigenic family.
func (f Families) Penalized(g domain.Gene) bool {
	return f.partitions[g.FamilyID] == domain.PartitionPersistent && !f.multigenic.Contains(g.FamilyID)
}

package rgp

import (
	"fmt"

	"panrgp/pkg/domain"
)

// layout builds a contig from a string of gene kinds:
// P persistent, M persistent but multigenic, S shell, C cloud.
// Gene i spans [i*1000+1, i*1000+900].
func layout(name string, circular bool, kinds string) (domain.Contig, Families) {
	contig, fams, multi := genome(name, name, circular, kinds)
	return contig, NewFamilies(fams, multi)
}

// genome is layout with families scoped by prefix, so that contigs sharing a
// name across organisms keep distinct families.
func genome(prefix, name string, circular bool, kinds string) (domain.Contig, []domain.Family, domain.FamilySet) {
	contig := domain.Contig{Name: name, Circular: circular}
	var fams []domain.Family
	multi := make(domain.FamilySet)
	for i, k := range kinds {
		famID := fmt.Sprintf("%s_f%d", prefix, i)
		part := domain.PartitionCloud
		switch k {
		case 'P':
			part = domain.PartitionPersistent
		case 'M':
			part = domain.PartitionPersistent
			multi[famID] = struct{}{}
		case 'S':
			part = domain.PartitionShell
		}
		fams = append(fams, domain.Family{Base: domain.Base{ID: famID}, Partition: part})
		contig.Genes = append(contig.Genes, domain.Gene{
			ID:       fmt.Sprintf("%s_g%d", name, i),
			FamilyID: famID,
			Position: i,
			Start:    i*1000 + 1,
			Stop:     i*1000 + 900,
			Strand:   domain.StrandForward,
		})
	}
	return contig, fams, multi
}

func params(penalty, gain, minScore float64, minLength int) Params {
	return Params{PersistentPenalty: penalty, VariableGain: gain, MinScore: minScore, MinLength: minLength, DupMargin: 0.05}
}

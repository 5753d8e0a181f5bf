package rgp

import "panrgp/pkg/domain"

// NamingScheme selects the scope prefix of region names.
type NamingScheme int

const (
	// NamingContig names regions after their contig: <contig>_RGP_<id>.
	NamingContig NamingScheme = iota
	// NamingOrganism qualifies names with the organism:
	// <organism>_<contig>_RGP_<id>.
	NamingOrganism
)

func (s NamingScheme) String() string {
	if s == NamingOrganism {
		return "organism"
	}
	return "contig"
}

// Scope returns the name prefix for regions of contig.
func (s NamingScheme) Scope(org domain.Organism, contig domain.Contig) string {
	if s == NamingOrganism {
		return org.Name + "_" + contig.Name
	}
	return contig.Name
}

// DetectNamingScheme inspects every contig name of the dataset once. Names are
// organism-qualified as soon as any contig name occurs twice.
func DetectNamingScheme(organisms []domain.Organism) NamingScheme {
	seen := make(map[string]struct{})
	for _, org := range organisms {
		for _, contig := range org.Contigs {
			if _, dup := seen[contig.Name]; dup {
				return NamingOrganism
			}
			seen[contig.Name] = struct{}{}
		}
	}
	return NamingContig
}

package domain

import "sort"

// FamilySet is a read-only set of family identifiers.
type FamilySet map[string]struct{}

// Contains reports whether id belongs to the set. A nil set is empty.
func (s FamilySet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s FamilySet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MultigenicFamilies returns the families that are duplicated in at least
// dupMargin of the organisms carrying them. A family is duplicated in an
// organism when that organism holds more than one of its genes. Families
// never duplicated are not multigenic, whatever the margin.
func MultigenicFamilies(organisms []Organism, dupMargin float64) FamilySet {
	type tally struct{ present, duplicated int }
	counts := make(map[string]*tally)
	for _, org := range organisms {
		perOrg := make(map[string]int)
		for _, contig := range org.Contigs {
			for _, g := range contig.Genes {
				if g.FamilyID == "" {
					continue
				}
				perOrg[g.FamilyID]++
			}
		}
		for fam, n := range perOrg {
			t, ok := counts[fam]
			if !ok {
				t = &tally{}
				counts[fam] = t
			}
			t.present++
			if n > 1 {
				t.duplicated++
			}
		}
	}
	out := make(FamilySet)
	for fam, t := range counts {
		if t.duplicated == 0 {
			continue
		}
		if float64(t.duplicated)/float64(t.present) >= dupMargin {
			out[fam] = struct{}{}
		}
	}
	return out
}

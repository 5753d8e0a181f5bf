package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"panrgp/pkg/domain"
)

// ErrUnresolvedWrap is returned when a region crossing the origin cannot be
// split because its genes are missing from Input.Organisms.
var ErrUnresolvedWrap = errors.New("cannot resolve coordinates of origin-crossing region")

const (
	gffSource  = "panrgp"
	gffFeature = "region"
)

// WriteGFF writes one feature per region, or two for a region crossing the
// origin of a circular contig (tagged part 1 and 2). Coordinates are 1-based
// inclusive on output.
func WriteGFF(w io.Writer, in Input) error {
	genes := geneIndex(in.Organisms)
	gw := gff.NewWriter(w, 60, true)
	for _, r := range in.Regions {
		parts, err := regionParts(r, genes)
		if err != nil {
			return err
		}
		for i, p := range parts {
			score := r.Score
			attrs := gff.Attributes{
				{Tag: "ID", Value: r.Name},
				{Tag: "organism", Value: r.OrganismName},
				{Tag: "genes", Value: strconv.Itoa(len(r.Genes))},
			}
			if len(parts) > 1 {
				attrs = append(attrs, gff.Attribute{Tag: "part", Value: strconv.Itoa(i + 1)})
			}
			f := &gff.Feature{
				SeqName:        r.Contig,
				Source:         gffSource,
				Feature:        gffFeature,
				FeatStart:      p[0] - 1,
				FeatEnd:        p[1],
				FeatScore:      &score,
				FeatStrand:     seq.None,
				FeatFrame:      gff.NoFrame,
				FeatAttributes: attrs,
			}
			if _, err := gw.Write(f); err != nil {
				return err
			}
		}
	}
	return nil
}

type geneKey struct{ organism, contig, gene string }

func geneIndex(orgs []domain.Organism) map[geneKey]domain.Gene {
	out := make(map[geneKey]domain.Gene)
	for _, o := range orgs {
		for _, c := range o.Contigs {
			for _, g := range c.Genes {
				out[geneKey{o.ID, c.Name, g.ID}] = g
			}
		}
	}
	return out
}

// regionParts returns the inclusive coordinate ranges covering r.
func regionParts(r domain.Region, genes map[geneKey]domain.Gene) ([][2]int, error) {
	if !r.Wraps() {
		lo, hi := r.Start, r.Stop
		if lo > hi {
			lo, hi = hi, lo
		}
		return [][2]int{{lo, hi}}, nil
	}
	var parts [][2]int
	begin := 0
	for i := 1; i <= len(r.Genes); i++ {
		if i < len(r.Genes) && r.Genes[i].Position > r.Genes[i-1].Position {
			continue
		}
		first, ok1 := genes[geneKey{r.OrganismID, r.Contig, r.Genes[begin].ID}]
		last, ok2 := genes[geneKey{r.OrganismID, r.Contig, r.Genes[i-1].ID}]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedWrap, r.Name)
		}
		parts = append(parts, [2]int{first.Start, last.Stop})
		begin = i
	}
	return parts, nil
}

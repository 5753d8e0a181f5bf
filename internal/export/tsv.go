package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"panrgp/pkg/domain"
)

// TSVHeader lists the region table columns.
var TSVHeader = []string{"region", "organism", "contig", "local_id", "genes", "first_gene", "last_gene", "start", "stop", "length", "score", "wraps"}

// WriteTSV writes one row per region in input order.
func WriteTSV(w io.Writer, in Input) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(TSVHeader); err != nil {
		return err
	}
	for _, r := range in.Regions {
		if err := cw.Write(tsvRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tsvRow(r domain.Region) []string {
	first, last := "", ""
	if n := len(r.Genes); n > 0 {
		first, last = r.Genes[0].ID, r.Genes[n-1].ID
	}
	organism := r.OrganismName
	if organism == "" {
		organism = r.OrganismID
	}
	return []string{
		r.Name,
		organism,
		r.Contig,
		strconv.Itoa(r.LocalID),
		strconv.Itoa(len(r.Genes)),
		first,
		last,
		strconv.Itoa(r.Start),
		strconv.Itoa(r.Stop),
		strconv.Itoa(r.Span()),
		strconv.FormatFloat(r.Score, 'g', -1, 64),
		strconv.FormatBool(r.Wraps()),
	}
}

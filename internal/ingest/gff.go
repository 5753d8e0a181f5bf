package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"panrgp/pkg/domain"
)

// GFFOptions controls how features map onto genes.
type GFFOptions struct {
	// Organism names the genome described by the file. Required.
	Organism string
	// GeneTypes lists the feature types read as genes (default CDS).
	GeneTypes []string
	// FamilyAttr and PartitionAttr name the attributes carrying the gene
	// family and its partition (default "family" and "partition").
	FamilyAttr    string
	PartitionAttr string
}

func (o GFFOptions) withDefaults() GFFOptions {
	if len(o.GeneTypes) == 0 {
		o.GeneTypes = []string{"CDS"}
	}
	if o.FamilyAttr == "" {
		o.FamilyAttr = "family"
	}
	if o.PartitionAttr == "" {
		o.PartitionAttr = "partition"
	}
	return o
}

// ReadGFF reads one organism from a GFF3 (or GFF2) annotation. Contigs are
// taken in order of first appearance; "region" features mark a contig
// circular through Is_circular=true. Genes are ordered by start coordinate.
// Directives and comments are skipped, and reading stops at ##FASTA.
func ReadGFF(r io.Reader, opts GFFOptions) (Dataset, error) {
	opts = opts.withDefaults()
	if opts.Organism == "" {
		return Dataset{}, fmt.Errorf("gff: organism name required")
	}
	body, err := featureLines(r)
	if err != nil {
		return Dataset{}, err
	}
	geneTypes := make(map[string]struct{}, len(opts.GeneTypes))
	for _, t := range opts.GeneTypes {
		geneTypes[t] = struct{}{}
	}

	var order []string
	contigs := make(map[string]*domain.Contig)
	contig := func(name string) *domain.Contig {
		c, ok := contigs[name]
		if !ok {
			c = &domain.Contig{Name: name}
			contigs[name] = c
			order = append(order, name)
		}
		return c
	}
	families := make(map[string]domain.Family)
	geneIDs := make(map[string]struct{})

	sc := featio.NewScanner(gff.NewReader(body))
	for sc.Next() {
		f := sc.Feat().(*gff.Feature)
		attrs := parseAttributes(f.FeatAttributes)
		c := contig(f.SeqName)
		if f.Feature == "region" {
			if v, ok := attrs["Is_circular"]; ok && strings.EqualFold(v, "true") {
				c.Circular = true
			}
			continue
		}
		if _, ok := geneTypes[f.Feature]; !ok {
			continue
		}
		id := firstOf(attrs, "ID", "locus_tag", "Name")
		if id == "" {
			id = f.SeqName + "_" + strconv.Itoa(len(c.Genes))
		}
		if _, dup := geneIDs[id]; dup {
			return Dataset{}, fmt.Errorf("%w: gene %s appears twice in %s", ErrConflict, id, opts.Organism)
		}
		geneIDs[id] = struct{}{}
		gene := domain.Gene{
			ID:       id,
			FamilyID: attrs[opts.FamilyAttr],
			Start:    f.FeatStart + 1,
			Stop:     f.FeatEnd,
			Strand:   strandOf(f.FeatStrand),
		}
		c.Genes = append(c.Genes, gene)
		if gene.FamilyID == "" {
			continue
		}
		fam := domain.Family{Base: domain.Base{ID: gene.FamilyID}, Name: gene.FamilyID, Partition: domain.ParsePartition(attrs[opts.PartitionAttr])}
		if prev, ok := families[fam.ID]; ok {
			if fam, err = mergeFamily(prev, fam); err != nil {
				return Dataset{}, err
			}
		}
		families[fam.ID] = fam
	}
	if err := sc.Error(); err != nil {
		return Dataset{}, fmt.Errorf("gff %s: %w", opts.Organism, err)
	}

	org := domain.Organism{Base: domain.Base{ID: opts.Organism}, Name: opts.Organism}
	for _, name := range order {
		c := contigs[name]
		sort.SliceStable(c.Genes, func(i, j int) bool {
			if c.Genes[i].Start != c.Genes[j].Start {
				return c.Genes[i].Start < c.Genes[j].Start
			}
			return c.Genes[i].Stop < c.Genes[j].Stop
		})
		for i := range c.Genes {
			c.Genes[i].Position = i
		}
		org.Contigs = append(org.Contigs, *c)
	}
	out := Dataset{Organisms: []domain.Organism{org}}
	for _, f := range families {
		out.Families = append(out.Families, f)
	}
	sortFamilies(out.Families)
	return out, nil
}

// featureLines drops directives, comments and any trailing FASTA section so
// the feature reader only sees feature records.
func featureLines(r io.Reader) (io.Reader, error) {
	var buf bytes.Buffer
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if bytes.HasPrefix(line, []byte("##FASTA")) {
			break
		}
		if len(bytes.TrimSpace(line)) == 0 || line[0] == '#' {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gff: %w", err)
	}
	return &buf, nil
}

// parseAttributes normalizes GFF2 "tag value" and GFF3 "tag=value" pairs
// into a map.
func parseAttributes(attrs gff.Attributes) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		tag, value := a.Tag, a.Value
		if k, v, ok := strings.Cut(tag, "="); ok {
			tag = k
			value = strings.TrimSpace(v + " " + value)
		}
		out[strings.TrimSpace(tag)] = strings.Trim(strings.TrimSpace(value), "\"")
	}
	return out
}

func firstOf(attrs map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := attrs[k]; v != "" {
			return v
		}
	}
	return ""
}

func strandOf(s seq.Strand) domain.Strand {
	switch s {
	case seq.Plus:
		return domain.StrandForward
	case seq.Minus:
		return domain.StrandReverse
	default:
		return domain.StrandUnknown
	}
}

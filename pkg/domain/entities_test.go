package domain

import "testing"

func TestParsePartition(t *testing.T) {
	cases := map[string]Partition{
		"persistent": PartitionPersistent,
		"P":          PartitionPersistent,
		"shell":      PartitionShell,
		"s":          PartitionShell,
		"cloud":      PartitionCloud,
		"C":          PartitionCloud,
		"core":       PartitionUnknown,
		"":           PartitionUnknown,
	}
	for in, want := range cases {
		if got := ParsePartition(in); got != want {
			t.Errorf("ParsePartition(%q) = %q, want %q", in, got, want)
		}
		if want != PartitionUnknown && !want.Valid() {
			t.Errorf("%q should be valid", want)
		}
	}
	if PartitionUnknown.Valid() {
		t.Fatalf("unknown partition must not be valid")
	}
}

func TestRegionSpanAndName(t *testing.T) {
	r := Region{Start: 100, Stop: 4100}
	if r.Span() != 4000 {
		t.Fatalf("span = %d", r.Span())
	}
	wrapped := Region{Start: 9000, Stop: 500}
	if wrapped.Span() != 8500 {
		t.Fatalf("absolute span expected, got %d", wrapped.Span())
	}
	if got := RegionName("chr1", 3); got != "chr1_RGP_3" {
		t.Fatalf("name = %s", got)
	}
}

func TestRegionWraps(t *testing.T) {
	linear := Region{Genes: []RegionGene{{Position: 2}, {Position: 3}, {Position: 4}}}
	if linear.Wraps() {
		t.Fatalf("linear region should not wrap")
	}
	circular := Region{Genes: []RegionGene{{Position: 8}, {Position: 9}, {Position: 0}}}
	if !circular.Wraps() {
		t.Fatalf("expected wrap across origin")
	}
}

func TestOrganismGeneCount(t *testing.T) {
	org := Organism{Contigs: []Contig{{Genes: make([]Gene, 3)}, {}, {Genes: make([]Gene, 2)}}}
	if org.GeneCount() != 5 {
		t.Fatalf("gene count = %d", org.GeneCount())
	}
}

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"panrgp/internal/ingest"
	"panrgp/pkg/domain"
)

func fixtureRegion(name string, positions ...int) Region {
	r := Region{Name: name, OrganismID: "orgA", OrganismName: "orgA", Contig: "chr1", Score: 1}
	for _, p := range positions {
		r.Genes = append(r.Genes, domain.RegionGene{ID: fmt.Sprintf("orgA_chr1_%d", p), Position: p})
	}
	r.Start = positions[0]*1000 + 1
	r.Stop = positions[len(positions)-1]*1000 + 900
	return r
}

func replaceRegions(svc *Service, regions ...Region) (Result, error) {
	return svc.Store().RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.ReplaceRegions(regions)
		return err
	})
}

func blockedBy(t *testing.T, err error, rule string) {
	t.Helper()
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	for _, v := range violation.Result.Violations {
		if v.Rule == rule && v.Severity == domain.SeverityBlock {
			return
		}
	}
	t.Fatalf("expected blocking %s violation, got %+v", rule, violation.Result.Violations)
}

func TestDefaultRulesAcceptDisjointRegions(t *testing.T) {
	svc := ingestedService()
	res, err := replaceRegions(svc, fixtureRegion("a", 0, 1), fixtureRegion("b", 2, 3, 4))
	if err != nil {
		t.Fatalf("replace regions: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", res.Violations)
	}
}

func TestRegionDisjointnessRule(t *testing.T) {
	svc := ingestedService()
	_, err := replaceRegions(svc, fixtureRegion("a", 2, 3, 4), fixtureRegion("b", 4, 5, 6))
	blockedBy(t, err, "region_disjointness")
	if n := len(svc.Store().ListRegions()); n != 0 {
		t.Fatalf("expected blocked commit to store nothing, got %d", n)
	}
}

func TestRegionNameRule(t *testing.T) {
	svc := ingestedService()
	_, err := replaceRegions(svc, fixtureRegion("dup", 0, 1), fixtureRegion("dup", 3, 4))
	blockedBy(t, err, "region_name_unique")

	_, err = replaceRegions(svc, fixtureRegion("", 0, 1))
	blockedBy(t, err, "region_name_unique")
}

func TestRegionGeneReferenceRule(t *testing.T) {
	svc := ingestedService()
	bad := fixtureRegion("shifted", 2, 3)
	bad.Genes[1].Position = 5
	_, err := replaceRegions(svc, bad)
	blockedBy(t, err, "region_gene_reference")

	unknown := fixtureRegion("elsewhere", 2, 3)
	unknown.Contig = "plasmid"
	_, err = replaceRegions(svc, unknown)
	blockedBy(t, err, "region_gene_reference")
}

func TestFamilyReferenceRuleWarns(t *testing.T) {
	d := fixtureDataset()
	d.Organisms = append(d.Organisms, domain.Organism{Name: "orgD", Contigs: []domain.Contig{
		contig("orgD", "chr1", false, "X1", ""),
	}})
	svc := NewInMemoryService(nil)
	summary, err := svc.Ingest(context.Background(), IngestInput{Dataset: d})
	if err != nil {
		t.Fatalf("warnings must not block ingestion: %v", err)
	}
	if len(summary.Result.Violations) != 1 {
		t.Fatalf("expected one warning, got %+v", summary.Result.Violations)
	}
	v := summary.Result.Violations[0]
	if v.Rule != "gene_family_reference" || v.Severity != domain.SeverityWarn || v.EntityID != "orgD" {
		t.Fatalf("unexpected violation: %+v", v)
	}
	if summary.Status.Families {
		t.Fatalf("expected families flag to be false with unknown family")
	}
}

func TestRulesSkipUnrelatedChanges(t *testing.T) {
	svc := NewInMemoryService(nil)
	res, err := svc.Ingest(context.Background(), IngestInput{Dataset: ingest.Dataset{}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(res.Result.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", res.Result.Violations)
	}
}

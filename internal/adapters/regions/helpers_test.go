package regions

import (
	"context"
	"fmt"
	"testing"

	"panrgp/internal/blob"
	"panrgp/internal/core"
	"panrgp/internal/ingest"
	"panrgp/internal/rgp"
	"panrgp/pkg/domain"
)

// newPredictedService stores one organism whose chr1 carries a single region
// (genes 1 to 5, coordinates 1001 to 5900).
func newPredictedService(t *testing.T) (*core.Service, blob.Store) {
	t.Helper()
	families := []string{"P1", "C1", "C2", "C3", "C4", "C5", "P2"}
	var d ingest.Dataset
	c := domain.Contig{Name: "chr1"}
	for i, f := range families {
		part := domain.PartitionCloud
		if f[0] == 'P' {
			part = domain.PartitionPersistent
		}
		d.Families = append(d.Families, domain.Family{Base: domain.Base{ID: f}, Name: f, Partition: part})
		c.Genes = append(c.Genes, domain.Gene{
			ID: fmt.Sprintf("g%d", i), FamilyID: f, Position: i,
			Start: i*1000 + 1, Stop: i*1000 + 900, Strand: domain.StrandForward,
		})
	}
	d.Organisms = []domain.Organism{{Name: "strainA", Contigs: []domain.Contig{c}}}

	store := blob.NewMemory()
	svc := core.NewInMemoryService(nil, core.WithBlobStore(store))
	ctx := context.Background()
	if _, err := svc.Ingest(ctx, core.IngestInput{Dataset: d}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := svc.PredictRGP(ctx, core.PredictInput{Params: rgp.DefaultParams(), Threads: 1}); err != nil {
		t.Fatalf("predict: %v", err)
	}
	return svc, store
}

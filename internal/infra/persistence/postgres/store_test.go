package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"panrgp/internal/infra/persistence/memory"
	"panrgp/internal/infra/persistence/postgres/testutil"
	"panrgp/pkg/domain"
)

func openStub(t *testing.T) (*sql.DB, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	return db, conn
}

func TestNewStoreEnsuresSchema(t *testing.T) {
	_, conn := openStub(t)
	if _, err := NewStore("", domain.NewRulesEngine()); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var sawState, sawRegions bool
	for _, stmt := range conn.Execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS state") {
			sawState = true
		}
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS regions") {
			sawRegions = true
		}
	}
	if !sawState || !sawRegions {
		t.Fatalf("expected schema statements, got %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsBucketsAndRegions(t *testing.T) {
	_, conn := openStub(t)
	store, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.PutOrganism(domain.Organism{Name: "orgA"}); err != nil {
			return err
		}
		_, err := tx.ReplaceRegions([]domain.Region{
			{Name: "chr_RGP_0", OrganismID: "orgA", Contig: "chr", Score: 6, Start: 1, Stop: 5900,
				Genes: []domain.RegionGene{{ID: "g0", Position: 0}}},
			{Name: "chr_RGP_1", OrganismID: "orgA", Contig: "chr", LocalID: 1, Score: 4},
		})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	if got := len(conn.State); got != len(memory.Buckets) {
		t.Fatalf("expected %d state buckets, got %d", len(memory.Buckets), got)
	}
	regions := conn.Regions
	if len(regions) != 2 {
		t.Fatalf("expected 2 region rows, got %+v", regions)
	}
	if regions[0].Name != "chr_RGP_0" || regions[0].OrganismID != "orgA" || regions[0].Stop != 5900 || regions[1].LocalID != 1 {
		t.Fatalf("unexpected region rows %+v", regions)
	}

	// A second commit rewrites the region table instead of appending to it.
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteRegions()
	}); err != nil {
		t.Fatalf("RunInTransaction delete: %v", err)
	}
	if len(conn.Regions) != 0 {
		t.Fatalf("expected region table emptied, got %+v", conn.Regions)
	}
}

func TestNewStoreLoadsSnapshot(t *testing.T) {
	_, conn := openStub(t)
	conn.State["organisms"] = []byte(`{"orgA":{"id":"orgA","name":"orgA"}}`)
	conn.State["status"] = []byte(`{"annotations":true}`)
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if len(store.ListOrganisms()) != 1 || !store.Status().Annotations {
		t.Fatalf("expected snapshot hydrated, got %+v %+v", store.ListOrganisms(), store.Status())
	}
}

func TestNewStoreErrors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("boom") })
		defer restore()
		if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "open postgres") {
			t.Fatalf("expected open error, got %v", err)
		}
	})
	t.Run("ping", func(t *testing.T) {
		_, conn := openStub(t)
		conn.FailPing = true
		if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "ping postgres") {
			t.Fatalf("expected ping error, got %v", err)
		}
	})
	t.Run("decode", func(t *testing.T) {
		_, conn := openStub(t)
		conn.State["families"] = []byte("{")
		if _, err := NewStore("", nil); err == nil || !strings.Contains(err.Error(), "decode families") {
			t.Fatalf("expected decode error, got %v", err)
		}
	})
}

func TestPersistFailuresSurface(t *testing.T) {
	_, conn := openStub(t)
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	put := func(tx domain.Transaction) error {
		_, err := tx.PutOrganism(domain.Organism{Name: "orgA"})
		return err
	}

	conn.FailBegin = true
	if _, err := store.RunInTransaction(context.Background(), put); err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin error, got %v", err)
	}
	conn.FailBegin = false

	conn.FailBucket = "organisms"
	if _, err := store.RunInTransaction(context.Background(), put); err == nil || !strings.Contains(err.Error(), "upsert organisms") {
		t.Fatalf("expected upsert error, got %v", err)
	}
	conn.FailBucket = ""

	conn.FailCommit = true
	if _, err := store.RunInTransaction(context.Background(), put); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}

package core

import (
	"context"
	"fmt"

	"panrgp/internal/ingest"
	"panrgp/pkg/domain"
)

// IngestInput is a batch of annotated organisms and families to store.
type IngestInput struct {
	Dataset ingest.Dataset
	// Force discards previously predicted regions. Without it, ingesting into
	// a pangenome with regions fails with ErrRegionsExist.
	Force bool
}

// IngestBlobsInput names annotation blobs to read and store. The format of
// each key is inferred from its extension; ".gz" keys are decompressed.
type IngestBlobsInput struct {
	Keys  []string
	Force bool
	// GFF configures feature mapping; Organism is derived from each key.
	GFF ingest.GFFOptions
}

// IngestSummary reports what an ingestion stored.
type IngestSummary struct {
	Organisms int
	Families  int
	Genes     int
	Status    Status
	Result    Result
}

// Ingest stores organisms and families, replacing records with the same ID,
// then recomputes the status flags over the whole pangenome.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (IngestSummary, error) {
	var out IngestSummary
	err := s.run(ctx, "ingest", func(ctx context.Context) error {
		var err error
		out, err = s.ingest(ctx, in)
		return err
	})
	return out, err
}

// IngestBlobs reads every key from the blob store, merges them into one
// dataset and ingests it in a single transaction.
func (s *Service) IngestBlobs(ctx context.Context, in IngestBlobsInput) (IngestSummary, error) {
	var out IngestSummary
	err := s.run(ctx, "ingest_blobs", func(ctx context.Context) error {
		if s.blobs == nil {
			return ErrNoBlobStore
		}
		var merged ingest.Dataset
		for _, key := range in.Keys {
			d, err := s.readBlob(ctx, key, in.GFF)
			if err != nil {
				return err
			}
			if err := merged.Merge(d); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			s.logger.Debug("annotation read", "key", key, "organisms", len(d.Organisms), "genes", d.GeneCount())
		}
		var err error
		out, err = s.ingest(ctx, IngestInput{Dataset: merged, Force: in.Force})
		return err
	})
	return out, err
}

func (s *Service) readBlob(ctx context.Context, key string, opts ingest.GFFOptions) (ingest.Dataset, error) {
	if _, err := ingest.FormatFor(key); err != nil {
		return ingest.Dataset{}, err
	}
	_, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return ingest.Dataset{}, err
	}
	defer func() { _ = rc.Close() }()
	return ingest.Read(rc, key, opts)
}

func (s *Service) ingest(ctx context.Context, in IngestInput) (IngestSummary, error) {
	summary := IngestSummary{
		Organisms: len(in.Dataset.Organisms),
		Families:  len(in.Dataset.Families),
		Genes:     in.Dataset.GeneCount(),
	}
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		view := tx.Snapshot()
		if view.Status().RegionsPredicted || len(view.ListRegions()) > 0 {
			if !in.Force {
				return ErrRegionsExist
			}
			s.logger.Warn("discarding predicted regions before ingestion", "regions", len(view.ListRegions()))
			if err := tx.DeleteRegions(); err != nil {
				return err
			}
		}
		for _, f := range in.Dataset.Families {
			if prev, ok := view.FindFamily(f.ID); ok && f.Partition == domain.PartitionUnknown {
				f.Partition = prev.Partition
			}
			if _, err := tx.PutFamily(f); err != nil {
				return err
			}
		}
		for _, o := range in.Dataset.Organisms {
			if _, err := tx.PutOrganism(o); err != nil {
				return err
			}
		}
		st, err := tx.SetStatus(func(st *Status) error {
			*st = deriveStatus(tx.Snapshot())
			return nil
		})
		summary.Status = st
		return err
	})
	summary.Result = res
	if err != nil {
		return summary, err
	}
	s.logger.Info("pangenome ingested",
		"organisms", summary.Organisms, "families", summary.Families, "genes", summary.Genes,
		"partitioned", summary.Status.Partitions)
	return summary, nil
}

// deriveStatus recomputes the annotation flags from stored records. Regions
// are assumed cleared by the caller.
func deriveStatus(view TransactionView) Status {
	orgs := view.ListOrganisms()
	st := Status{Annotations: len(orgs) > 0}
	if !st.Annotations {
		return st
	}
	partitions := make(map[string]domain.Partition)
	for _, f := range view.ListFamilies() {
		partitions[f.ID] = f.Partition
	}
	st.Families, st.Partitions = true, true
	for _, o := range orgs {
		for _, c := range o.Contigs {
			for _, g := range c.Genes {
				p, ok := partitions[g.FamilyID]
				if !ok {
					return Status{Annotations: true}
				}
				if !p.Valid() {
					st.Partitions = false
				}
			}
		}
	}
	return st
}

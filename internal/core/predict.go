package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"panrgp/internal/rgp"
	"panrgp/pkg/domain"
)

// PredictInput configures one prediction run.
type PredictInput struct {
	Params rgp.Params
	// Threads bounds concurrently processed organisms; <1 means GOMAXPROCS.
	Threads int
	// Force replaces regions from an earlier run.
	Force bool
}

// PredictSummary describes a committed prediction.
type PredictSummary struct {
	RunID       string
	Regions     int
	PerOrganism map[string]int
	Multigenic  int
	Scheme      rgp.NamingScheme
	Parameters  RGPParameters
	Result      Result
}

// PredictRGP predicts regions of genomic plasticity for every stored
// organism and stores them with the parameters used. Earlier regions are only
// replaced when in.Force is set; the replacement is atomic.
func (s *Service) PredictRGP(ctx context.Context, in PredictInput) (PredictSummary, error) {
	var out PredictSummary
	err := s.run(ctx, "predict_rgp", func(ctx context.Context) error {
		var err error
		out, err = s.predict(ctx, in)
		return err
	})
	return out, err
}

func (s *Service) predict(ctx context.Context, in PredictInput) (PredictSummary, error) {
	p := in.Params
	if err := p.Validate(); err != nil {
		return PredictSummary{}, err
	}
	var (
		status    Status
		organisms []Organism
		families  []Family
		existing  int
	)
	if err := s.store.View(ctx, func(v TransactionView) error {
		status = v.Status()
		organisms = v.ListOrganisms()
		families = v.ListFamilies()
		existing = len(v.ListRegions())
		return nil
	}); err != nil {
		return PredictSummary{}, err
	}
	if err := checkPreconditions(status, in.Force); err != nil {
		return PredictSummary{}, err
	}
	if status.RegionsPredicted {
		s.logger.Info("replacing previously predicted regions", "regions", existing)
	}

	multigenic := domain.MultigenicFamilies(organisms, p.DupMargin)
	s.logger.Debug("multigenic families detected", "count", len(multigenic), "dup_margin", p.DupMargin)
	if rgp.DetectNamingScheme(organisms) == rgp.NamingOrganism {
		s.logger.Warn("contig names are not unique across organisms; region names are prefixed with the organism name")
	}

	var logMu sync.Mutex
	pred, err := rgp.Predict(ctx, organisms, rgp.NewFamilies(families, multigenic), p, rgp.PredictOptions{
		Threads: in.Threads,
		OnOrganism: func(org domain.Organism, regions int) {
			logMu.Lock()
			defer logMu.Unlock()
			s.logger.Debug("organism processed", "organism", org.Name, "regions", regions)
		},
	})
	if err != nil {
		return PredictSummary{}, err
	}

	record := RGPParameters{
		PersistentPenalty: p.PersistentPenalty,
		VariableGain:      p.VariableGain,
		MinLength:         p.MinLength,
		MinScore:          p.MinScore,
		DupMargin:         p.DupMargin,
		RunID:             uuid.NewString(),
		PredictedAt:       s.clock.Now(),
	}
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if err := checkPreconditions(tx.Snapshot().Status(), in.Force); err != nil {
			return err
		}
		if _, err := tx.ReplaceRegions(pred.Regions); err != nil {
			return err
		}
		if err := tx.SetParameters(record); err != nil {
			return err
		}
		_, err := tx.SetStatus(func(st *Status) error {
			st.RegionsPredicted = true
			return nil
		})
		return err
	})
	if err != nil {
		return PredictSummary{Result: res}, err
	}
	s.logger.Info(fmt.Sprintf("predicted %d RGP", len(pred.Regions)),
		"run_id", record.RunID, "organisms", len(organisms), "scheme", pred.Scheme.String())
	return PredictSummary{
		RunID:       record.RunID,
		Regions:     len(pred.Regions),
		PerOrganism: pred.PerOrganism,
		Multigenic:  len(multigenic),
		Scheme:      pred.Scheme,
		Parameters:  record,
		Result:      res,
	}, nil
}

func checkPreconditions(st Status, force bool) error {
	switch {
	case !st.Annotations:
		return ErrMissingAnnotations
	case !st.Families:
		return ErrMissingFamilies
	case !st.Partitions:
		return ErrMissingPartitions
	case st.RegionsPredicted && !force:
		return ErrRegionsExist
	}
	return nil
}

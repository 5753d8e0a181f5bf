package rgp

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"panrgp/pkg/domain"
)

func predictFixture(t *testing.T) ([]domain.Organism, Families) {
	t.Helper()
	a, famsA := organism("orgA", "chr1", "CCPPCCCCC", "plasmid", "CCCCC")
	b, famsB := organism("orgB", "chr1", "PPCCCCCP", "chr2", "CCCC")
	c, famsC := organism("orgC", "contig_7", "PPPP")
	fams := append(append(famsA, famsB...), famsC...)
	return []domain.Organism{a, b, c}, NewFamilies(fams, nil)
}

func TestPredictMergesInOrganismOrder(t *testing.T) {
	orgs, fams := predictFixture(t)
	var mu sync.Mutex
	seen := map[string]int{}
	got, err := Predict(context.Background(), orgs, fams, params(2, 1, 2, 0), PredictOptions{
		Threads: 3,
		OnOrganism: func(org domain.Organism, n int) {
			mu.Lock()
			defer mu.Unlock()
			seen[org.ID] = n
		},
	})
	require.NoError(t, err)
	require.Equal(t, NamingOrganism, got.Scheme)

	var names []string
	for _, r := range got.Regions {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{
		"orgA_chr1_RGP_0",
		"orgA_chr1_RGP_1",
		"orgA_plasmid_RGP_0",
		"orgB_chr1_RGP_0",
		"orgB_chr2_RGP_0",
	}, names)
	require.Equal(t, map[string]int{"orgA": 3, "orgB": 2, "orgC": 0}, got.PerOrganism)
	require.Equal(t, got.PerOrganism, seen)
}

func TestPredictIsDeterministic(t *testing.T) {
	orgs, fams := predictFixture(t)
	first, err := Predict(context.Background(), orgs, fams, params(2, 1, 2, 0), PredictOptions{Threads: 1})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Predict(context.Background(), orgs, fams, params(2, 1, 2, 0), PredictOptions{Threads: 8})
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestPredictRejectsInvalidParams(t *testing.T) {
	orgs, fams := predictFixture(t)
	_, err := Predict(context.Background(), orgs, fams, params(0, 1, 2, 0), PredictOptions{})
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestPredictHonorsCancellation(t *testing.T) {
	orgs, fams := predictFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Predict(ctx, orgs, fams, params(2, 1, 2, 0), PredictOptions{Threads: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPredictEmptyDataset(t *testing.T) {
	got, err := Predict(context.Background(), nil, Families{}, DefaultParams(), PredictOptions{})
	require.NoError(t, err)
	require.Empty(t, got.Regions)
	require.Equal(t, NamingContig, got.Scheme)
}

package regionindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"panrgp/pkg/domain"
)

func region(org, contig string, id, start, stop int, positions ...int) domain.Region {
	genes := make([]domain.RegionGene, len(positions))
	for i, p := range positions {
		genes[i] = domain.RegionGene{ID: "g", Position: p}
	}
	name := domain.RegionName(contig, id)
	return domain.Region{Base: domain.Base{ID: name}, Name: name, OrganismID: org, Contig: contig, LocalID: id, Start: start, Stop: stop, Genes: genes}
}

func names(regions []domain.Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Name
	}
	return out
}

func TestLocateByCoordinate(t *testing.T) {
	idx, err := New([]domain.Region{
		region("orgA", "chr1", 0, 4001, 5900, 4, 5),
		region("orgA", "chr1", 1, 9001, 12900, 9, 10, 11, 12),
		region("orgB", "chr1", 0, 1, 900, 0),
	})
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	require.Equal(t, []string{"chr1_RGP_0"}, names(idx.Locate("orgA", "chr1", 4001)))
	require.Equal(t, []string{"chr1_RGP_0"}, names(idx.Locate("orgA", "chr1", 5900)))
	require.Empty(t, idx.Locate("orgA", "chr1", 5901))
	require.Empty(t, idx.Locate("orgA", "chr1", 4000))
	require.Equal(t, []string{"chr1_RGP_1"}, names(idx.Locate("orgA", "chr1", 10000)))
	require.Empty(t, idx.Locate("orgA", "plasmid", 10))
	require.Empty(t, idx.Locate("orgC", "chr1", 10))
	require.Equal(t, []string{"chr1_RGP_0"}, names(idx.Locate("orgB", "chr1", 1)))
}

func TestOverlappingOrdersByLocalID(t *testing.T) {
	idx, err := New([]domain.Region{
		region("o", "c", 1, 9001, 12900, 9, 10, 11, 12),
		region("o", "c", 0, 4001, 5900, 4, 5),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"c_RGP_0", "c_RGP_1"}, names(idx.Overlapping("o", "c", 12000, 1)))
	require.Equal(t, []string{"c_RGP_1"}, names(idx.Overlapping("o", "c", 6000, 9001)))
}

func TestWrappingRegion(t *testing.T) {
	// Genes 3, 4 then 0 on a circular contig of five genes.
	r := region("o", "c", 0, 3001, 900, 3, 4, 0)
	require.Equal(t, [][2]int{{3, 5}, {0, 1}}, PositionIntervals(r))
	require.Len(t, CoordinateIntervals(r), 2)

	idx, err := New([]domain.Region{r})
	require.NoError(t, err)
	require.Len(t, idx.Locate("o", "c", 500), 1)
	require.Len(t, idx.Locate("o", "c", 4500), 1)
	require.Empty(t, idx.Locate("o", "c", 2000))

	require.Len(t, idx.AtPosition("o", "c", 0), 1)
	require.Len(t, idx.AtPosition("o", "c", 4), 1)
	require.Empty(t, idx.AtPosition("o", "c", 1))
}

func TestEmptyRegionsIgnored(t *testing.T) {
	idx, err := New([]domain.Region{{Name: "x", OrganismID: "o", Contig: "c"}})
	require.NoError(t, err)
	require.Zero(t, idx.Len())
	require.Nil(t, PositionIntervals(domain.Region{}))
}

// Package regionindex answers locus queries over predicted regions with one
// interval tree per organism contig. Intervals are built in gene position
// space and in coordinate space; regions crossing the origin of a circular
// contig are split in two.
package regionindex

import (
	"math"
	"sort"

	"github.com/biogo/store/interval"

	"panrgp/pkg/domain"
)

type contigKey struct {
	organism string
	contig   string
}

// Index is immutable once built and safe for concurrent queries.
type Index struct {
	coords    map[contigKey]*interval.IntTree
	positions map[contigKey]*interval.IntTree
	regions   []domain.Region
}

// entry is one stored interval. A wrapping region owns two entries sharing
// the same region index.
type entry struct {
	uid    uintptr
	region int
	start  int
	end    int // exclusive
}

func (e entry) Overlap(b interval.IntRange) bool { return e.start < b.End && b.Start < e.end }
func (e entry) ID() uintptr                      { return e.uid }
func (e entry) Range() interval.IntRange         { return interval.IntRange{Start: e.start, End: e.end} }

// span is a half-open query range.
type span struct{ start, end int }

func (q span) Overlap(b interval.IntRange) bool { return q.start < b.End && b.Start < q.end }

// New indexes regions. Regions with no genes are ignored.
func New(regions []domain.Region) (*Index, error) {
	idx := &Index{
		coords:    make(map[contigKey]*interval.IntTree),
		positions: make(map[contigKey]*interval.IntTree),
		regions:   make([]domain.Region, 0, len(regions)),
	}
	var uid uintptr
	insert := func(trees map[contigKey]*interval.IntTree, key contigKey, region, start, end int) error {
		tree, ok := trees[key]
		if !ok {
			tree = &interval.IntTree{}
			trees[key] = tree
		}
		uid++
		return tree.Insert(entry{uid: uid, region: region, start: start, end: end}, true)
	}
	for _, r := range regions {
		if len(r.Genes) == 0 {
			continue
		}
		i := len(idx.regions)
		idx.regions = append(idx.regions, r)
		key := contigKey{organism: r.OrganismID, contig: r.Contig}
		for _, iv := range CoordinateIntervals(r) {
			if err := insert(idx.coords, key, i, iv[0], iv[1]); err != nil {
				return nil, err
			}
		}
		for _, iv := range PositionIntervals(r) {
			if err := insert(idx.positions, key, i, iv[0], iv[1]); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range idx.coords {
		t.AdjustRanges()
	}
	for _, t := range idx.positions {
		t.AdjustRanges()
	}
	return idx, nil
}

// Len returns the number of indexed regions.
func (idx *Index) Len() int { return len(idx.regions) }

// Locate returns the regions of organismID/contig covering the 1-based
// coordinate pos, ordered by local id.
func (idx *Index) Locate(organismID, contig string, pos int) []domain.Region {
	return idx.query(idx.coords, contigKey{organismID, contig}, span{pos, pos + 1})
}

// Overlapping returns the regions intersecting the inclusive coordinate
// range [start, stop].
func (idx *Index) Overlapping(organismID, contig string, start, stop int) []domain.Region {
	if stop < start {
		start, stop = stop, start
	}
	return idx.query(idx.coords, contigKey{organismID, contig}, span{start, stop + 1})
}

// AtPosition returns the regions holding the gene at zero-based position.
func (idx *Index) AtPosition(organismID, contig string, position int) []domain.Region {
	return idx.query(idx.positions, contigKey{organismID, contig}, span{position, position + 1})
}

func (idx *Index) query(trees map[contigKey]*interval.IntTree, key contigKey, q span) []domain.Region {
	tree, ok := trees[key]
	if !ok {
		return nil
	}
	seen := make(map[int]struct{})
	var hits []int
	for _, hit := range tree.Get(q) {
		e := hit.(entry)
		if _, dup := seen[e.region]; dup {
			continue
		}
		seen[e.region] = struct{}{}
		hits = append(hits, e.region)
	}
	sort.Slice(hits, func(a, b int) bool {
		return idx.regions[hits[a]].LocalID < idx.regions[hits[b]].LocalID
	})
	out := make([]domain.Region, len(hits))
	for i, h := range hits {
		out[i] = idx.regions[h]
	}
	return out
}

// CoordinateIntervals returns the half-open coordinate intervals covered by r.
// A region whose first gene starts after its seed stops wraps the origin and
// is open-ended on its first part.
func CoordinateIntervals(r domain.Region) [][2]int {
	if r.Start <= r.Stop {
		return [][2]int{{r.Start, r.Stop + 1}}
	}
	return [][2]int{{r.Start, math.MaxInt32}, {1, r.Stop + 1}}
}

// PositionIntervals returns the half-open gene position intervals of r. Genes
// are expected in contig order; a decrease marks the origin crossing.
func PositionIntervals(r domain.Region) [][2]int {
	var out [][2]int
	if len(r.Genes) == 0 {
		return out
	}
	first := r.Genes[0].Position
	prev := first
	for _, g := range r.Genes[1:] {
		if g.Position < prev {
			out = append(out, [2]int{first, prev + 1})
			first = g.Position
		}
		prev = g.Position
	}
	return append(out, [2]int{first, prev + 1})
}

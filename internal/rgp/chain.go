package rgp

import (
	"math"

	"panrgp/pkg/domain"
)

const noPred = -1

// node is the per-gene scoring state. pred is an index into the chain arena,
// or noPred.
type node struct {
	score    float64
	active   bool
	pred     int
	consumed bool
}

// Chain is the score arena of a single contig, indexed by gene position.
// It is not safe for concurrent use.
type Chain struct {
	genes     []domain.Gene
	circular  bool
	penalized []bool
	nodes     []node
	params    Params
}

// scorer applies the delta rule while tracking the run of penalized genes.
type scorer struct {
	penalty float64
	gain    float64
	k       int
}

func newScorer(p Params) scorer {
	return scorer{penalty: p.PersistentPenalty, gain: p.VariableGain}
}

func (s *scorer) delta(penalized bool) float64 {
	if penalized {
		d := -math.Pow(s.penalty, float64(s.k))
		s.k++
		return d
	}
	s.k = 0
	return s.gain
}

// BuildChain scores every gene of contig left to right. On a circular contig
// whose last node is still active, scoring continues from the first gene as if
// the sequence wrapped, up to the first node that was inactive after the
// initial pass.
func BuildChain(contig domain.Contig, fams Families, p Params) *Chain {
	n := len(contig.Genes)
	c := &Chain{
		genes:     contig.Genes,
		circular:  contig.Circular,
		penalized: make([]bool, n),
		nodes:     make([]node, n),
		params:    p,
	}
	for i, g := range contig.Genes {
		c.penalized[i] = fams.Penalized(g)
	}

	sc := newScorer(p)
	prev := 0.0
	zero := -1
	for i := range c.nodes {
		c.nodes[i].pred = i - 1
		c.set(i, prev+sc.delta(c.penalized[i]))
		prev = c.nodes[i].score
		if zero < 0 && !c.nodes[i].active {
			zero = i
		}
	}
	if c.circular && n > 0 && c.nodes[n-1].active {
		c.wrap(zero, &sc)
	}
	return c
}

// wrap extends the initial pass across the origin. The penalty run carries on
// from the tail. zero is the loop breaker. A contig that never went inactive
// has no breaker: node 0 stays unlinked and regions end at the origin.
func (c *Chain) wrap(zero int, sc *scorer) {
	if zero < 0 {
		return
	}
	last := len(c.nodes) - 1
	c.nodes[0].pred = last
	prev := c.nodes[last].score
	for i := 0; i != zero; i++ {
		c.set(i, prev+sc.delta(c.penalized[i]))
		if !c.nodes[i].active {
			return
		}
		prev = c.nodes[i].score
	}
}

// set stores a clamped score and derives the active flag from it.
func (c *Chain) set(i int, score float64) {
	if score < 0 || math.IsNaN(score) {
		score = 0
	}
	c.nodes[i].score = score
	c.nodes[i].active = score > 0
}

// Rewrite rescores the nodes following seed after the region ending at seed
// has been consumed. The consumed seed is the zero baseline. At least one node
// is rewritten; rewriting stops after the first node that ends up inactive,
// at the end of a linear contig, or on reaching a consumed node.
func (c *Chain) Rewrite(seed int) {
	n := len(c.nodes)
	if seed < 0 || seed >= n {
		return
	}
	sc := newScorer(c.params)
	prev := c.nodes[seed].score
	i := seed + 1
	for steps := 0; steps < n; steps++ {
		if i >= n {
			if !c.circular {
				return
			}
			i = 0
		}
		if c.nodes[i].consumed {
			return
		}
		if i == 0 {
			c.nodes[0].pred = n - 1
		}
		c.set(i, prev+sc.delta(c.penalized[i]))
		if !c.nodes[i].active {
			return
		}
		prev = c.nodes[i].score
		i++
	}
}

// best returns the highest-scoring node, preferring the latest index on ties.
func (c *Chain) best() (int, float64) {
	idx, top := 0, c.nodes[0].score
	for i, nd := range c.nodes {
		if nd.score >= top {
			idx, top = i, nd.score
		}
	}
	return idx, top
}

// consume walks back from seed while nodes are active, zeroing each visited
// node. Positions are returned in contig order, seed last.
func (c *Chain) consume(seed int) []int {
	var visited []int
	i := seed
	for steps := 0; steps < len(c.nodes); steps++ {
		nd := &c.nodes[i]
		if !nd.active {
			break
		}
		visited = append(visited, i)
		nd.score, nd.active, nd.consumed = 0, false, true
		if nd.pred == noPred {
			break
		}
		i = nd.pred
	}
	for l, r := 0, len(visited)-1; l < r; l, r = l+1, r-1 {
		visited[l], visited[r] = visited[r], visited[l]
	}
	return visited
}

// Len returns the number of nodes in the chain.
func (c *Chain) Len() int { return len(c.nodes) }

// Scores returns a copy of the current node scores.
func (c *Chain) Scores() []float64 {
	out := make([]float64, len(c.nodes))
	for i, nd := range c.nodes {
		out[i] = nd.score
	}
	return out
}

// Active returns a copy of the current node states.
func (c *Chain) Active() []bool {
	out := make([]bool, len(c.nodes))
	for i, nd := range c.nodes {
		out[i] = nd.active
	}
	return out
}

// ActiveCount returns the number of active nodes.
func (c *Chain) ActiveCount() int {
	n := 0
	for _, nd := range c.nodes {
		if nd.active {
			n++
		}
	}
	return n
}

// Pred returns the predecessor index of node i, or -1.
func (c *Chain) Pred(i int) int { return c.nodes[i].pred }

package rgp

// Candidate is a region pulled out of a chain, before naming.
type Candidate struct {
	// Positions lists the gene positions of the region in contig order; the
	// seed is last.
	Positions []int
	// Score is the seed score before consumption.
	Score float64
	// Seed is the position of the best-scoring node the region ends on.
	Seed int
}

// Extract empties the chain greedily. Each round takes the best node, consumes
// the active run ending on it, and rescores what follows. Regions spanning no
// more than MinLength bp are dropped but their genes stay consumed. Extraction
// stops once the best score falls under MinScore or no node is active.
func (c *Chain) Extract() []Candidate {
	if len(c.nodes) == 0 {
		return nil
	}
	var out []Candidate
	for round := 0; round < len(c.nodes); round++ {
		seed, score := c.best()
		if score < c.params.MinScore || !c.nodes[seed].active {
			break
		}
		positions := c.consume(seed)
		if c.span(positions) > c.params.MinLength {
			out = append(out, Candidate{Positions: positions, Score: score, Seed: seed})
		}
		c.Rewrite(seed)
	}
	return out
}

// span is the distance between the stop of the seed gene and the start of the
// first gene of the region.
func (c *Chain) span(positions []int) int {
	first := c.genes[positions[0]]
	seed := c.genes[positions[len(positions)-1]]
	d := seed.Stop - first.Start
	if d < 0 {
		return -d
	}
	return d
}

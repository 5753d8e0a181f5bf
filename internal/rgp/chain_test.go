package rgp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildChainPenaltyEscalation(t *testing.T) {
	contig, fams := layout("c", false, "PPPCC")
	chain := BuildChain(contig, fams, params(3, 1, 4, 0))
	require.Equal(t, []float64{0, 0, 0, 1, 2}, chain.Scores())
	require.Equal(t, []bool{false, false, false, true, true}, chain.Active())
	require.Equal(t, noPred, chain.Pred(0))
	require.Equal(t, 3, chain.Pred(4))
}

func TestBuildChainMultigenicExemption(t *testing.T) {
	contig, fams := layout("c", false, "PMPCC")
	chain := BuildChain(contig, fams, params(3, 1, 4, 0))
	require.Equal(t, []float64{0, 1, 0, 1, 2}, chain.Scores())
}

func TestBuildChainShellIsVariable(t *testing.T) {
	contig, fams := layout("c", false, "SCSP")
	chain := BuildChain(contig, fams, params(3, 2, 4, 0))
	require.Equal(t, []float64{2, 4, 6, 5}, chain.Scores())
}

func TestBuildChainPenaltyRunResetsAfterVariable(t *testing.T) {
	// The second P-run starts over at penalty^0.
	contig, fams := layout("c", false, "CCCCCPPCPP")
	chain := BuildChain(contig, fams, params(2, 1, 4, 0))
	require.Equal(t, []float64{1, 2, 3, 4, 5, 4, 2, 3, 2, 0}, chain.Scores())
}

func TestBuildChainCircularAllVariableDoesNotLoop(t *testing.T) {
	contig, fams := layout("c", true, "CCCCC")
	chain := BuildChain(contig, fams, params(3, 1, 4, 0))
	require.Equal(t, []float64{1, 2, 3, 4, 5}, chain.Scores())
	require.Equal(t, noPred, chain.Pred(0), "a contig without an inactive node is not linked across the origin")
}

func TestBuildChainCircularNeverInactiveKeepsOriginOpen(t *testing.T) {
	contig, fams := layout("c", true, "CCCCP")
	chain := BuildChain(contig, fams, params(3, 1, 4, 3000))
	require.Equal(t, []float64{1, 2, 3, 4, 3}, chain.Scores())
	require.Equal(t, noPred, chain.Pred(0))
}

func TestBuildChainCircularWrapStopsAtZeroPoint(t *testing.T) {
	// Initial pass: 1,0,0,1,2. The tail is active so scoring resumes at gene 0
	// from score 2 and stops on reaching the first inactive node (index 1).
	contig, fams := layout("c", true, "CPPCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	require.Equal(t, []float64{3, 0, 0, 1, 2}, chain.Scores())
	require.Equal(t, 4, chain.Pred(0))
}

func TestBuildChainCircularWrapRewritesUpToZeroPoint(t *testing.T) {
	// Initial pass: 1,2,1,0,1,2. Wrapping from 2 rewrites genes 0 to 2 and
	// stops at gene 3, the first node left inactive by the initial pass.
	contig, fams := layout("c", true, "CCPPCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	require.Equal(t, []float64{3, 4, 3, 0, 1, 2}, chain.Scores())
	require.Equal(t, 5, chain.Pred(0))
	require.Equal(t, 2, chain.Pred(3))
}

func TestBuildChainLinearTailActiveDoesNotWrap(t *testing.T) {
	contig, fams := layout("c", false, "CPCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	require.Equal(t, []float64{1, 0, 1, 2}, chain.Scores())
	require.Equal(t, noPred, chain.Pred(0))
}

func TestRewriteRunsAtLeastOneStep(t *testing.T) {
	contig, fams := layout("c", false, "CCPCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	require.Equal(t, []float64{1, 2, 1, 2, 3}, chain.Scores())
	chain.consume(1)
	chain.Rewrite(1)
	// gene 2 restarts the penalty run from a zero baseline and becomes
	// inactive, which ends the rewrite; genes 3 and 4 keep their scores.
	require.Equal(t, []float64{0, 0, 0, 2, 3}, chain.Scores())
}

func TestRewriteRecomputesWhileActive(t *testing.T) {
	contig, fams := layout("c", false, "CCCPC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	require.Equal(t, []float64{1, 2, 3, 2, 3}, chain.Scores())
	chain.consume(1)
	chain.Rewrite(1)
	// gene 2: 0+1=1, gene 3: 1-1=0 -> inactive, stop.
	require.Equal(t, []float64{0, 0, 1, 0, 3}, chain.Scores())
}

func TestRewriteStopsAtLinearEnd(t *testing.T) {
	contig, fams := layout("c", false, "CCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	chain.consume(2)
	chain.Rewrite(2)
	require.Equal(t, []float64{0, 0, 0}, chain.Scores())
}

func TestRewriteWrapsOnCircularAndStopsAtConsumed(t *testing.T) {
	contig, fams := layout("c", true, "PCCCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	// Initial 0,1,2,3,4; zero point is gene 0 so the wrap rewrites nothing.
	require.Equal(t, []float64{0, 1, 2, 3, 4}, chain.Scores())
	require.Equal(t, []int{1, 2}, chain.consume(2))
	chain.Rewrite(2)
	// Genes 3 and 4 restart from zero, gene 0 follows across the origin and
	// gene 1 is consumed, which ends the rewrite.
	require.Equal(t, []float64{1, 0, 0, 1, 2}, chain.Scores())
	require.Equal(t, 4, chain.Pred(0))
}

func TestRewriteNeverTouchesConsumedNodes(t *testing.T) {
	contig, fams := layout("c", true, "CCCCC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	chain.nodes[0] = node{consumed: true, pred: 4}
	chain.nodes[1] = node{consumed: true, pred: 0}
	chain.Rewrite(1)
	require.Equal(t, []float64{0, 0, 1, 2, 3}, chain.Scores())
	require.True(t, chain.nodes[0].consumed)
}

func TestRewriteOutOfRangeIsNoop(t *testing.T) {
	contig, fams := layout("c", false, "CC")
	chain := BuildChain(contig, fams, params(3, 1, 2, 0))
	chain.Rewrite(-1)
	chain.Rewrite(5)
	require.Equal(t, []float64{1, 2}, chain.Scores())
}

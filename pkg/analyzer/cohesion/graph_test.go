package cohesion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockWith(names ...string) *testBlockSpec {
	return &testBlockSpec{names: names}
}

type testBlockSpec struct {
	label string
	names []string
}

// buildUnit assembles a unit whose blocks carry the given identifier sets,
// sharing one interner so names overlap by value.
func buildUnit(kind UnitKind, in *interner, specs ...*testBlockSpec) *Unit {
	u := &Unit{Kind: kind, StartLine: 1, EndLine: 50}
	for i, spec := range specs {
		b := newBlock(spec.label, "if", i*5+1, i*5+4)
		for _, name := range spec.names {
			id := in.id(name)
			if kind == UnitClass {
				b.members.Add(id)
			} else {
				b.reads.Add(id)
			}
		}
		u.Blocks = append(u.Blocks, b)
	}
	return u
}

func TestOverlapScoreJaccard(t *testing.T) {
	in := newInterner()
	u := buildUnit(UnitFunction, in,
		blockWith("a", "b", "c"),
		blockWith("b", "c", "d"),
	)

	score := overlapScore(u.Blocks[0].signal(UnitFunction), u.Blocks[1].signal(UnitFunction))
	// Intersection {b, c} over union {a, b, c, d}.
	assert.InDelta(t, 50.0, score, 0.001)
}

func TestOverlapScoreEmptySideScoresFull(t *testing.T) {
	in := newInterner()
	u := buildUnit(UnitFunction, in,
		blockWith(),
		blockWith("a", "b"),
	)

	score := overlapScore(u.Blocks[0].signal(UnitFunction), u.Blocks[1].signal(UnitFunction))
	assert.Equal(t, 100.0, score)
}

func TestEmptyBlockNeverSplitsComponent(t *testing.T) {
	in := newInterner()
	u := buildUnit(UnitFunction, in,
		blockWith("a", "b"),
		blockWith(),
		blockWith("a", "b"),
	)

	g := buildOverlapGraph(u, 30, in)
	assert.Len(t, g.components(), 1)
}

func TestComponentsSplitOnDisjointClusters(t *testing.T) {
	in := newInterner()
	u := buildUnit(UnitFunction, in,
		blockWith("a", "b"),
		blockWith("a", "b"),
		blockWith("x", "y"),
		blockWith("x", "y"),
	)

	g := buildOverlapGraph(u, 30, in)
	comps := g.components()
	require.Len(t, comps, 2)
	assert.Equal(t, []int{0, 1}, comps[0])
	assert.Equal(t, []int{2, 3}, comps[1])
}

func TestThresholdBoundaryIsInclusive(t *testing.T) {
	in := newInterner()
	// Intersection 1 over union 2 is exactly 50%.
	u := buildUnit(UnitFunction, in,
		blockWith("a"),
		blockWith("a", "b"),
	)

	g := buildOverlapGraph(u, 50, in)
	assert.Len(t, g.components(), 1)

	g = buildOverlapGraph(u, 51, in)
	assert.Len(t, g.components(), 2)
}

func TestClassCallEdgeJoinsMethods(t *testing.T) {
	in := newInterner()
	caller := blockWith("helper", "output")
	caller.label = "run"
	callee := blockWith("schema")
	callee.label = "helper"
	u := buildUnit(UnitClass, in, caller, callee)

	g := buildOverlapGraph(u, 40, in)
	assert.Len(t, g.components(), 1)
}

func TestFunctionBlocksGetNoCallEdges(t *testing.T) {
	in := newInterner()
	// Same shape as the class case, but function blocks carry no labels
	// so low-scoring pairs stay disconnected.
	u := buildUnit(UnitFunction, in,
		blockWith("helper", "output"),
		blockWith("schema"),
	)

	g := buildOverlapGraph(u, 40, in)
	assert.Len(t, g.components(), 2)
}

func TestTransitiveConnectivity(t *testing.T) {
	in := newInterner()
	u := buildUnit(UnitFunction, in,
		blockWith("a", "b"),
		blockWith("b", "c"),
		blockWith("c", "d"),
	)

	// Adjacent pairs score 1/3; the outer pair scores 0. The chain still
	// forms one component.
	g := buildOverlapGraph(u, 33, in)
	assert.Len(t, g.components(), 1)
}

func TestAverageScore(t *testing.T) {
	in := newInterner()
	u := buildUnit(UnitFunction, in,
		blockWith("a", "b"),
		blockWith("a", "b"),
		blockWith("x"),
	)

	g := buildOverlapGraph(u, 30, in)
	// Pairs score 100, 0, 0.
	assert.InDelta(t, 100.0/3, g.averageScore(), 0.001)
}

func TestComponentIdentifiersUnionAllMembers(t *testing.T) {
	state := NewTraversalState()
	u := buildUnit(UnitFunction, state.names,
		blockWith("a", "b"),
		blockWith("a", "b", "c"),
		blockWith("x", "y"),
	)

	a := New()
	f := a.finalize("app.js", u, state)
	require.NotNil(t, f)
	require.Len(t, f.Components, 2)

	// Every identifier a member touches is reported, including names only
	// one block in the group uses, and singleton groups are not empty.
	assert.ElementsMatch(t, []string{"a", "b", "c"}, f.Components[0].SharedIdentifiers)
	assert.ElementsMatch(t, []string{"x", "y"}, f.Components[1].SharedIdentifiers)
}

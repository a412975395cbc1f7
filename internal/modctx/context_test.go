package modctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ar90n/kaze/internal/graph"
	"github.com/ar90n/kaze/internal/modctx"
)

func TestRootIsRoot(t *testing.T) {
	arena := modctx.NewArena()
	assert.True(t, arena.Root().IsRoot())
}

func TestChildIsInterned(t *testing.T) {
	arena := modctx.NewArena()
	inst := &graph.Instance{}

	a := arena.Child(arena.Root(), inst)
	b := arena.Child(arena.Root(), inst)

	assert.Same(t, a, b)
	assert.False(t, a.IsRoot())
}

func TestDistinctInstancesYieldDistinctContexts(t *testing.T) {
	arena := modctx.NewArena()
	instA := &graph.Instance{}
	instB := &graph.Instance{}

	a := arena.Child(arena.Root(), instA)
	b := arena.Child(arena.Root(), instB)

	assert.NotSame(t, a, b)
}

func TestInstanceAndParentRoundTrips(t *testing.T) {
	arena := modctx.NewArena()
	inst := &graph.Instance{}
	root := arena.Root()

	child := arena.Child(root, inst)
	gotInst, gotParent := child.InstanceAndParent()

	assert.Same(t, inst, gotInst)
	assert.Same(t, root, gotParent)
}

func TestSameInstancePointerUnderDifferentParentsIsDistinct(t *testing.T) {
	arena := modctx.NewArena()
	inst := &graph.Instance{}
	otherParent := arena.Child(arena.Root(), &graph.Instance{})

	fromRoot := arena.Child(arena.Root(), inst)
	fromOther := arena.Child(otherParent, inst)

	assert.NotSame(t, fromRoot, fromOther)
}

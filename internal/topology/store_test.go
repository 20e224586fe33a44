package topology

import (
	"testing"

	"github.com/specialistvlad/gridetl/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	s := New()
	for _, id := range ids {
		require.NoError(t, s.AddNode(node.New(id, nil)))
	}
	return s
}

func TestAddAndGetNode(t *testing.T) {
	s := New()
	n := node.New("get_process_date", nil)

	require.NoError(t, s.AddNode(n))

	got, ok := s.Node("get_process_date")
	require.True(t, ok)
	assert.Same(t, n, got)

	_, ok = s.Node("missing")
	assert.False(t, ok)
}

func TestAddNode_Errors(t *testing.T) {
	s := newStore(t, "a")

	assert.ErrorContains(t, s.AddNode(node.New("a", nil)), "duplicate node")
	assert.Error(t, s.AddNode(node.New("", nil)))
	assert.Error(t, s.AddNode(nil))
}

func TestAddDependency(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		s := newStore(t, "a", "b")
		require.NoError(t, s.AddDependency("a", "b"))
		require.NoError(t, s.AddDependency("a", "b")) // idempotent

		deps, err := s.DependenciesOf("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)

		dependents, err := s.DependentsOf("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		s := newStore(t, "a", "b")
		assert.ErrorContains(t, s.AddDependency("dne", "a"), "source node 'dne' not found")
		assert.ErrorContains(t, s.AddDependency("a", "dne"), "target node 'dne' not found")
		assert.ErrorContains(t, s.AddDependency("a", "a"), "self-referential edge")

		_, err := s.DependenciesOf("dne")
		assert.Error(t, err)
	})
}

func TestSeal(t *testing.T) {
	s := newStore(t, "a", "b")
	s.Seal()

	assert.ErrorIs(t, s.AddNode(node.New("c", nil)), ErrSealed)
	assert.ErrorIs(t, s.AddDependency("a", "b"), ErrSealed)
}

func TestAllNodes_InsertionOrder(t *testing.T) {
	s := newStore(t, "c", "a", "b")

	var ids []string
	for _, n := range s.AllNodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestAncestors(t *testing.T) {
	s := newStore(t, "a", "b", "c", "d")
	require.NoError(t, s.AddDependency("a", "b"))
	require.NoError(t, s.AddDependency("b", "c"))

	anc, err := s.Ancestors("c")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, anc)

	anc, err = s.Ancestors("d")
	require.NoError(t, err)
	assert.Empty(t, anc)
}

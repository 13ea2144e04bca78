package sg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/sg/linear"
)

// leaf is a node without behavior, used as the writer of test elements.
type leaf struct {
	NodeBase
}

func newLeaf() *leaf {
	n := &leaf{}
	n.InitNode(n)
	return n
}

// requireContract runs fn and requires it to panic with a ContractError
// wrapping want.
func requireContract(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		var ce *ContractError
		require.True(t, errors.As(err, &ce), "panic %v is not a ContractError", err)
		require.ErrorIs(t, err, want)
	}()
	fn()
}

// freshContext returns a render context id no other test uses and
// destroys it when the test ends.
func freshContext(t *testing.T) uint64 {
	t.Helper()
	id := nodeIDs.Add(1) + 1<<40
	t.Cleanup(func() { _ = DestroyRenderContext(id) })
	return id
}

// counter is a callback node counting the traversals that reach it.
func counter() (*Callback, *int) {
	n := new(int)
	return NewCallback(func(Action) { *n++ }), n
}

func translate(x, y, z float64) linear.Mat4 { return linear.Translate(x, y, z) }

package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree builds root -> a -> b and root -> c with distinct transforms.
func tree(t *testing.T) (root, a, b, c *Node) {
	t.Helper()
	root, a, b, c = NewNode(), NewNode(), NewNode(), NewNode()
	require.NoError(t, root.AddChild(a))
	require.NoError(t, a.AddChild(b))
	require.NoError(t, root.AddChild(c))

	root.SetPosition(mgl32.Vec3{0, 1, 0})
	a.SetPosition(mgl32.Vec3{2, 0, 0})
	a.SetRotation(mgl32.Vec3{0, mgl32.DegToRad(90), 0})
	b.SetPosition(mgl32.Vec3{0, 0, -3})
	b.SetScale(mgl32.Vec3{2, 2, 2})
	c.SetPosition(mgl32.Vec3{-1, 0, 0})
	return
}

func TestUpdateModelMatrixComposes(t *testing.T) {
	root, a, b, c := tree(t)
	root.UpdateModelMatrix(nil)

	root.Traverse(func(n *Node) bool {
		var want mgl32.Mat4
		if n.Parent() == nil {
			want = n.LocalMatrix()
		} else {
			want = n.Parent().ModelMatrix().Mul4(n.LocalMatrix())
		}
		assert.Equal(t, want, n.ModelMatrix(), "node %d", n.ID)
		assert.False(t, n.Transform().RequiresUpdate())
		return true
	})

	// b sits 3 units down a's -Z, which a's 90° yaw turns into -X
	pos := b.ModelMatrix().Col(3).Vec3()
	assertVec3Near(t, mgl32.Vec3{-1, 1, 0}, pos, 1e-5)
	assert.Equal(t, mgl32.Vec3{-1, 1, 0}, c.ModelMatrix().Col(3).Vec3())
	_ = a
}

func TestUpdateModelMatrixIdempotent(t *testing.T) {
	root, _, _, _ := tree(t)
	root.UpdateModelMatrix(nil)
	var first []mgl32.Mat4
	root.Traverse(func(n *Node) bool { first = append(first, n.ModelMatrix()); return true })

	root.UpdateModelMatrix(nil)
	i := 0
	root.Traverse(func(n *Node) bool {
		assert.Equal(t, first[i], n.ModelMatrix())
		i++
		return true
	})
}

func TestWorldMatrixAgreesAfterFullPass(t *testing.T) {
	root, _, _, _ := tree(t)
	root.UpdateModelMatrix(nil)
	root.Traverse(func(n *Node) bool {
		assert.Equal(t, n.ModelMatrix(), n.WorldMatrix())
		return true
	})
}

func TestWorldMatrixDivergesUnderFrozenAncestor(t *testing.T) {
	root, a, b, _ := tree(t)
	a.AutoUpdate = false
	root.UpdateModelMatrix(nil)
	rootModel := root.ModelMatrix()
	a.UpdateModelMatrix(&rootModel)
	stale := b.ModelMatrix()

	b.SetPosition(mgl32.Vec3{0, 0, -5})
	root.UpdateModelMatrix(nil)

	assert.Equal(t, stale, b.ModelMatrix(), "frozen subtree keeps its matrices")
	assert.NotEqual(t, b.ModelMatrix(), b.WorldMatrix())
	assertVec3Near(t, mgl32.Vec3{-3, 1, 0}, b.WorldPosition(), 1e-5)
}

func TestSetParentRejectsCycles(t *testing.T) {
	root, a, b, _ := tree(t)
	assert.ErrorIs(t, root.SetParent(root), ErrCycle)
	assert.ErrorIs(t, root.SetParent(b), ErrCycle)
	assert.ErrorIs(t, a.AddChild(root), ErrCycle)

	// unchanged after the rejected calls
	assert.Nil(t, root.Parent())
	assert.Same(t, a, b.Parent())
}

func TestSetParentMovesChild(t *testing.T) {
	root, a, b, c := tree(t)
	require.NoError(t, b.SetParent(c))
	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{b}, c.Children())

	require.NoError(t, b.SetParent(nil))
	assert.Nil(t, b.Parent())
	assert.Empty(t, c.Children())

	assert.False(t, root.RemoveChild(b))
	assert.True(t, root.RemoveChild(c))
	assert.Equal(t, []*Node{a}, root.Children())
}

func TestTraversePreOrderAndSkip(t *testing.T) {
	root, a, b, c := tree(t)
	var seen []*Node
	root.Traverse(func(n *Node) bool { seen = append(seen, n); return true })
	assert.Equal(t, []*Node{root, a, b, c}, seen)

	seen = nil
	root.Traverse(func(n *Node) bool { seen = append(seen, n); return n != a })
	assert.Equal(t, []*Node{root, a, c}, seen)
}

func TestDestroyOrphansChildren(t *testing.T) {
	root, a, b, _ := tree(t)
	a.Destroy()
	assert.Nil(t, b.Parent())
	assert.Empty(t, a.Children())
	assert.Nil(t, a.Parent())
	assert.Len(t, root.Children(), 1)
}

func TestViewMatrices(t *testing.T) {
	n := NewNode()
	n.SetPosition(mgl32.Vec3{1, 2, 3})
	n.SetScale(mgl32.Vec3{2, 2, 2})
	n.UpdateModelMatrix(nil)

	view := mgl32.Translate3D(0, 0, -5)
	n.UpdateViewMatrices(view)

	assert.Equal(t, view.Mul4(n.ModelMatrix()), n.ModelViewMatrix())
	assertMat4Near(t, mgl32.Ident4(), n.ModelViewMatrix().Mul4(n.InverseModelViewMatrix()), 1e-5)
	// uniform scale 2 -> normal matrix is identity / 2
	assertMat3Near(t, mgl32.Ident3().Mul(0.5), n.NormalMatrix(), 1e-5)
}

func TestNodeLookAt(t *testing.T) {
	n := NewNode()
	n.SetPosition(mgl32.Vec3{5, 0, 0})
	n.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	fwd := n.Quaternion().Rotate(mgl32.Vec3{0, 0, -1})
	assertVec3Near(t, mgl32.Vec3{-1, 0, 0}, fwd, 1e-5)
}

type drawableStub bool

func (d drawableStub) Transparent() bool { return bool(d) }

func TestDrawableCapability(t *testing.T) {
	n := NewNode()
	assert.Nil(t, n.Drawable())
	n.SetDrawable(drawableStub(true))
	require.NotNil(t, n.Drawable())
	assert.True(t, n.Drawable().Transparent())
}

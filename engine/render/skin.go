package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

// Skin holds the joints of a skinned mesh. Joint matrices are
// joint.ModelMatrix × inverseBind, so joints must have been through an
// UpdateModelMatrix pass first.
type Skin struct {
	Joints              []*scene.Node
	InverseBindMatrices []mgl32.Mat4
	matrices            []mgl32.Mat4
	flat                []float32
}

func NewSkin(joints []*scene.Node, inverseBind []mgl32.Mat4) (*Skin, error) {
	if len(joints) != len(inverseBind) {
		return nil, fmt.Errorf("skin: %d joints but %d inverse bind matrices", len(joints), len(inverseBind))
	}
	return &Skin{
		Joints:              joints,
		InverseBindMatrices: inverseBind,
		matrices:            make([]mgl32.Mat4, len(joints)),
		flat:                make([]float32, 16*len(joints)),
	}, nil
}

// Update recomputes and returns the joint matrices.
func (s *Skin) Update() []mgl32.Mat4 {
	for i, j := range s.Joints {
		s.matrices[i] = j.ModelMatrix().Mul4(s.InverseBindMatrices[i])
		copy(s.flat[i*16:], s.matrices[i][:])
	}
	return s.matrices
}

func (s *Skin) JointMatrices() []mgl32.Mat4 { return s.matrices }

// Flat is the joint matrices packed back to back for uniform upload.
func (s *Skin) Flat() []float32 { return s.flat }

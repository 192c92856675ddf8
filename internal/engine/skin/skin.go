// Package skin holds skeletal animation data: per-vertex bone influences and
// per-frame bone matrices.
//
// Bone matrices are 4x4, row-major, flattened to 16 float32 values. The
// matrices of one frame are concatenated so that bone b occupies
// [b*16, b*16+16) of the frame slice.
package skin

import gomath "math"

// MatrixSize is the number of floats in one bone matrix.
const MatrixSize = 16

// VertexBone is one bone influence on a vertex.
type VertexBone struct {
	ID     int
	Weight float32
}

// Skin is immutable animation data. Build one with a Builder.
type Skin struct {
	numBones       int
	duration       float32
	maxVertexBones int
	vertexBones    [][]VertexBone
	frames         [][]float32
}

// NumVertices returns the number of skinned vertices.
func (s *Skin) NumVertices() int { return len(s.vertexBones) }

// NumBones returns the number of bones per frame.
func (s *Skin) NumBones() int { return s.numBones }

// NumFrames returns the number of sampled frames.
func (s *Skin) NumFrames() int { return len(s.frames) }

// Duration returns the clip length in seconds.
func (s *Skin) Duration() float32 { return s.duration }

// MaxNumVertexBones returns the largest influence count of any vertex.
func (s *Skin) MaxNumVertexBones() int { return s.maxVertexBones }

// NumVertexBones returns the influence count of vertex v.
func (s *Skin) NumVertexBones(v int) int { return len(s.vertexBones[v]) }

// VertexBoneID returns the bone of influence j on vertex v.
func (s *Skin) VertexBoneID(v, j int) int { return s.vertexBones[v][j].ID }

// VertexBoneWeight returns the weight of influence j on vertex v.
func (s *Skin) VertexBoneWeight(v, j int) float32 { return s.vertexBones[v][j].Weight }

// VertexBoneData returns bone and weight of influence j on vertex v.
func (s *Skin) VertexBoneData(v, j int) (int, float32) {
	vb := s.vertexBones[v][j]
	return vb.ID, vb.Weight
}

// Matrices returns the bone matrices of frame. The slice is shared with the
// skin and must not be modified; nil is returned for frames out of range.
func (s *Skin) Matrices(frame int) []float32 {
	if frame < 0 || frame >= len(s.frames) {
		return nil
	}
	return s.frames[frame]
}

// FrameID maps elapsed seconds since the clip started to a frame index.
// The clip loops; negative time maps to the first frame.
func (s *Skin) FrameID(elapsed float32) int {
	n := len(s.frames)
	if n == 0 || s.duration <= 0 || elapsed <= 0 {
		return 0
	}
	t := float32(gomath.Mod(float64(elapsed), float64(s.duration)))
	id := int(float32(n) * t / s.duration)
	if id >= n {
		id = n - 1
	}
	return id
}

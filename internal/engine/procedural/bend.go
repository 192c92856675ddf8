package procedural

import (
	gomath "math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-skin/internal/engine/skin"
)

// NumFrames returns how many poses p samples. A zero duration yields a single
// static pose.
func (p Params) NumFrames() int {
	n := int(gomath.Round(float64(p.FrameRate * p.Duration)))
	if n < 1 {
		return 1
	}
	return n
}

// boneLength is the span of the tube owned by one bone.
func (p Params) boneLength() float32 {
	return TubeLength / float32(p.Bones)
}

// NewBendSkin rigs mesh with p.Bones bones stacked along the tube axis and
// samples a looping bend. Bone 0 stays fixed; every other bone rotates about Z
// at its base joint, following its parent.
func NewBendSkin(mesh *Mesh, p Params) (*skin.Skin, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	b := skin.NewBuilder(mesh.NumVertices(), p.Bones).SetDuration(p.Duration)
	for v := 0; v < mesh.NumVertices(); v++ {
		y := mesh.Vertices[v*vertexSize+1]
		for _, inf := range influences(y, p) {
			b.AddInfluence(v, inf.ID, inf.Weight)
		}
	}

	numFrames := p.NumFrames()
	for f := 0; f < numFrames; f++ {
		phase := 2 * gomath.Pi * float64(f) / float64(numFrames)
		angle := mgl32.DegToRad(p.BendDegrees) * float32(gomath.Sin(phase))
		b.AddFrame(PoseMatrices(p, angle))
	}

	return b.Build()
}

// PoseMatrices returns the row-major skinning matrix of every bone when each
// joint is rotated by angle radians. The bind pose has no rotation, so a
// bone's skinning matrix is its accumulated joint transform.
func PoseMatrices(p Params, angle float32) []float32 {
	out := make([]float32, 0, p.Bones*skin.MatrixSize)
	world := mgl32.Ident4()
	for bone := 0; bone < p.Bones; bone++ {
		if bone > 0 {
			joint := float32(bone) * p.boneLength()
			local := mgl32.Translate3D(0, joint, 0).
				Mul4(mgl32.HomogRotate3DZ(angle)).
				Mul4(mgl32.Translate3D(0, -joint, 0))
			world = world.Mul4(local)
		}
		out = append(out, rowMajor(world)...)
	}
	return out
}

// rowMajor converts mgl32's column-major storage.
func rowMajor(m mgl32.Mat4) []float32 {
	t := m.Transpose()
	return t[:]
}

// influences weights the bones whose centers are nearest to height y with a
// linear falloff, keeps the strongest p.MaxVertexBones, and normalizes them.
func influences(y float32, p Params) []skin.VertexBone {
	length := p.boneLength()
	falloff := length * float32(gomath.Max(1, float64(p.MaxVertexBones)/2))

	var bones []skin.VertexBone
	for bone := 0; bone < p.Bones; bone++ {
		center := (float32(bone) + 0.5) * length
		w := 1 - float32(gomath.Abs(float64(y-center)))/falloff
		if w > 0 {
			bones = append(bones, skin.VertexBone{ID: bone, Weight: w})
		}
	}

	sort.SliceStable(bones, func(i, j int) bool { return bones[i].Weight > bones[j].Weight })
	if len(bones) > p.MaxVertexBones {
		bones = bones[:p.MaxVertexBones]
	}
	if len(bones) == 0 {
		nearest := int(y / length)
		if nearest >= p.Bones {
			nearest = p.Bones - 1
		}
		return []skin.VertexBone{{ID: nearest, Weight: 1}}
	}

	var sum float32
	for _, b := range bones {
		sum += b.Weight
	}
	for i := range bones {
		bones[i].Weight /= sum
	}
	return bones
}

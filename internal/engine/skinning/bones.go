package skinning

import (
	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/skin"
)

// boneVertexSize is the width of one packed row:
// [id0 id1 id2 id3] [id4 id5 id6 id7] [w0 w1 w2 w3] [w4 w5 w6 w7]
const boneVertexSize = 2 * MaxBonesPerVertex

// packBoneVertices lays out the influences of every vertex as bone ids
// followed by weights, zero padded. Influences past MaxBonesPerVertex are dropped;
// New only calls this when none exist.
func packBoneVertices(sk *skin.Skin) []float32 {
	numVertices := sk.NumVertices()
	data := make([]float32, numVertices*boneVertexSize)

	for v := 0; v < numVertices; v++ {
		row := data[v*boneVertexSize : (v+1)*boneVertexSize]
		n := sk.NumVertexBones(v)
		if n > MaxBonesPerVertex {
			n = MaxBonesPerVertex
		}
		for j := 0; j < n; j++ {
			id, weight := sk.VertexBoneData(v, j)
			row[j] = float32(id)
			row[MaxBonesPerVertex+j] = weight
		}
	}

	return data
}

// newBoneVertexBuffer builds the per-vertex bone layout consumed by the skinning shader.
func newBoneVertexBuffer(ctx render.Context, sk *skin.Skin) *render.VertexBuffer {
	vb := render.NewVertexBuffer(ctx, packBoneVertices(sk))
	vb.AddAttribute(AttrBoneIDsA, 4, 0)
	vb.AddAttribute(AttrBoneIDsB, 4, 4)
	vb.AddAttribute(AttrBoneWeightsA, 4, 8)
	vb.AddAttribute(AttrBoneWeightsB, 4, 12)
	return vb
}

package skinning

import (
	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/skin"
)

// performSoftwareSkinning rewrites positions, and normals when tracked, from
// the bind-pose snapshots and uploads every touched buffer once.
func (s *Skinning) performSoftwareSkinning(st *targetState, matrices []float32) error {
	var dirty []*render.VertexBuffer

	positions := st.geometry.VertexBuffer(AttrPosition)
	if positions == nil {
		return nil
	}
	attr, _ := positions.Attribute(AttrPosition)
	blendVertices(s.skin, positions.Data(), st.inputPositions, attr.Offset, positions.VertexSize(), matrices, false)
	dirty = append(dirty, positions)

	if st.inputNormals != nil {
		if normals := st.geometry.VertexBuffer(AttrNormal); normals != nil {
			attr, _ := normals.Attribute(AttrNormal)
			blendVertices(s.skin, normals.Data(), st.inputNormals, attr.Offset, normals.VertexSize(), matrices, true)
			if normals != positions {
				dirty = append(dirty, normals)
			}
		}
	}

	for _, vb := range dirty {
		if err := vb.Upload(); err != nil {
			return err
		}
	}
	return nil
}

// blendVertices writes the weighted sum of each vertex's bone transforms into
// out. in and out share a layout: the 3 floats at offset within every stride.
// Positions get the full affine transform; directions (normals) drop the
// translation column. Weights are used as given, without renormalizing.
func blendVertices(sk *skin.Skin, out, in []float32, offset, stride int, matrices []float32, direction bool) {
	numVertices := len(out) / stride
	if n := sk.NumVertices(); n < numVertices {
		numVertices = n
	}

	index := offset
	for v := 0; v < numVertices; v++ {
		x1 := in[index]
		y1 := in[index+1]
		z1 := in[index+2]

		var x2, y2, z2 float32
		for j, n := 0, sk.NumVertexBones(v); j < n; j++ {
			boneID, w := sk.VertexBoneData(v, j)
			m := matrices[boneID*skin.MatrixSize : boneID*skin.MatrixSize+skin.MatrixSize]

			if direction {
				x2 += w * (m[0]*x1 + m[1]*y1 + m[2]*z1)
				y2 += w * (m[4]*x1 + m[5]*y1 + m[6]*z1)
				z2 += w * (m[8]*x1 + m[9]*y1 + m[10]*z1)
			} else {
				x2 += w * (m[0]*x1 + m[1]*y1 + m[2]*z1 + m[3])
				y2 += w * (m[4]*x1 + m[5]*y1 + m[6]*z1 + m[7])
				z2 += w * (m[8]*x1 + m[9]*y1 + m[10]*z1 + m[11])
			}
		}

		out[index] = x2
		out[index+1] = y2
		out[index+2] = z2

		index += stride
	}
}

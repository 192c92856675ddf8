package skinning

import (
	"math"
	"testing"
	"time"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/scene"
	"github.com/Faultbox/midgard-skin/internal/engine/skin"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func identity() []float32 {
	return []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// translation is row-major: the offset sits in the last column.
func translation(x, y, z float32) []float32 {
	return []float32{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// rotationZ90 maps +X to +Y.
func rotationZ90() []float32 {
	return []float32{
		0, -1, 0, 0,
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func frameOf(bones ...[]float32) []float32 {
	var frame []float32
	for _, b := range bones {
		frame = append(frame, b...)
	}
	return frame
}

// twoBoneSkin has numVertices vertices split 25/75 between bones 0 and 1.
func twoBoneSkin(t *testing.T, numVertices int, duration float32, frames ...[]float32) *skin.Skin {
	t.Helper()
	b := skin.NewBuilder(numVertices, 2).SetDuration(duration)
	for v := 0; v < numVertices; v++ {
		b.AddInfluence(v, 0, 0.25).AddInfluence(v, 1, 0.75)
	}
	for _, f := range frames {
		b.AddFrame(f)
	}
	sk, err := b.Build()
	if err != nil {
		t.Fatalf("building skin: %v", err)
	}
	return sk
}

// meshVertex is position(3) + normal(3) + uv(2).
const meshVertexSize = 8

func meshGeometry(ctx render.Context, numVertices int, withNormals bool) *render.Geometry {
	data := make([]float32, numVertices*meshVertexSize)
	for v := 0; v < numVertices; v++ {
		row := data[v*meshVertexSize:]
		row[0], row[1], row[2] = float32(v)+1, 2, -0.5
		row[3], row[4], row[5] = 1, 0, 0
		row[6], row[7] = 0.25, 0.75
	}
	vb := render.NewVertexBuffer(ctx, data)
	vb.AddAttribute(AttrPosition, 3, 0)
	if withNormals {
		vb.AddAttribute(AttrNormal, 3, 3)
	} else {
		vb.AddAttribute("tangent", 3, 3)
	}
	vb.AddAttribute("uv", 2, 6)
	return render.NewGeometry(vb)
}

func surfaceNode(t *testing.T, name string, g *render.Geometry) *scene.Node {
	t.Helper()
	n := scene.NewNode(name)
	if err := n.AddComponent(scene.NewSurface(g)); err != nil {
		t.Fatalf("adding surface: %v", err)
	}
	return n
}

func managedRoot(t *testing.T) (*scene.Node, *scene.Manager) {
	t.Helper()
	root := scene.NewNode("root")
	m := scene.NewManager()
	if err := root.AddComponent(m); err != nil {
		t.Fatalf("adding manager: %v", err)
	}
	return root, m
}

func newSkinning(t *testing.T, sk *skin.Skin, method Method, ctx render.Context, clock Clock) *Skinning {
	t.Helper()
	s, err := New(Config{Skin: sk, Method: method, Context: ctx, Clock: clock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func attrAt(g *render.Geometry, name string, v int) [3]float32 {
	vb := g.VertexBuffer(name)
	attr, _ := vb.Attribute(name)
	i := v*vb.VertexSize() + attr.Offset
	d := vb.Data()
	return [3]float32{d[i], d[i+1], d[i+2]}
}

func near(a, b [3]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}

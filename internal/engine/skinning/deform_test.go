package skinning

import (
	"testing"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
)

func TestSoftwareIdentityKeepsBindPose(t *testing.T) {
	ctx := render.NewHeadlessContext()
	sk := twoBoneSkin(t, 4, 1, frameOf(identity(), identity()))
	g := meshGeometry(ctx, 4, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}

	var before [4][2][3]float32
	for v := 0; v < 4; v++ {
		before[v] = [2][3]float32{attrAt(g, AttrPosition, v), attrAt(g, AttrNormal, v)}
	}

	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatalf("UpdateFrame: %v", err)
	}

	for v := 0; v < 4; v++ {
		if got := attrAt(g, AttrPosition, v); !near(got, before[v][0]) {
			t.Errorf("vertex %d position: got %v, want %v", v, got, before[v][0])
		}
		if got := attrAt(g, AttrNormal, v); !near(got, before[v][1]) {
			t.Errorf("vertex %d normal: got %v, want %v", v, got, before[v][1])
		}
	}
}

func TestTranslationMovesPositionsOnly(t *testing.T) {
	ctx := render.NewHeadlessContext()
	move := translation(10, -3, 4)
	sk := twoBoneSkin(t, 3, 1, frameOf(move, move))
	g := meshGeometry(ctx, 3, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	pos0 := attrAt(g, AttrPosition, 1)
	nrm0 := attrAt(g, AttrNormal, 1)

	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}

	want := [3]float32{pos0[0] + 10, pos0[1] - 3, pos0[2] + 4}
	if got := attrAt(g, AttrPosition, 1); !near(got, want) {
		t.Errorf("position: got %v, want %v", got, want)
	}
	if got := attrAt(g, AttrNormal, 1); !near(got, nrm0) {
		t.Errorf("normal should ignore translation: got %v, want %v", got, nrm0)
	}
}

func TestRotationAppliesToNormals(t *testing.T) {
	ctx := render.NewHeadlessContext()
	rot := rotationZ90()
	sk := twoBoneSkin(t, 2, 1, frameOf(rot, rot))
	g := meshGeometry(ctx, 2, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}

	// vertex 0 bind position is (1, 2, -0.5)
	if got := attrAt(g, AttrPosition, 0); !near(got, [3]float32{-2, 1, -0.5}) {
		t.Errorf("rotated position: got %v", got)
	}
	if got := attrAt(g, AttrNormal, 0); !near(got, [3]float32{0, 1, 0}) {
		t.Errorf("rotated normal: got %v", got)
	}
}

func TestWeightsBlendBones(t *testing.T) {
	ctx := render.NewHeadlessContext()
	// 25% stays put, 75% moves +4 on X.
	sk := twoBoneSkin(t, 1, 1, frameOf(identity(), translation(4, 0, 0)))
	g := meshGeometry(ctx, 1, false)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}

	if got := attrAt(g, AttrPosition, 0); !near(got, [3]float32{4, 2, -0.5}) {
		t.Errorf("blended position: got %v, want [4 2 -0.5]", got)
	}
}

func TestSoftwareDoesNotAccumulate(t *testing.T) {
	ctx := render.NewHeadlessContext()
	move := translation(1, 0, 0)
	sk := twoBoneSkin(t, 2, 1, frameOf(move, move))
	g := meshGeometry(ctx, 2, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.UpdateFrame(node, 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := attrAt(g, AttrPosition, 0); !near(got, [3]float32{2, 2, -0.5}) {
		t.Errorf("repeated frames should read the bind pose: got %v", got)
	}
}

func TestSoftwareKeepsOtherAttributes(t *testing.T) {
	ctx := render.NewHeadlessContext()
	move := translation(5, 5, 5)
	sk := twoBoneSkin(t, 3, 1, frameOf(move, move))
	g := meshGeometry(ctx, 3, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}

	data := g.VertexBuffer(AttrPosition).Data()
	for v := 0; v < 3; v++ {
		u, w := data[v*meshVertexSize+6], data[v*meshVertexSize+7]
		if u != 0.25 || w != 0.75 {
			t.Errorf("vertex %d uv changed: got (%v, %v)", v, u, w)
		}
	}
}

func TestSoftwareUploadsOnce(t *testing.T) {
	ctx := render.NewHeadlessContext()
	sk := twoBoneSkin(t, 2, 1, frameOf(identity(), identity()))
	g := meshGeometry(ctx, 2, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}

	vb := g.VertexBuffer(AttrPosition)
	if n := ctx.UploadCount(vb.ID()); n != 2 {
		t.Errorf("position and normal share a buffer; got %d uploads, want 2", n)
	}
}

func TestNormalsAreOptional(t *testing.T) {
	ctx := render.NewHeadlessContext()
	rot := rotationZ90()
	sk := twoBoneSkin(t, 2, 1, frameOf(rot, rot))
	g := meshGeometry(ctx, 2, false)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	if !s.IsTracked(node) {
		t.Fatal("geometry without normals should still be registered")
	}
	if err := s.UpdateFrame(node, 0); err != nil {
		t.Fatal(err)
	}

	tangent := attrAt(g, "tangent", 0)
	if tangent != [3]float32{1, 0, 0} {
		t.Errorf("non-normal attribute changed: got %v", tangent)
	}
}

func TestUpdateFrameOutOfRange(t *testing.T) {
	ctx := render.NewHeadlessContext()
	move := translation(1, 1, 1)
	sk := twoBoneSkin(t, 2, 1, frameOf(move, move))
	g := meshGeometry(ctx, 2, true)
	node := surfaceNode(t, "mesh", g)

	s := newSkinning(t, sk, MethodSoftware, ctx, newFakeClock())
	if err := node.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	before := attrAt(g, AttrPosition, 0)

	for _, frame := range []int{sk.NumFrames(), -1, 99} {
		if err := s.UpdateFrame(node, frame); err != nil {
			t.Errorf("UpdateFrame(%d): %v", frame, err)
		}
	}
	if got := attrAt(g, AttrPosition, 0); got != before {
		t.Errorf("out-of-range frames should not deform: got %v, want %v", got, before)
	}
}

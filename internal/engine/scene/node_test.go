package scene

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
)

type recorder struct {
	events []Event
}

func (r *recorder) listen(n *Node) {
	n.Added().Connect(func(ev Event) error {
		r.events = append(r.events, ev)
		return nil
	})
}

func TestNodeIDsAreUnique(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	if a.ID() == b.ID() {
		t.Errorf("IDs should differ: both %d", a.ID())
	}
}

func TestAddedReachesSubtreeAndAncestors(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	if err := mid.AddChild(leaf); err != nil {
		t.Fatal(err)
	}

	var rootRec, midRec, leafRec recorder
	rootRec.listen(root)
	midRec.listen(mid)
	leafRec.listen(leaf)

	if err := root.AddChild(mid); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	for name, rec := range map[string]*recorder{"root": &rootRec, "mid": &midRec, "leaf": &leafRec} {
		if len(rec.events) != 1 {
			t.Errorf("%s: got %d events, want 1", name, len(rec.events))
			continue
		}
		ev := rec.events[0]
		if ev.Target != mid || ev.Parent != root {
			t.Errorf("%s: got target %v parent %v, want mid/root", name, ev.Target, ev.Parent)
		}
	}
	if leaf.Root() != root {
		t.Errorf("Root: got %v, want root", leaf.Root())
	}
}

func TestRemoveChildEmitsRemoved(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	_ = root.AddChild(child)

	var got []Event
	child.Removed().Connect(func(ev Event) error {
		got = append(got, ev)
		return nil
	})

	if err := root.RemoveChild(child); err != nil {
		t.Fatalf("RemoveChild: %v", err)
	}
	if len(got) != 1 || got[0].Parent != root {
		t.Errorf("Removed events: got %+v", got)
	}
	if child.Parent() != nil {
		t.Error("child should be detached")
	}
	if err := root.RemoveChild(child); !errors.Is(err, ErrNotChild) {
		t.Errorf("second RemoveChild: got %v, want ErrNotChild", err)
	}
}

func TestAddChildErrors(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	_ = a.AddChild(b)

	if err := NewNode("c").AddChild(b); !errors.Is(err, ErrAlreadyParented) {
		t.Errorf("reparent: got %v, want ErrAlreadyParented", err)
	}
	if err := b.AddChild(a); !errors.Is(err, ErrCycle) {
		t.Errorf("cycle: got %v, want ErrCycle", err)
	}
}

func TestListenerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	root := NewNode("root")
	child := NewNode("child")
	child.Added().Connect(func(Event) error { return boom })

	err := root.AddChild(child)
	if !errors.Is(err, boom) {
		t.Errorf("AddChild: got %v, want boom", err)
	}
	if child.Parent() != root {
		t.Error("hierarchy should be updated even when a listener fails")
	}
}

func TestRoots(t *testing.T) {
	r1 := NewNode("r1")
	r2 := NewNode("r2")
	a := NewNode("a")
	b := NewNode("b")
	_ = r1.AddChild(a)
	_ = r1.AddChild(b)

	roots := Roots([]*Node{a, b, r2})
	if len(roots) != 2 || roots[0] != r1 || roots[1] != r2 {
		t.Errorf("Roots: got %v, want [r1 r2]", roots)
	}
}

func TestComponents(t *testing.T) {
	n := NewNode("n")
	s := NewSurface(render.NewGeometry())
	if err := n.AddComponent(s); err != nil {
		t.Fatal(err)
	}
	if err := n.AddComponent(s); !errors.Is(err, ErrComponentAttached) {
		t.Errorf("duplicate AddComponent: got %v", err)
	}

	got, ok := ComponentOf[*Surface](n)
	if !ok || got != s {
		t.Error("ComponentOf[*Surface] should find the surface")
	}
	if _, ok := ComponentOf[*Manager](n); ok {
		t.Error("ComponentOf[*Manager] should not match")
	}

	if err := n.RemoveComponent(s); err != nil {
		t.Fatal(err)
	}
	if err := n.RemoveComponent(s); !errors.Is(err, ErrComponentMissing) {
		t.Errorf("second RemoveComponent: got %v", err)
	}
}

func TestManagerNextFrame(t *testing.T) {
	m := NewManager()
	var order []string
	m.FrameBegin().Connect(func(*Manager) error { order = append(order, "begin"); return nil })
	m.FrameEnd().Connect(func(*Manager) error { order = append(order, "end"); return nil })

	if err := m.NextFrame(); err != nil {
		t.Fatal(err)
	}
	if m.Frame() != 1 {
		t.Errorf("Frame: got %d, want 1", m.Frame())
	}
	if len(order) != 2 || order[0] != "begin" || order[1] != "end" {
		t.Errorf("order: got %v", order)
	}
}

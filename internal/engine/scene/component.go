package scene

import (
	"fmt"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/signal"
)

// Component is behaviour bound to one or more nodes.
type Component interface {
	// Bind is called after the component is added to node.
	Bind(node *Node) error
	// Unbind is called after the component is removed from node.
	Unbind(node *Node) error
}

// AddComponent attaches c to n and binds it.
func (n *Node) AddComponent(c Component) error {
	for _, existing := range n.components {
		if existing == c {
			return fmt.Errorf("adding component to %s: %w", n, ErrComponentAttached)
		}
	}
	n.components = append(n.components, c)
	return c.Bind(n)
}

// RemoveComponent detaches c from n and unbinds it.
func (n *Node) RemoveComponent(c Component) error {
	for i, existing := range n.components {
		if existing == c {
			n.components = append(n.components[:i], n.components[i+1:]...)
			return c.Unbind(n)
		}
	}
	return fmt.Errorf("removing component from %s: %w", n, ErrComponentMissing)
}

// Components returns the components attached to n.
func (n *Node) Components() []Component {
	return n.components
}

// ComponentOf returns the first component of type T attached to n.
func ComponentOf[T Component](n *Node) (T, bool) {
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// Surface makes a node renderable with a geometry.
type Surface struct {
	geometry *render.Geometry
}

// NewSurface creates a surface for g.
func NewSurface(g *render.Geometry) *Surface {
	return &Surface{geometry: g}
}

// Geometry returns the surface's geometry.
func (s *Surface) Geometry() *render.Geometry { return s.geometry }

func (s *Surface) Bind(*Node) error   { return nil }
func (s *Surface) Unbind(*Node) error { return nil }

// Manager drives the per-frame loop of the hierarchy rooted at its node.
type Manager struct {
	frameBegin *signal.Signal[*Manager]
	frameEnd   *signal.Signal[*Manager]
	frame      uint64
}

// NewManager creates a frame driver. Add it to a root node.
func NewManager() *Manager {
	return &Manager{
		frameBegin: signal.New[*Manager](),
		frameEnd:   signal.New[*Manager](),
	}
}

// FrameBegin fires at the start of every frame.
func (m *Manager) FrameBegin() *signal.Signal[*Manager] { return m.frameBegin }

// FrameEnd fires after FrameBegin listeners have run.
func (m *Manager) FrameEnd() *signal.Signal[*Manager] { return m.frameEnd }

// Frame returns the number of frames started so far.
func (m *Manager) Frame() uint64 { return m.frame }

// NextFrame runs one frame: FrameBegin, then FrameEnd.
func (m *Manager) NextFrame() error {
	m.frame++
	if err := m.frameBegin.Emit(m); err != nil {
		return fmt.Errorf("frame %d begin: %w", m.frame, err)
	}
	if err := m.frameEnd.Emit(m); err != nil {
		return fmt.Errorf("frame %d end: %w", m.frame, err)
	}
	return nil
}

func (m *Manager) Bind(*Node) error   { return nil }
func (m *Manager) Unbind(*Node) error { return nil }

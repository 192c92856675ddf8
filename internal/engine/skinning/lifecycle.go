package skinning

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/scene"
	"github.com/Faultbox/midgard-skin/internal/engine/signal"
)

func (s *Skinning) addedHandler(target *scene.Node) signal.Handler[scene.Event] {
	return func(scene.Event) error {
		if err := s.findSceneManager(); err != nil {
			return err
		}
		s.registerBelow(target)
		return nil
	}
}

func (s *Skinning) removedHandler(target *scene.Node) signal.Handler[scene.Event] {
	return func(ev scene.Event) error {
		if err := s.findSceneManager(); err != nil {
			return err
		}
		for _, id := range s.Tracked() {
			st := s.states[id]
			if st.owner == target.ID() && st.node.IsDescendantOf(ev.Target) {
				s.unregister(id)
			}
		}
		return nil
	}
}

// registerBelow registers every compatible surface in target's subtree.
func (s *Skinning) registerBelow(target *scene.Node) {
	if s.skin.Duration() < minDuration {
		return
	}
	target.Walk(func(n *scene.Node) bool {
		s.register(target, n)
		return true
	})
}

// register starts tracking node if it carries a surface matching the skin.
func (s *Skinning) register(owner, node *scene.Node) {
	if _, ok := s.states[node.ID()]; ok {
		return
	}
	surface, ok := scene.ComponentOf[*scene.Surface](node)
	if !ok || surface.Geometry() == nil {
		return
	}
	geometry := surface.Geometry()

	positions := geometry.VertexBuffer(AttrPosition)
	if !s.compatible(positions, AttrPosition) {
		s.log.Debug("surface skipped: position layout does not match skin",
			zap.Stringer("node", node),
			zap.Int("vertices", s.skin.NumVertices()),
		)
		return
	}

	st := &targetState{
		node:           node,
		owner:          owner.ID(),
		geometry:       geometry,
		startTime:      s.clock.Now(),
		inputPositions: snapshot(positions),
	}

	if normals := geometry.VertexBuffer(AttrNormal); s.compatible(normals, AttrNormal) {
		if normals == positions {
			st.inputNormals = st.inputPositions
		} else {
			st.inputNormals = snapshot(normals)
		}
	}

	if s.method != MethodSoftware {
		geometry.AddVertexBuffer(s.boneVertexBuffer)
		st.boneMatrices = &render.UniformArray{}
		geometry.Data().Set(PropBoneMatrices, st.boneMatrices)
		geometry.Data().Set(PropNumBones, 0)
	}

	s.states[node.ID()] = st
	s.order = append(s.order, node.ID())

	s.log.Debug("surface registered",
		zap.Stringer("node", node),
		zap.Stringer("target", owner),
		zap.Int("vertices", s.skin.NumVertices()),
		zap.Bool("normals", st.inputNormals != nil),
	)
}

// compatible reports whether vb holds a 3-wide attr with one entry per skin vertex.
func (s *Skinning) compatible(vb *render.VertexBuffer, attr string) bool {
	if vb == nil || vb.NumVertices() != s.skin.NumVertices() {
		return false
	}
	a, ok := vb.Attribute(attr)
	return ok && a.Size >= 3
}

func snapshot(vb *render.VertexBuffer) []float32 {
	return append([]float32(nil), vb.Data()...)
}

// unregister reverses register and forgets the node.
func (s *Skinning) unregister(id scene.NodeID) {
	st, ok := s.states[id]
	if !ok {
		return
	}

	if s.method != MethodSoftware {
		st.geometry.RemoveVertexBuffer(s.boneVertexBuffer)
		st.geometry.Data().Unset(PropBoneMatrices)
		st.geometry.Data().Unset(PropNumBones)
	}

	delete(s.states, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.log.Debug("surface unregistered", zap.Stringer("node", st.node))
}

// findSceneManager rescans the roots of all targets for a frame driver.
// The scan runs on every hierarchy change so re-parenting is always observed.
func (s *Skinning) findSceneManager() error {
	var managers []*scene.Manager
	for _, root := range scene.Roots(s.targets) {
		if m, ok := scene.ComponentOf[*scene.Manager](root); ok {
			managers = append(managers, m)
		}
	}

	switch len(managers) {
	case 0:
		s.setSceneManager(nil)
	case 1:
		s.setSceneManager(managers[0])
	default:
		s.setSceneManager(nil)
		return fmt.Errorf("%w: found %d", ErrMultipleSceneManagers, len(managers))
	}
	return nil
}

// setSceneManager moves the frame subscription to m. A nil m stops frame updates.
func (s *Skinning) setSceneManager(m *scene.Manager) {
	if m == s.manager && (m == nil || s.frameBeginSlot.Connected()) {
		return
	}
	if s.frameBeginSlot != nil {
		s.frameBeginSlot.Disconnect()
		s.frameBeginSlot = nil
	}
	s.manager = m
	if m != nil {
		s.frameBeginSlot = m.FrameBegin().Connect(s.frameBeginHandler)
	}
}

// Package skinning deforms skinned surfaces every frame from a skin's bone matrices.
//
// A Skinning component is bound to one or more target nodes. Whenever a target
// enters a hierarchy, every node below it that carries a Surface whose position
// attribute has exactly Skin.NumVertices vertices is registered. Each frame of
// the hierarchy's scene.Manager resolves the elapsed time since registration to
// a frame of the skin and either publishes that frame's bone matrices on the
// geometry (hardware skinning) or recomputes positions and normals on the CPU
// (software skinning).
//
// All work runs synchronously on the goroutine that mutates the scene and calls
// scene.Manager.NextFrame. Callers that touch the scene from several goroutines
// must serialize those calls themselves.
package skinning

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/scene"
	"github.com/Faultbox/midgard-skin/internal/engine/signal"
	"github.com/Faultbox/midgard-skin/internal/engine/skin"
	"github.com/Faultbox/midgard-skin/internal/logger"
)

// MaxBonesPerVertex is the most influences a vertex may have for hardware skinning.
const MaxBonesPerVertex = 8

// Vertex attribute names.
const (
	AttrPosition     = "position"
	AttrNormal       = "normal"
	AttrBoneIDsA     = "boneIdsA"
	AttrBoneIDsB     = "boneIdsB"
	AttrBoneWeightsA = "boneWeightsA"
	AttrBoneWeightsB = "boneWeightsB"
)

// Geometry property names installed for hardware skinning.
const (
	PropNumBones     = "geometry.numBones"
	PropBoneMatrices = "geometry.boneMatrices"
)

// minDuration is the shortest clip considered animated, in seconds.
const minDuration = 1e-6

var (
	// ErrNilSkin is returned by New without animation data.
	ErrNilSkin = errors.New("skinning: skin is nil")
	// ErrNilContext is returned by New without a render context.
	ErrNilContext = errors.New("skinning: render context is nil")
	// ErrMultipleSceneManagers is returned when targets live under more than
	// one scene.Manager root.
	ErrMultipleSceneManagers = errors.New("skinning: targets span several scene managers")
)

// Clock supplies the time used to start and advance animations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds the parameters of a Skinning component.
type Config struct {
	Skin    *skin.Skin
	Method  Method
	Context render.Context
	// Clock defaults to the system clock.
	Clock Clock
}

// targetState is everything tracked for one registered surface node.
type targetState struct {
	node      *scene.Node
	owner     scene.NodeID
	geometry  *render.Geometry
	startTime time.Time

	// Bind-pose copies of the vertex buffers taken at registration.
	inputPositions []float32
	inputNormals   []float32

	boneMatrices *render.UniformArray
}

type targetSlots struct {
	added   *signal.Slot[scene.Event]
	removed *signal.Slot[scene.Event]
}

// Skinning is the component that animates skinned surfaces.
type Skinning struct {
	skin   *skin.Skin
	ctx    render.Context
	method Method
	clock  Clock
	log    *zap.Logger

	boneVertexBuffer *render.VertexBuffer

	targets     []*scene.Node
	targetSlots map[scene.NodeID]targetSlots

	states map[scene.NodeID]*targetState
	order  []scene.NodeID

	manager        *scene.Manager
	frameBeginSlot *signal.Slot[*scene.Manager]
}

var _ scene.Component = (*Skinning)(nil)

// New creates a Skinning component.
// Hardware methods fall back to software skinning when a vertex has more than
// MaxBonesPerVertex influences.
func New(cfg Config) (*Skinning, error) {
	if cfg.Skin == nil {
		return nil, ErrNilSkin
	}
	if cfg.Context == nil {
		return nil, ErrNilContext
	}

	s := &Skinning{
		skin:        cfg.Skin,
		ctx:         cfg.Context,
		method:      cfg.Method,
		clock:       cfg.Clock,
		log:         logger.Named("skinning"),
		targetSlots: make(map[scene.NodeID]targetSlots),
		states:      make(map[scene.NodeID]*targetState),
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}

	if s.method != MethodSoftware && s.skin.MaxNumVertexBones() > MaxBonesPerVertex {
		s.log.Warn("too many bones per vertex for hardware skinning, using software",
			zap.Stringer("requested", s.method),
			zap.Int("max_vertex_bones", s.skin.MaxNumVertexBones()),
			zap.Int("cap", MaxBonesPerVertex),
		)
		s.method = MethodSoftware
	}

	if s.method != MethodSoftware {
		s.boneVertexBuffer = newBoneVertexBuffer(s.ctx, s.skin)
		if err := s.boneVertexBuffer.Upload(); err != nil {
			return nil, fmt.Errorf("skinning: bone vertex buffer: %w", err)
		}
	}

	return s, nil
}

// Method returns the effective skinning method.
func (s *Skinning) Method() Method { return s.method }

// Skin returns the animation data.
func (s *Skinning) Skin() *skin.Skin { return s.skin }

// BoneVertexBuffer returns the buffer shared by all hardware-skinned geometries,
// or nil for software skinning.
func (s *Skinning) BoneVertexBuffer() *render.VertexBuffer { return s.boneVertexBuffer }

// Targets returns the nodes the component is bound to.
func (s *Skinning) Targets() []*scene.Node { return s.targets }

// SceneManager returns the frame driver currently feeding the component, if any.
func (s *Skinning) SceneManager() *scene.Manager { return s.manager }

// Tracked returns the IDs of the registered surface nodes in registration order.
func (s *Skinning) Tracked() []scene.NodeID {
	return append([]scene.NodeID(nil), s.order...)
}

// IsTracked reports whether node is registered.
func (s *Skinning) IsTracked(node *scene.Node) bool {
	_, ok := s.states[node.ID()]
	return ok
}

// Bind subscribes to the target's hierarchy events and registers the
// compatible surfaces already below it.
func (s *Skinning) Bind(target *scene.Node) error {
	s.targets = append(s.targets, target)
	s.targetSlots[target.ID()] = targetSlots{
		added:   target.Added().Connect(s.addedHandler(target)),
		removed: target.Removed().Connect(s.removedHandler(target)),
	}

	if err := s.findSceneManager(); err != nil {
		return err
	}
	s.registerBelow(target)
	return nil
}

// Unbind drops the target's subscriptions and releases every surface it registered.
func (s *Skinning) Unbind(target *scene.Node) error {
	if slots, ok := s.targetSlots[target.ID()]; ok {
		slots.added.Disconnect()
		slots.removed.Disconnect()
		delete(s.targetSlots, target.ID())
	}
	for i, t := range s.targets {
		if t == target {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			break
		}
	}

	for _, id := range s.Tracked() {
		if st := s.states[id]; st.owner == target.ID() {
			s.unregister(id)
		}
	}

	return s.findSceneManager()
}

// Dispose removes the component from every target and frees the shared bone
// buffer. Errors from unbinding are joined; the release happens regardless.
func (s *Skinning) Dispose() error {
	var errs []error
	for _, t := range append([]*scene.Node(nil), s.targets...) {
		if err := t.RemoveComponent(s); err != nil {
			errs = append(errs, fmt.Errorf("unbinding %s: %w", t, err))
		}
	}
	s.setSceneManager(nil)
	if s.boneVertexBuffer != nil {
		s.boneVertexBuffer.Dispose()
	}
	return errors.Join(errs...)
}

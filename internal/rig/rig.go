// Package rig assembles the procedural skinned tube into a managed scene.
package rig

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/engine/procedural"
	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/scene"
	"github.com/Faultbox/midgard-skin/internal/engine/skin"
	"github.com/Faultbox/midgard-skin/internal/engine/skinning"
	"github.com/Faultbox/midgard-skin/internal/logger"
)

// Instance is one skinned copy of the tube.
type Instance struct {
	Node     *scene.Node
	Skinning *skinning.Skinning
	geometry *render.Geometry
}

// Geometry returns the instance's own vertex data.
func (i *Instance) Geometry() *render.Geometry { return i.geometry }

// Scene holds a managed root and two tube instances sharing one skin, one
// skinned with the configured method and one with the alternative. Only one
// instance is attached below the root at a time.
type Scene struct {
	root      *scene.Node
	manager   *scene.Manager
	mesh      *procedural.Mesh
	skin      *skin.Skin
	instances []*Instance
	shown     int
}

// ParamsFromConfig maps the procedural and skinning sections to tube parameters.
func ParamsFromConfig(cfg *config.Config) procedural.Params {
	return procedural.Params{
		Segments:       cfg.Procedural.Segments,
		Rings:          cfg.Procedural.Rings,
		Bones:          cfg.Procedural.Bones,
		MaxVertexBones: cfg.Procedural.MaxVertexBones,
		BendDegrees:    cfg.Procedural.BendDegrees,
		FrameRate:      cfg.Skinning.FrameRate,
		Duration:       cfg.Skinning.Duration,
	}
}

// NewScene builds the tube, its skin and both instances. A nil clock uses wall time.
func NewScene(cfg *config.Config, ctx render.Context, clock skinning.Clock) (*Scene, error) {
	method, err := skinning.ParseMethod(cfg.Skinning.Method)
	if err != nil {
		return nil, err
	}

	params := ParamsFromConfig(cfg)
	mesh, err := procedural.NewTube(params)
	if err != nil {
		return nil, fmt.Errorf("building tube: %w", err)
	}
	sk, err := procedural.NewBendSkin(mesh, params)
	if err != nil {
		return nil, fmt.Errorf("building skin: %w", err)
	}

	s := &Scene{
		root:    scene.NewNode("root"),
		manager: scene.NewManager(),
		mesh:    mesh,
		skin:    sk,
		shown:   -1,
	}
	if err := s.root.AddComponent(s.manager); err != nil {
		return nil, err
	}

	alternative := skinning.MethodSoftware
	if method == skinning.MethodSoftware {
		alternative = skinning.MethodHardware
	}

	for _, m := range []skinning.Method{method, alternative} {
		inst, err := newInstance(mesh, sk, m, ctx, clock)
		if err != nil {
			s.Dispose()
			return nil, err
		}
		s.instances = append(s.instances, inst)
	}

	return s, nil
}

func newInstance(mesh *procedural.Mesh, sk *skin.Skin, method skinning.Method, ctx render.Context, clock skinning.Clock) (*Instance, error) {
	g := mesh.Geometry(ctx)
	node := scene.NewNode("tube-" + method.String())
	if err := node.AddComponent(scene.NewSurface(g)); err != nil {
		return nil, err
	}

	sc, err := skinning.New(skinning.Config{Skin: sk, Method: method, Context: ctx, Clock: clock})
	if err != nil {
		return nil, fmt.Errorf("creating %s skinning: %w", method, err)
	}
	if err := node.AddComponent(sc); err != nil {
		return nil, err
	}

	return &Instance{Node: node, Skinning: sc, geometry: g}, nil
}

// Root returns the managed root node.
func (s *Scene) Root() *scene.Node { return s.root }

// Manager returns the frame driver.
func (s *Scene) Manager() *scene.Manager { return s.manager }

// Mesh returns the bind-pose tube.
func (s *Scene) Mesh() *procedural.Mesh { return s.mesh }

// Skin returns the shared animation.
func (s *Scene) Skin() *skin.Skin { return s.skin }

// Instances returns the tube instances, configured method first.
func (s *Scene) Instances() []*Instance { return s.instances }

// Shown returns the index of the attached instance, or -1.
func (s *Scene) Shown() int { return s.shown }

// Show detaches the current instance and attaches instance i below the root.
func (s *Scene) Show(i int) error {
	if i < 0 || i >= len(s.instances) {
		return fmt.Errorf("instance %d out of range", i)
	}
	if i == s.shown {
		return nil
	}

	if s.shown >= 0 {
		if err := s.root.RemoveChild(s.instances[s.shown].Node); err != nil {
			return err
		}
	}
	if err := s.root.AddChild(s.instances[i].Node); err != nil {
		return err
	}
	s.shown = i

	inst := s.instances[i]
	logger.Debug("instance shown",
		zap.Stringer("node", inst.Node),
		zap.Stringer("method", inst.Skinning.Method()),
		zap.Int("tracked", len(inst.Skinning.Tracked())),
	)
	return nil
}

// Dispose releases every skinning component and its GPU buffers.
func (s *Scene) Dispose() {
	for _, inst := range s.instances {
		if err := inst.Skinning.Dispose(); err != nil {
			logger.Warn("disposing skinning", zap.Stringer("node", inst.Node), zap.Error(err))
		}
		for _, vb := range inst.geometry.VertexBuffers() {
			vb.Dispose()
		}
	}
	s.instances = nil
	s.shown = -1
}

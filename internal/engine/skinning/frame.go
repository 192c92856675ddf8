package skinning

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-skin/internal/engine/scene"
)

// frameBeginHandler advances every registered surface to the frame matching
// the time elapsed since it was registered.
func (s *Skinning) frameBeginHandler(*scene.Manager) error {
	now := s.clock.Now()

	var errs []error
	for _, id := range s.Tracked() {
		st, ok := s.states[id]
		if !ok {
			continue
		}
		elapsed := float32(now.Sub(st.startTime).Seconds())
		if err := s.updateFrame(st, s.skin.FrameID(elapsed)); err != nil {
			errs = append(errs, fmt.Errorf("skinning %s: %w", st.node, err))
		}
	}
	return errors.Join(errs...)
}

// UpdateFrame poses node at frameID. Unregistered nodes and frames out of
// range are ignored.
func (s *Skinning) UpdateFrame(node *scene.Node, frameID int) error {
	st, ok := s.states[node.ID()]
	if !ok {
		return nil
	}
	return s.updateFrame(st, frameID)
}

func (s *Skinning) updateFrame(st *targetState, frameID int) error {
	if frameID < 0 || frameID >= s.skin.NumFrames() {
		return nil
	}
	matrices := s.skin.Matrices(frameID)

	if s.method == MethodSoftware {
		return s.performSoftwareSkinning(st, matrices)
	}

	// The matrices slice belongs to the skin; the binding is refreshed every
	// frame rather than holding on to an older frame's storage.
	numBones := s.skin.NumBones()
	st.geometry.Data().Set(PropNumBones, numBones)
	st.boneMatrices.Count = numBones
	st.boneMatrices.Values = matrices
	return nil
}

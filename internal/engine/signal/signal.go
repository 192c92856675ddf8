// Package signal provides typed observer lists with explicit subscription handles.
package signal

import "errors"

// Handler receives an emitted value.
type Handler[T any] func(T) error

// Signal is an ordered list of handlers for one event type.
type Signal[T any] struct {
	slots  []*Slot[T]
	nextID uint64
}

// Slot is the subscription handle returned by Connect.
// The owner keeps it and calls Disconnect when it no longer wants events.
type Slot[T any] struct {
	id      uint64
	handler Handler[T]
	signal  *Signal[T]
}

// New creates an empty signal.
func New[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Connect registers a handler and returns its slot.
func (s *Signal[T]) Connect(h Handler[T]) *Slot[T] {
	s.nextID++
	slot := &Slot[T]{id: s.nextID, handler: h, signal: s}
	s.slots = append(s.slots, slot)
	return slot
}

// Disconnect removes the slot from its signal. Safe to call more than once.
func (sl *Slot[T]) Disconnect() {
	if sl == nil || sl.signal == nil {
		return
	}
	s := sl.signal
	for i, other := range s.slots {
		if other.id == sl.id {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			break
		}
	}
	sl.signal = nil
}

// Connected reports whether the slot still receives events.
func (sl *Slot[T]) Connected() bool {
	return sl != nil && sl.signal != nil
}

// Len returns the number of connected handlers.
func (s *Signal[T]) Len() int {
	return len(s.slots)
}

// Emit calls every connected handler in connection order.
// Handlers connected or disconnected during Emit take effect on the next Emit.
// All handlers run even if some fail; the failures are joined.
func (s *Signal[T]) Emit(v T) error {
	if len(s.slots) == 0 {
		return nil
	}
	snapshot := make([]*Slot[T], len(s.slots))
	copy(snapshot, s.slots)

	var errs []error
	for _, slot := range snapshot {
		if slot.handler == nil {
			continue
		}
		if err := slot.handler(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package signal

import (
	"errors"
	"testing"
)

func TestEmitOrder(t *testing.T) {
	s := New[int]()
	var got []int
	s.Connect(func(v int) error { got = append(got, v*10); return nil })
	s.Connect(func(v int) error { got = append(got, v*100); return nil })

	if err := s.Emit(2); err != nil {
		t.Fatalf("Emit: unexpected error %v", err)
	}
	if len(got) != 2 || got[0] != 20 || got[1] != 200 {
		t.Errorf("Emit order: got %v, want [20 200]", got)
	}
}

func TestDisconnect(t *testing.T) {
	s := New[string]()
	calls := 0
	slot := s.Connect(func(string) error { calls++; return nil })

	slot.Disconnect()
	slot.Disconnect()

	if slot.Connected() {
		t.Error("slot should report disconnected")
	}
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
	_ = s.Emit("x")
	if calls != 0 {
		t.Errorf("disconnected handler called %d times", calls)
	}
}

func TestDisconnectDuringEmit(t *testing.T) {
	s := New[int]()
	var second *Slot[int]
	calls := 0
	s.Connect(func(int) error { second.Disconnect(); return nil })
	second = s.Connect(func(int) error { calls++; return nil })

	_ = s.Emit(1)
	if calls != 1 {
		t.Errorf("first emit: handler called %d times, want 1", calls)
	}
	_ = s.Emit(1)
	if calls != 1 {
		t.Errorf("second emit: handler called %d times, want 1", calls)
	}
}

func TestEmitJoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	s := New[int]()
	ran := 0
	s.Connect(func(int) error { ran++; return errA })
	s.Connect(func(int) error { ran++; return nil })
	s.Connect(func(int) error { ran++; return errB })

	err := s.Emit(0)
	if ran != 3 {
		t.Errorf("handlers run: got %d, want 3", ran)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Emit error %v should wrap both handler errors", err)
	}
}

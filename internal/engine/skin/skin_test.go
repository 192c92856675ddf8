package skin

import (
	"errors"
	"testing"
)

func identityFrame(numBones int) []float32 {
	frame := make([]float32, numBones*MatrixSize)
	for b := 0; b < numBones; b++ {
		m := frame[b*MatrixSize:]
		m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	}
	return frame
}

func buildFrames(t *testing.T, numFrames int, duration float32) *Skin {
	t.Helper()
	b := NewBuilder(2, 1).SetDuration(duration)
	b.AddInfluence(0, 0, 1).AddInfluence(1, 0, 1)
	for i := 0; i < numFrames; i++ {
		b.AddFrame(identityFrame(1))
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuild(t *testing.T) {
	b := NewBuilder(3, 4).SetDuration(2)
	b.AddInfluence(0, 2, 0.5).AddInfluence(0, 3, 0.5)
	b.AddInfluence(1, 1, 1)
	b.AddFrame(identityFrame(4))

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.NumVertices() != 3 || s.NumBones() != 4 || s.NumFrames() != 1 {
		t.Errorf("counts: got %d/%d/%d, want 3/4/1", s.NumVertices(), s.NumBones(), s.NumFrames())
	}
	if s.MaxNumVertexBones() != 2 {
		t.Errorf("MaxNumVertexBones: got %d, want 2", s.MaxNumVertexBones())
	}
	if s.NumVertexBones(2) != 0 {
		t.Errorf("NumVertexBones(2): got %d, want 0", s.NumVertexBones(2))
	}
	id, w := s.VertexBoneData(0, 1)
	if id != 3 || w != 0.5 {
		t.Errorf("VertexBoneData(0,1): got (%d, %v), want (3, 0.5)", id, w)
	}
	if s.VertexBoneID(1, 0) != 1 || s.VertexBoneWeight(1, 0) != 1 {
		t.Error("vertex 1 influence mismatch")
	}
	if len(s.Matrices(0)) != 4*MatrixSize {
		t.Errorf("Matrices(0): got %d floats", len(s.Matrices(0)))
	}
	if s.Matrices(1) != nil || s.Matrices(-1) != nil {
		t.Error("Matrices out of range should be nil")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
		want  error
	}{
		{"no vertices", func() *Builder { return NewBuilder(0, 1) }, ErrNoVertices},
		{"no bones", func() *Builder { return NewBuilder(1, 0) }, ErrNoBones},
		{"no frames", func() *Builder { return NewBuilder(1, 1) }, ErrNoFrames},
		{"bad duration", func() *Builder { return NewBuilder(1, 1).SetDuration(-1) }, ErrBadDuration},
		{"bone range", func() *Builder { return NewBuilder(1, 2).AddInfluence(0, 2, 1) }, ErrBoneRange},
		{"vertex range", func() *Builder { return NewBuilder(1, 2).AddInfluence(1, 0, 1) }, ErrVertexRange},
		{"negative weight", func() *Builder { return NewBuilder(1, 2).AddInfluence(0, 0, -0.1) }, ErrNegativeWeight},
		{"frame size", func() *Builder { return NewBuilder(1, 2).AddFrame(make([]float32, 16)) }, ErrFrameSize},
	}

	for _, tt := range tests {
		_, err := tt.build().Build()
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestAddFrameCopies(t *testing.T) {
	frame := identityFrame(1)
	s, err := NewBuilder(1, 1).AddFrame(frame).Build()
	if err != nil {
		t.Fatal(err)
	}
	frame[0] = 42
	if s.Matrices(0)[0] != 1 {
		t.Error("AddFrame should copy the input slice")
	}
}

func TestBuiltSkinIgnoresLaterBuilderCalls(t *testing.T) {
	b := NewBuilder(2, 10).SetDuration(1)
	b.AddInfluence(0, 0, 1).AddInfluence(1, 0, 1)
	b.AddFrame(identityFrame(10))

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for bone := 1; bone < 10; bone++ {
		b.AddInfluence(0, bone, 0.1)
	}
	b.AddFrame(identityFrame(10))

	if got := s.NumVertexBones(0); got != 1 {
		t.Errorf("NumVertexBones(0): got %d, want 1", got)
	}
	if got := s.MaxNumVertexBones(); got != 1 {
		t.Errorf("MaxNumVertexBones: got %d, want 1", got)
	}
	if got := s.NumFrames(); got != 1 {
		t.Errorf("NumFrames: got %d, want 1", got)
	}
}

func TestFrameID(t *testing.T) {
	s := buildFrames(t, 10, 2)

	tests := []struct {
		elapsed float32
		want    int
	}{
		{0, 0},
		{-1, 0},
		{0.1, 0},
		{0.2, 1},
		{1.0, 5},
		{1.99, 9},
		{2.0, 0},
		{2.3, 1},
		{5.1, 5},
	}

	for _, tt := range tests {
		if got := s.FrameID(tt.elapsed); got != tt.want {
			t.Errorf("FrameID(%v): got %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestFrameIDZeroDuration(t *testing.T) {
	s := buildFrames(t, 4, 0)
	if got := s.FrameID(3); got != 0 {
		t.Errorf("FrameID with zero duration: got %d, want 0", got)
	}
}

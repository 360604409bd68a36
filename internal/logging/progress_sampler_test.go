package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		done int
		want bool
	}{
		{0, true},
		{1, false},
		{3, true},
		{4, false},
		{6, true},
		{8, false},
		{9, true},
		{11, false},
		{12, true},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.done, 12); got != step.want {
			t.Fatalf("ShouldLog(%d, 12) = %v, want %v", step.done, got, step.want)
		}
	}
	if s.ShouldLog(12, 12) {
		t.Fatal("completion must only log once")
	}
}

func TestProgressSamplerDefaultsAndReset(t *testing.T) {
	s := NewProgressSampler(0)
	if s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	if !s.ShouldLog(0, 100) || s.ShouldLog(5, 100) {
		t.Fatal("unexpected sampling at start")
	}
	s.Reset()
	if !s.ShouldLog(5, 100) {
		t.Fatal("reset sampler should log again")
	}
	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(1, 2) {
		t.Fatal("nil sampler logs everything")
	}
	if !s.ShouldLog(3, 0) {
		t.Fatal("unknown total logs everything")
	}
}

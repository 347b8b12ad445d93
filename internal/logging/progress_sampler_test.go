package logging

import "testing"

func TestProgressSamplerSteps(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		seen, total int
		want        bool
	}{
		{0, 100, true},
		{10, 100, false},
		{24, 100, false},
		{25, 100, true},
		{26, 100, false},
		{60, 100, true},
		{74, 100, false},
		{99, 100, true},
		{100, 100, true},
		{100, 100, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.seen, step.total); got != step.want {
			t.Fatalf("ShouldLog(%d, %d) = %v, want %v", step.seen, step.total, got, step.want)
		}
	}
}

func TestProgressSamplerUnknownTotal(t *testing.T) {
	s := NewProgressSampler(0)
	if !s.ShouldLog(1, 0) {
		t.Fatal("first report without a total should log")
	}
	if s.ShouldLog(2, 0) {
		t.Fatal("later reports without a total should be dropped")
	}
}

func TestNilProgressSamplerAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 10) {
		t.Fatal("nil sampler should log everything")
	}
}

func TestPercentClamps(t *testing.T) {
	if got := Percent(5, 0); got != 0 {
		t.Fatalf("Percent(5, 0) = %v", got)
	}
	if got := Percent(12, 10); got != 100 {
		t.Fatalf("Percent(12, 10) = %v", got)
	}
	if got := Percent(1, 4); got != 25 {
		t.Fatalf("Percent(1, 4) = %v", got)
	}
}

package logging

// ProgressSampler thins out per-file progress lines. A report is emitted the
// first time the completed share reaches each step of stepPercent, plus once
// at 100%.
type ProgressSampler struct {
	step float64
	next float64
	done bool
}

// NewProgressSampler returns a sampler stepping every stepPercent percent.
// Values outside (0, 100] fall back to 10.
func NewProgressSampler(stepPercent float64) *ProgressSampler {
	if stepPercent <= 0 || stepPercent > 100 {
		stepPercent = 10
	}
	return &ProgressSampler{step: stepPercent}
}

// ShouldLog reports whether seen out of total files deserves a log line.
// With no known total only the first call logs.
func (s *ProgressSampler) ShouldLog(seen, total int) bool {
	if s == nil {
		return true
	}
	if s.done {
		return false
	}
	if total <= 0 {
		s.done = true
		return true
	}
	pct := Percent(seen, total)
	if pct >= 100 {
		s.done = true
		return true
	}
	if pct < s.next {
		return false
	}
	for s.next <= pct {
		s.next += s.step
	}
	return true
}

// Percent is seen/total as a percentage in [0, 100].
func Percent(seen, total int) float64 {
	switch {
	case total <= 0 || seen <= 0:
		return 0
	case seen >= total:
		return 100
	}
	return float64(seen) * 100 / float64(total)
}

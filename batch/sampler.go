package batch

import "time"

// Sample is one throughput observation of a running batch.
type Sample struct {
	Label      string  `json:"label"`
	Dispatched int     `json:"dispatched"`
	Current    int64   `json:"current"`
	Average    float64 `json:"average"`
	Peak       int64   `json:"peak"`
	Completed  int64   `json:"completed"`
	Samples    int     `json:"samples"`
}

// Summary describes a finished batch.
type Summary struct {
	Label      string        `json:"label"`
	Dispatched int           `json:"dispatched"`
	Completed  int64         `json:"completed"`
	Samples    int           `json:"samples"`
	Average    float64       `json:"average"`
	Peak       int64         `json:"peak"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Sampler turns a growing completion count into per-interval throughput figures.
// It is not safe for concurrent use.
type Sampler struct {
	label      string
	dispatched int
	completed  int64
	samples    int
	peak       int64
}

// NewSampler creates a Sampler for a batch of dispatched operations.
func NewSampler(label string, dispatched int) *Sampler {
	return &Sampler{label: label, dispatched: dispatched}
}

// Observe takes one sample given the total number of completed operations so far.
// Current is the number completed since the previous sample, Average is completed/samples,
// and Peak is the largest Current observed.
func (s *Sampler) Observe(completed int64) Sample {
	current := completed - s.completed
	s.completed = completed
	s.samples++
	s.peak = max(s.peak, current)

	return Sample{
		Label:      s.label,
		Dispatched: s.dispatched,
		Current:    current,
		Average:    s.average(),
		Peak:       s.peak,
		Completed:  completed,
		Samples:    s.samples,
	}
}

// Completed returns the completion count of the last sample.
func (s *Sampler) Completed() int64 {
	return s.completed
}

// Summary returns the figures of all samples taken so far.
func (s *Sampler) Summary(elapsed time.Duration) Summary {
	return Summary{
		Label:      s.label,
		Dispatched: s.dispatched,
		Completed:  s.completed,
		Samples:    s.samples,
		Average:    s.average(),
		Peak:       s.peak,
		Elapsed:    elapsed,
	}
}

func (s *Sampler) average() float64 {
	if s.samples == 0 {
		return 0
	}

	return float64(s.completed) / float64(s.samples)
}

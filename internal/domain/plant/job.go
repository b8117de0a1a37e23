package plant

import "github.com/andrescamacho/jobshop-sim/internal/domain/catalog"

// Job is a transformation in progress on one machine slot. It owns the parts it
// consumed until it completes.
type Job struct {
	transformation *catalog.Transformation
	consumed       []Part
	remainingTicks int
}

func newJob(t *catalog.Transformation, consumed []Part) *Job {
	return &Job{
		transformation: t,
		consumed:       consumed,
		remainingTicks: t.Duration,
	}
}

// Getters

func (j *Job) Transformation() *catalog.Transformation { return j.transformation }
func (j *Job) RemainingTicks() int                     { return j.remainingTicks }

// Consumed returns a copy of the parts held by the job
func (j *Job) Consumed() []Part {
	out := make([]Part, len(j.consumed))
	copy(out, j.consumed)
	return out
}

// tick decrements the remaining time and reports whether the job completed
func (j *Job) tick() bool {
	j.remainingTicks--
	return j.remainingTicks <= 0
}

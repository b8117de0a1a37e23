package plant

import (
	"fmt"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// Machine is one physical unit of a machine type. It owns an input buffer of parts
// waiting to be consumed, a FIFO output buffer of completed parts waiting for
// transfer, and up to Slots concurrently running jobs.
type Machine struct {
	id          string
	machineType *catalog.MachineType
	input       []Part
	output      []Part
	jobs        []*Job
	priority    []*catalog.Transformation
}

// Completion records a job that finished during AdvanceJobs
type Completion struct {
	Transformation *catalog.Transformation
	Consumed       []Part
	Output         Part
}

// NewMachine creates an idle machine with the machine type's default priority
func NewMachine(id string, machineType *catalog.MachineType) *Machine {
	m := &Machine{
		id:          id,
		machineType: machineType,
	}
	m.Reset()
	return m
}

// Getters

func (m *Machine) ID() string                 { return m.id }
func (m *Machine) Type() *catalog.MachineType { return m.machineType }
func (m *Machine) Slots() int                 { return m.machineType.Slots }
func (m *Machine) InputCount() int            { return len(m.input) }
func (m *Machine) OutputCount() int           { return len(m.output) }
func (m *Machine) JobCount() int              { return len(m.jobs) }

// Priority returns the current job-selection order
func (m *Machine) Priority() []*catalog.Transformation {
	return append([]*catalog.Transformation(nil), m.priority...)
}

// InputBuffer returns a copy of the input buffer
func (m *Machine) InputBuffer() []Part { return append([]Part(nil), m.input...) }

// OutputBuffer returns a copy of the output buffer in FIFO order
func (m *Machine) OutputBuffer() []Part { return append([]Part(nil), m.output...) }

// Jobs returns the active jobs. Callers must treat them as read-only.
func (m *Machine) Jobs() []*Job { return append([]*Job(nil), m.jobs...) }

// HasFreeSlot reports whether another job may start
func (m *Machine) HasFreeSlot() bool {
	return len(m.jobs) < m.machineType.Slots
}

// Supports reports whether any transformation of the machine type consumes the part type
func (m *Machine) Supports(id catalog.PartTypeID) bool {
	for _, t := range m.machineType.Transformations {
		if t.Consumes(id) {
			return true
		}
	}
	return false
}

// CanStart reports whether the input buffer covers the transformation's requirements,
// multiplicities included. Slot availability is checked separately.
func (m *Machine) CanStart(t *catalog.Transformation) bool {
	return Covers(m.input, t)
}

// StartJob removes exactly the required parts from the input buffer and starts a job
// with the transformation's full duration. Inputs are never partially consumed.
func (m *Machine) StartJob(t *catalog.Transformation) error {
	if !m.HasFreeSlot() {
		return &ErrNoFreeSlot{MachineID: m.id, Slots: m.machineType.Slots}
	}

	taken, remaining, ok := takeMatching(m.input, t)
	if !ok {
		return &ErrInputsUnavailable{MachineID: m.id, Transformation: t.Name}
	}

	m.input = remaining
	m.jobs = append(m.jobs, newJob(t, taken))
	return nil
}

// TryStartNext starts the first transformation in priority order whose inputs are
// available, if a slot is free. At most one job is started per call.
func (m *Machine) TryStartNext() (*catalog.Transformation, bool) {
	if !m.HasFreeSlot() {
		return nil, false
	}
	for _, t := range m.priority {
		if !m.CanStart(t) {
			continue
		}
		if err := m.StartJob(t); err != nil {
			panic(&ErrInconsistentBuffer{Detail: err.Error()})
		}
		return t, true
	}
	return nil, false
}

// AdvanceJobs moves every active job one tick forward. Jobs reaching zero produce
// one fresh part of their output type, appended to the output buffer, and release
// their consumed parts. Completions are reported in job order.
func (m *Machine) AdvanceJobs(alloc IDAllocator) []Completion {
	var completed []Completion
	running := m.jobs[:0]
	for _, job := range m.jobs {
		if !job.tick() {
			running = append(running, job)
			continue
		}

		part := Part{ID: alloc.NextPartID(), Type: job.transformation.Output}
		m.output = append(m.output, part)
		completed = append(completed, Completion{
			Transformation: job.transformation,
			Consumed:       job.consumed,
			Output:         part,
		})
	}
	for i := len(running); i < len(m.jobs); i++ {
		m.jobs[i] = nil
	}
	m.jobs = running
	return completed
}

// Receive appends parts to the input buffer
func (m *Machine) Receive(parts ...Part) {
	m.input = append(m.input, parts...)
}

// DrainOutput removes up to limit parts from the head of the output buffer
func (m *Machine) DrainOutput(limit int) []Part {
	if limit <= 0 || len(m.output) == 0 {
		return nil
	}
	if limit > len(m.output) {
		limit = len(m.output)
	}
	drained := append([]Part(nil), m.output[:limit]...)
	m.output = append(m.output[:0], m.output[limit:]...)
	return drained
}

// RemoveFinished takes every finished-good part out of the output buffer, keeping
// the order of the rest
func (m *Machine) RemoveFinished(c *catalog.Catalog) []Part {
	var sold []Part
	kept := m.output[:0]
	for _, p := range m.output {
		if c.PartType(p.Type).Finished {
			sold = append(sold, p)
			continue
		}
		kept = append(kept, p)
	}
	m.output = kept
	return sold
}

// SetPriority overrides the job-selection order. names must be a permutation of the
// machine type's transformations.
func (m *Machine) SetPriority(names []string) error {
	if len(names) != len(m.machineType.Transformations) {
		return &ErrInvalidPriority{
			MachineID: m.id,
			Reason:    fmt.Sprintf("expected %d transformations, got %d", len(m.machineType.Transformations), len(names)),
		}
	}

	byName := make(map[string]*catalog.Transformation, len(names))
	for _, t := range m.machineType.Transformations {
		byName[t.Name] = t
	}

	priority := make([]*catalog.Transformation, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return &ErrInvalidPriority{MachineID: m.id, Reason: fmt.Sprintf("%s is not supported or listed twice", name)}
		}
		delete(byName, name)
		priority = append(priority, t)
	}

	m.priority = priority
	return nil
}

// Reset clears buffers and jobs and restores the default priority
func (m *Machine) Reset() {
	m.input = nil
	m.output = nil
	m.jobs = nil
	m.priority = append([]*catalog.Transformation(nil), m.machineType.Transformations...)
}

// heldParts appends every part the machine holds to dst
func (m *Machine) heldParts(dst []Part) []Part {
	dst = append(dst, m.input...)
	dst = append(dst, m.output...)
	for _, job := range m.jobs {
		dst = append(dst, job.consumed...)
	}
	return dst
}

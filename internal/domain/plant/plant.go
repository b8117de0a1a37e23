package plant

import (
	"fmt"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// MachineSpec names one machine instance and its machine type
type MachineSpec struct {
	ID   string
	Type string
}

// Ledger counts part lifecycle events since the last reset. Held is the number of
// parts that must currently exist somewhere in the plant.
type Ledger struct {
	Created  int
	Consumed int
	Sold     int
}

// Held returns created minus consumed minus sold
func (l Ledger) Held() int {
	return l.Created - l.Consumed - l.Sold
}

// RefillReport describes one RefillGlobalBuffer call
type RefillReport struct {
	Drained     int
	Synthesized []Part
}

// JobStart records a job started during Advance
type JobStart struct {
	Machine        int
	Transformation *catalog.Transformation
}

// JobCompletion records a job completed during Advance
type JobCompletion struct {
	Machine int
	Completion
}

// TickReport describes one Advance call
type TickReport struct {
	Tick      int
	Started   []JobStart
	Completed []JobCompletion
	Sold      []Part
}

// Plant owns every machine, the global buffer of unassigned parts and the part id
// counter. It is single-writer: callers serialise access.
type Plant struct {
	catalog         *catalog.Catalog
	machines        []*Machine
	transformations []*catalog.Transformation
	elementary      []catalog.PartTypeID

	global []Part
	nextID int
	tick   int
	ledger Ledger
}

// New builds a plant from machine specs resolved against the catalog. Elementary
// types are computed once: part types, in declaration order, that no machine's
// transformations produce.
func New(c *catalog.Catalog, specs []MachineSpec) (*Plant, error) {
	p := &Plant{catalog: c}

	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if seen[spec.ID] {
			return nil, &ErrDuplicateMachine{MachineID: spec.ID}
		}
		seen[spec.ID] = true

		mt, ok := c.MachineType(spec.Type)
		if !ok {
			return nil, fmt.Errorf("machine %s: %w", spec.ID, &catalog.ErrUnknownMachineType{Name: spec.Type})
		}
		p.machines = append(p.machines, NewMachine(spec.ID, mt))
	}

	produced := make(map[catalog.PartTypeID]bool)
	distinct := make(map[catalog.TransformationID]bool)
	for _, m := range p.machines {
		for _, t := range m.Type().Transformations {
			produced[t.Output] = true
			if !distinct[t.ID] {
				distinct[t.ID] = true
				p.transformations = append(p.transformations, t)
			}
		}
	}
	for _, pt := range c.PartTypes() {
		if !produced[pt.ID] {
			p.elementary = append(p.elementary, pt.ID)
		}
	}

	return p, nil
}

// FromDefinition builds and prices the catalog of a definition and instantiates its machines
func FromDefinition(def catalog.Definition, maxPasses int) (*Plant, error) {
	c, err := catalog.FromDefinition(def, maxPasses)
	if err != nil {
		return nil, err
	}

	specs := make([]MachineSpec, 0, len(def.Machines))
	for _, m := range def.Machines {
		specs = append(specs, MachineSpec{ID: m.ID, Type: m.Type})
	}
	return New(c, specs)
}

// Getters

func (p *Plant) Catalog() *catalog.Catalog { return p.catalog }
func (p *Plant) Tick() int                 { return p.tick }
func (p *Plant) Ledger() Ledger            { return p.ledger }
func (p *Plant) GlobalCount() int          { return len(p.global) }

// Machines returns the machines in index order. Callers must not mutate them
// outside the plant's own operations.
func (p *Plant) Machines() []*Machine { return p.machines }

// Machine returns the machine at an index
func (p *Plant) Machine(index int) (*Machine, error) {
	if index < 0 || index >= len(p.machines) {
		return nil, &ErrMachineNotFound{Machine: fmt.Sprintf("#%d", index)}
	}
	return p.machines[index], nil
}

// Transformations returns the distinct transformations of all machines in
// first-occurrence order (machine order, then machine type order)
func (p *Plant) Transformations() []*catalog.Transformation { return p.transformations }

// Elementary returns the elementary part types. It may be empty.
func (p *Plant) Elementary() []catalog.PartTypeID {
	return append([]catalog.PartTypeID(nil), p.elementary...)
}

// IsElementary reports whether a part type is raw stock
func (p *Plant) IsElementary(id catalog.PartTypeID) bool {
	for _, e := range p.elementary {
		if e == id {
			return true
		}
	}
	return false
}

// GlobalBuffer returns a copy of the global buffer in order
func (p *Plant) GlobalBuffer() []Part { return append([]Part(nil), p.global...) }

// NextPartID returns a fresh id. Ids never repeat between resets.
func (p *Plant) NextPartID() int {
	id := p.nextID
	p.nextID++
	return id
}

// CanRoute reports whether the global buffer covers a transformation's requirements
func (p *Plant) CanRoute(t *catalog.Transformation) bool {
	return Covers(p.global, t)
}

// Route moves the parts a transformation needs from the global buffer into the
// input buffer of the machine at machineIndex, matching first-encountered parts in
// buffer order. Nothing moves when the buffer cannot cover the requirements.
func (p *Plant) Route(machineIndex int, t *catalog.Transformation) ([]Part, bool, error) {
	m, err := p.Machine(machineIndex)
	if err != nil {
		return nil, false, err
	}

	taken, remaining, ok := takeMatching(p.global, t)
	if !ok {
		return nil, false, nil
	}
	p.global = remaining
	m.Receive(taken...)
	return taken, true, nil
}

// RefillGlobalBuffer fills the global buffer up to capacity.
//
// Phase 1 drains machine output buffers in machine order, FIFO within each
// machine, repeating passes while slots remain and the previous pass moved a part.
// Phase 2 synthesises elementary parts round-robin into any remaining slot; a plant
// without elementary types falls back to the first declared part type.
func (p *Plant) RefillGlobalBuffer(capacity int) RefillReport {
	var report RefillReport
	free := capacity - len(p.global)

	for free > 0 {
		transferred := false
		for _, m := range p.machines {
			drained := m.DrainOutput(free)
			if len(drained) == 0 {
				continue
			}
			p.global = append(p.global, drained...)
			free -= len(drained)
			report.Drained += len(drained)
			transferred = true
			if free == 0 {
				break
			}
		}
		if !transferred {
			break
		}
	}

	if free <= 0 {
		return report
	}

	stock := p.elementary
	if len(stock) == 0 {
		if p.catalog.PartTypeCount() == 0 {
			return report
		}
		stock = []catalog.PartTypeID{p.catalog.PartTypes()[0].ID}
	}
	for i := 0; i < free; i++ {
		part := Part{ID: p.NextPartID(), Type: stock[i%len(stock)]}
		p.global = append(p.global, part)
		report.Synthesized = append(report.Synthesized, part)
	}
	p.ledger.Created += len(report.Synthesized)
	return report
}

// Advance runs one tick on every machine in index order: start at most one job,
// advance running jobs, then sell completed finished goods. Completed intermediates
// stay in their machine's output buffer until the next refill drains them.
func (p *Plant) Advance() TickReport {
	p.tick++
	report := TickReport{Tick: p.tick}

	for i, m := range p.machines {
		if t, started := m.TryStartNext(); started {
			report.Started = append(report.Started, JobStart{Machine: i, Transformation: t})
		}

		for _, done := range m.AdvanceJobs(p) {
			p.ledger.Created++
			p.ledger.Consumed += len(done.Consumed)
			report.Completed = append(report.Completed, JobCompletion{Machine: i, Completion: done})
		}

		sold := m.RemoveFinished(p.catalog)
		p.ledger.Sold += len(sold)
		report.Sold = append(report.Sold, sold...)
	}

	return report
}

// Reset empties the global buffer, resets every machine and zeroes the tick and
// id counters. The catalog is untouched.
func (p *Plant) Reset() {
	p.global = nil
	for _, m := range p.machines {
		m.Reset()
	}
	p.tick = 0
	p.nextID = 0
	p.ledger = Ledger{}
}

// HeldParts returns every part in the plant: global buffer first, then per machine
// input buffer, output buffer and the consumed parts of active jobs
func (p *Plant) HeldParts() []Part {
	held := append([]Part(nil), p.global...)
	for _, m := range p.machines {
		held = m.heldParts(held)
	}
	return held
}

// Profit sums value minus cost over every held part
func (p *Plant) Profit() float64 {
	total := 0.0
	for _, part := range p.HeldParts() {
		total += p.catalog.PartType(part.Type).Margin()
	}
	return total
}

// Verify checks the membership invariants: each held part appears once, the held
// count matches the ledger, and no machine exceeds its slots
func (p *Plant) Verify() error {
	held := p.HeldParts()
	seen := make(map[int]bool, len(held))
	for _, part := range held {
		if seen[part.ID] {
			return &ErrInconsistentBuffer{Detail: fmt.Sprintf("part %d held twice", part.ID)}
		}
		seen[part.ID] = true
	}
	if len(held) != p.ledger.Held() {
		return &ErrInconsistentBuffer{Detail: fmt.Sprintf("holding %d parts, ledger expects %d", len(held), p.ledger.Held())}
	}
	for _, m := range p.machines {
		if m.JobCount() > m.Slots() {
			return &ErrInconsistentBuffer{Detail: fmt.Sprintf("machine %s runs %d jobs on %d slots", m.ID(), m.JobCount(), m.Slots())}
		}
	}
	return nil
}

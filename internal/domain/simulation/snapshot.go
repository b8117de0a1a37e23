package simulation

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
)

// PartView is a named, read-only rendering of one part
type PartView struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

func (p PartView) String() string {
	return fmt.Sprintf("%d:%s", p.ID, p.Type)
}

// JobView is a read-only rendering of one active job
type JobView struct {
	Transformation string     `json:"transformation"`
	RemainingTicks int        `json:"remaining_ticks"`
	Consumed       []PartView `json:"consumed"`
}

// MachineView is a read-only rendering of one machine
type MachineView struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Slots  int        `json:"slots"`
	Input  []PartView `json:"input"`
	Output []PartView `json:"output"`
	Jobs   []JobView  `json:"jobs"`
}

// Snapshot is a copy of the plant state for status reporting. Mutating it has no
// effect on the environment.
type Snapshot struct {
	Tick     int           `json:"tick"`
	Goal     string        `json:"goal,omitempty"`
	Profit   float64       `json:"profit"`
	Global   []PartView    `json:"global"`
	Machines []MachineView `json:"machines"`
}

// Snapshot copies the global buffer and every machine's buffers and jobs
func (e *Environment) Snapshot() Snapshot {
	goal, _ := e.Goal()
	snap := Snapshot{
		Tick:   e.plant.Tick(),
		Goal:   goal,
		Profit: e.plant.Profit(),
		Global: e.views(e.plant.GlobalBuffer()),
	}

	for _, m := range e.plant.Machines() {
		view := MachineView{
			ID:     m.ID(),
			Type:   m.Type().Name,
			Slots:  m.Slots(),
			Input:  e.views(m.InputBuffer()),
			Output: e.views(m.OutputBuffer()),
		}
		for _, job := range m.Jobs() {
			view.Jobs = append(view.Jobs, JobView{
				Transformation: job.Transformation().Name,
				RemainingTicks: job.RemainingTicks(),
				Consumed:       e.views(job.Consumed()),
			})
		}
		snap.Machines = append(snap.Machines, view)
	}
	return snap
}

func (e *Environment) views(parts []plant.Part) []PartView {
	out := make([]PartView, 0, len(parts))
	for _, p := range parts {
		out = append(out, PartView{ID: p.ID, Type: e.catalog.PartType(p.Type).Name})
	}
	return out
}

// String renders the status block:
//
//	Global Buffer: 0:a1, 1:a2
//	Machine m1: Input [2:a1] | Output [] | Jobs [[3:a1, 4:a2]]
func (s Snapshot) String() string {
	var b strings.Builder
	b.WriteString("Global Buffer: ")
	b.WriteString(joinParts(s.Global))
	for _, m := range s.Machines {
		jobs := make([]string, 0, len(m.Jobs))
		for _, j := range m.Jobs {
			jobs = append(jobs, "["+joinParts(j.Consumed)+"]")
		}
		fmt.Fprintf(&b, "\nMachine %s: Input [%s] | Output [%s] | Jobs [%s]",
			m.ID, joinParts(m.Input), joinParts(m.Output), strings.Join(jobs, "; "))
	}
	return b.String()
}

func joinParts(parts []PartView) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}

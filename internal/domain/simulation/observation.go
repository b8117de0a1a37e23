package simulation

// machineFeatures is the count block per machine before the supports flags:
// input buffer, output buffer and active jobs
const machineFeatures = 3

// EmptySlot returns the code of an unused global buffer slot: one past the last
// part type index
func (e *Environment) EmptySlot() float32 {
	return float32(e.catalog.PartTypeCount())
}

// ObservationSize returns the fixed observation length
func (e *Environment) ObservationSize() int {
	types := e.catalog.PartTypeCount()
	size := e.cfg.MaxBuffer + len(e.plant.Machines())*(machineFeatures+types)
	if e.cfg.GoalConditioned {
		size += types
	}
	return size
}

// Observation encodes the current state as a fixed-length vector:
//
//	[MaxBuffer global slots: part type index, or EmptySlot]
//	[per machine: input count, output count, job count, supports flag per part type]
//	[goal one-hot per part type, when goal conditioned]
//
// Global buffer parts past MaxBuffer are not reported.
func (e *Environment) Observation() []float32 {
	obs := make([]float32, 0, e.ObservationSize())

	global := e.plant.GlobalBuffer()
	for i := 0; i < e.cfg.MaxBuffer; i++ {
		if i < len(global) {
			obs = append(obs, float32(global[i].Type))
			continue
		}
		obs = append(obs, e.EmptySlot())
	}

	partTypes := e.catalog.PartTypes()
	for _, m := range e.plant.Machines() {
		obs = append(obs,
			float32(m.InputCount()),
			float32(m.OutputCount()),
			float32(m.JobCount()),
		)
		for _, pt := range partTypes {
			obs = append(obs, flag(m.Supports(pt.ID)))
		}
	}

	if e.cfg.GoalConditioned {
		for _, pt := range partTypes {
			obs = append(obs, flag(e.hasGoal && pt.ID == e.goal))
		}
	}

	return obs
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

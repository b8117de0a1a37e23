package plant

import "github.com/andrescamacho/jobshop-sim/internal/domain/catalog"

// Part is one concrete physical unit. It never changes after creation; only the
// container holding it does.
type Part struct {
	ID   int
	Type catalog.PartTypeID
}

// IDAllocator hands out plant-unique part ids
type IDAllocator interface {
	NextPartID() int
}

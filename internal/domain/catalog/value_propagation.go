package catalog

// PropagationShare is the fraction of an output's value shared among its inputs
const PropagationShare = 0.5

// DefaultMaxPropagationPasses bounds PropagateValues when no explicit limit is given
const DefaultMaxPropagationPasses = 1000

// PropagateValues prices intermediate goods backwards from finished-good values.
//
// Each pass visits every transformation whose output already has a positive value
// and offers every input PropagationShare * output.value / len(inputs). An input
// keeps the highest offer it has ever received, so values only grow. Passes repeat
// until one completes without any change.
//
// Returns the number of passes executed, including the final quiet pass.
func PropagateValues(c *Catalog) (int, error) {
	return PropagateValuesWithLimit(c, DefaultMaxPropagationPasses)
}

// PropagateValuesWithLimit is PropagateValues with an explicit pass cap.
// Cyclic transformation graphs are unsupported input; the cap turns a
// configuration that never settles into ErrPropagationDiverged.
func PropagateValuesWithLimit(c *Catalog, maxPasses int) (int, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPropagationPasses
	}

	for pass := 1; pass <= maxPasses; pass++ {
		if !propagationPass(c) {
			return pass, nil
		}
	}

	return maxPasses, &ErrPropagationDiverged{Passes: maxPasses}
}

// propagationPass runs one scan over all transformations and reports whether any value changed
func propagationPass(c *Catalog) bool {
	updated := false
	for _, t := range c.transformations {
		output := c.partTypes[t.Output]
		if output.Value <= 0 || len(t.Inputs) == 0 {
			continue
		}

		candidate := PropagationShare * output.Value / float64(len(t.Inputs))
		for _, inputID := range t.Inputs {
			input := c.partTypes[inputID]
			if candidate > input.Value {
				input.Value = candidate
				updated = true
			}
		}
	}
	return updated
}

package catalog

// ReferenceDefinition returns the built-in reference plant.
//
// Two finished goods (fp1 sells for 20, fp2 for 30) are assembled from ten "a"
// raw/primary parts and ten "b" intermediates. No machine type lists tr10 or tr13,
// so b7 and b0 join a1, a2, a4, a5, a6, a8 and a0 as elementary raw stock.
//
// Ten machines of six types share the fifteen transformations; m7..m0 duplicate
// the types of m1, m3, m4 and m6.
func ReferenceDefinition() Definition {
	partTypes := []PartTypeDef{
		{Name: "a1", Cost: 10},
		{Name: "a2", Cost: 10},
		{Name: "a3", Cost: 0},
		{Name: "a4", Cost: 10},
		{Name: "a5", Cost: 10},
		{Name: "a6", Cost: 10},
		{Name: "a7", Cost: 0},
		{Name: "a8", Cost: 10},
		{Name: "a9", Cost: 0},
		{Name: "a0", Cost: 10},
	}
	for _, name := range []string{"b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8", "b9", "b0"} {
		partTypes = append(partTypes, PartTypeDef{Name: name})
	}
	partTypes = append(partTypes,
		PartTypeDef{Name: "fp1", Value: 20, Finished: true},
		PartTypeDef{Name: "fp2", Value: 30, Finished: true},
	)

	return Definition{
		Name:      "reference",
		PartTypes: partTypes,
		Transformations: []TransformationDef{
			{Name: "tr1", Inputs: []string{"a1", "a2"}, Output: "a3", Duration: 3},
			{Name: "tr2", Inputs: []string{"a4", "a5", "a6"}, Output: "a7", Duration: 6},
			{Name: "tr3", Inputs: []string{"a8"}, Output: "a9", Duration: 2},
			{Name: "tr4", Inputs: []string{"a8", "a0"}, Output: "b1", Duration: 2},
			{Name: "tr5", Inputs: []string{"a3", "a0"}, Output: "b2", Duration: 3},
			{Name: "tr6", Inputs: []string{"b2", "a9"}, Output: "b3", Duration: 5},
			{Name: "tr7", Inputs: []string{"b2", "a5"}, Output: "b4", Duration: 5},
			{Name: "tr8", Inputs: []string{"a2", "a9"}, Output: "b5", Duration: 5},
			{Name: "tr9", Inputs: []string{"b2", "a5"}, Output: "b6", Duration: 5},
			{Name: "tr10", Inputs: []string{"b3", "b5", "b1"}, Output: "b7", Duration: 5},
			{Name: "tr11", Inputs: []string{"b1", "a5", "a7"}, Output: "b8", Duration: 5},
			{Name: "tr12", Inputs: []string{"b8"}, Output: "b9", Duration: 5},
			{Name: "tr13", Inputs: []string{"b7"}, Output: "b0", Duration: 5},
			{Name: "ftran1", Inputs: []string{"b4", "b5", "b6", "b7"}, Output: "fp1", Duration: 10},
			{Name: "ftran2", Inputs: []string{"b1", "b2", "b3", "b9", "b8", "b0"}, Output: "fp2", Duration: 15},
		},
		MachineTypes: []MachineTypeDef{
			{Name: "m1", Slots: 4, Transformations: []string{"tr1", "tr6"}},
			{Name: "m2", Slots: 3, Transformations: []string{"tr2", "tr9"}},
			{Name: "m3", Slots: 2, Transformations: []string{"tr2", "tr5", "tr11"}},
			{Name: "m4", Slots: 6, Transformations: []string{"tr12", "tr3", "tr7"}},
			{Name: "m5", Slots: 5, Transformations: []string{"tr4", "tr8", "ftran1"}},
			{Name: "m6", Slots: 1, Transformations: []string{"tr4", "ftran2"}},
		},
		Machines: []MachineDef{
			{ID: "m1", Type: "m1"},
			{ID: "m2", Type: "m2"},
			{ID: "m3", Type: "m3"},
			{ID: "m4", Type: "m4"},
			{ID: "m5", Type: "m5"},
			{ID: "m6", Type: "m6"},
			{ID: "m7", Type: "m1"},
			{ID: "m8", Type: "m3"},
			{ID: "m9", Type: "m4"},
			{ID: "m0", Type: "m6"},
		},
	}
}

// SimpleChainDefinition returns a linear raw -> intermediate -> finished chain on
// two identical single-slot machines. With finished.value = 100 propagation
// prices intermediate at 50 and raw at 25.
func SimpleChainDefinition() Definition {
	return Definition{
		Name: "simple-chain",
		PartTypes: []PartTypeDef{
			{Name: "raw", Cost: 10},
			{Name: "intermediate", Cost: 0},
			{Name: "finished", Cost: 0, Value: 100, Finished: true},
		},
		Transformations: []TransformationDef{
			{Name: "machining", Inputs: []string{"raw"}, Output: "intermediate", Duration: 2},
			{Name: "assembly", Inputs: []string{"intermediate"}, Output: "finished", Duration: 3},
		},
		MachineTypes: []MachineTypeDef{
			{Name: "machine_type_A", Slots: 1, Transformations: []string{"machining", "assembly"}},
		},
		Machines: []MachineDef{
			{ID: "machine_0", Type: "machine_type_A"},
			{ID: "machine_1", Type: "machine_type_A"},
		},
	}
}

// BuiltinDefinitions maps the names accepted by BuiltinDefinition
var BuiltinDefinitions = map[string]func() Definition{
	"reference":    ReferenceDefinition,
	"simple-chain": SimpleChainDefinition,
}

// BuiltinDefinition resolves a built-in plant by name
func BuiltinDefinition(name string) (Definition, bool) {
	build, ok := BuiltinDefinitions[name]
	if !ok {
		return Definition{}, false
	}
	return build(), true
}

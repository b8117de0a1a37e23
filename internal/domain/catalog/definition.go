package catalog

import "fmt"

// Definition is the declarative description of a plant: its part types,
// transformations, machine types and machine instances. It is what an external
// configuration loader produces and what FromDefinition turns into a Catalog.
type Definition struct {
	Name            string              `yaml:"name" validate:"required"`
	PartTypes       []PartTypeDef       `yaml:"part_types" validate:"required,min=1,dive"`
	Transformations []TransformationDef `yaml:"transformations" validate:"dive"`
	MachineTypes    []MachineTypeDef    `yaml:"machine_types" validate:"dive"`
	Machines        []MachineDef        `yaml:"machines" validate:"dive"`
}

// PartTypeDef declares one part type. Finished goods carry their sale value.
type PartTypeDef struct {
	Name     string  `yaml:"name" validate:"required"`
	Cost     float64 `yaml:"cost" validate:"min=0"`
	Value    float64 `yaml:"value" validate:"min=0"`
	Finished bool    `yaml:"finished"`
}

// TransformationDef declares one transformation by part type names
type TransformationDef struct {
	Name     string   `yaml:"name" validate:"required"`
	Inputs   []string `yaml:"inputs" validate:"required,min=1,dive,required"`
	Output   string   `yaml:"output" validate:"required"`
	Duration int      `yaml:"duration" validate:"min=1"`
}

// MachineTypeDef declares one machine type; Transformations is the priority order
type MachineTypeDef struct {
	Name            string   `yaml:"name" validate:"required"`
	Slots           int      `yaml:"slots" validate:"min=1"`
	Transformations []string `yaml:"transformations" validate:"dive,required"`
}

// MachineDef declares one physical machine of a given type
type MachineDef struct {
	ID   string `yaml:"id" validate:"required"`
	Type string `yaml:"type" validate:"required"`
}

// FromDefinition builds a catalog from a definition and prices it with
// PropagateValuesWithLimit. Machine instances are not part of the catalog; the
// plant package resolves them against the returned catalog.
func FromDefinition(def Definition, maxPasses int) (*Catalog, error) {
	c, err := Build(def)
	if err != nil {
		return nil, err
	}
	if _, err := PropagateValuesWithLimit(c, maxPasses); err != nil {
		return nil, err
	}
	return c, nil
}

// Build resolves a definition into an unpriced catalog and checks that every
// machine names a declared machine type
func Build(def Definition) (*Catalog, error) {
	c := New(def.Name)

	for _, pt := range def.PartTypes {
		if _, err := c.AddPartType(pt.Name, pt.Cost, pt.Value, pt.Finished); err != nil {
			return nil, err
		}
	}

	for _, t := range def.Transformations {
		if _, err := c.AddTransformation(t.Name, t.Inputs, t.Output, t.Duration); err != nil {
			return nil, err
		}
	}

	for _, mt := range def.MachineTypes {
		if _, err := c.AddMachineType(mt.Name, mt.Slots, mt.Transformations); err != nil {
			return nil, err
		}
	}

	for _, m := range def.Machines {
		if _, ok := c.MachineType(m.Type); !ok {
			return nil, fmt.Errorf("machine %s: %w", m.ID, &ErrUnknownMachineType{Name: m.Type})
		}
	}

	return c, nil
}

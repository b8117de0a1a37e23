package catalog

// PartTypeID is the stable arena index of a part type inside its Catalog.
// The index doubles as the part-type code used in observations.
type PartTypeID int

// TransformationID is the stable arena index of a transformation inside its Catalog
type TransformationID int

// PartType describes a kind of part.
//
// Cost is fixed input data. Value is either declared (finished goods) or derived
// by PropagateValues. All holders reference the catalog record by id, so a value
// raised by propagation is visible everywhere.
type PartType struct {
	ID       PartTypeID
	Name     string
	Cost     float64
	Value    float64
	Finished bool
}

// Margin returns value minus cost, the contribution of one held part to plant profit
func (p *PartType) Margin() float64 {
	return p.Value - p.Cost
}

// Requirement is one distinct input type of a transformation together with its multiplicity
type Requirement struct {
	PartType PartTypeID
	Count    int
}

// Transformation turns an ordered multiset of input parts into one output part
// after Duration ticks.
type Transformation struct {
	ID       TransformationID
	Name     string
	Inputs   []PartTypeID
	Output   PartTypeID
	Duration int

	requirements []Requirement
}

// Requirements returns the distinct input types in first-appearance order with their counts
func (t *Transformation) Requirements() []Requirement {
	return t.requirements
}

// Consumes reports whether the part type is one of the transformation inputs
func (t *Transformation) Consumes(id PartTypeID) bool {
	for _, req := range t.requirements {
		if req.PartType == id {
			return true
		}
	}
	return false
}

// MachineType is a machine model: how many jobs it can run concurrently and which
// transformations it supports. The order of Transformations is the default
// job-selection priority.
type MachineType struct {
	Name            string
	Slots           int
	Transformations []*Transformation
}

// Supports reports whether the machine type lists the transformation
func (m *MachineType) Supports(t *Transformation) bool {
	for _, candidate := range m.Transformations {
		if candidate.ID == t.ID {
			return true
		}
	}
	return false
}

// Catalog owns every part type, transformation and machine type of one plant
// configuration. Records are created once and addressed by id.
type Catalog struct {
	name string

	partTypes      []*PartType
	partTypeByName map[string]PartTypeID

	transformations      []*Transformation
	transformationByName map[string]TransformationID

	machineTypes      []*MachineType
	machineTypeByName map[string]*MachineType
}

// New creates an empty catalog
func New(name string) *Catalog {
	return &Catalog{
		name:                 name,
		partTypes:            make([]*PartType, 0),
		partTypeByName:       make(map[string]PartTypeID),
		transformations:      make([]*Transformation, 0),
		transformationByName: make(map[string]TransformationID),
		machineTypes:         make([]*MachineType, 0),
		machineTypeByName:    make(map[string]*MachineType),
	}
}

// Name returns the catalog (plant configuration) name
func (c *Catalog) Name() string { return c.name }

// AddPartType declares a new part type. Finished goods keep the declared value;
// every other type normally starts at zero and is priced by PropagateValues.
func (c *Catalog) AddPartType(name string, cost, value float64, finished bool) (PartTypeID, error) {
	if name == "" {
		return 0, &ErrInvalidDefinition{Kind: "part type", Name: name, Reason: "name is required"}
	}
	if _, exists := c.partTypeByName[name]; exists {
		return 0, &ErrDuplicateName{Kind: "part type", Name: name}
	}
	if cost < 0 {
		return 0, &ErrInvalidDefinition{Kind: "part type", Name: name, Reason: "cost must not be negative"}
	}
	if value < 0 {
		return 0, &ErrInvalidDefinition{Kind: "part type", Name: name, Reason: "value must not be negative"}
	}

	id := PartTypeID(len(c.partTypes))
	c.partTypes = append(c.partTypes, &PartType{
		ID:       id,
		Name:     name,
		Cost:     cost,
		Value:    value,
		Finished: finished,
	})
	c.partTypeByName[name] = id
	return id, nil
}

// AddTransformation declares a transformation over already declared part types.
// Inputs may repeat a name to require several units of the same type.
func (c *Catalog) AddTransformation(name string, inputs []string, output string, duration int) (*Transformation, error) {
	if name == "" {
		return nil, &ErrInvalidDefinition{Kind: "transformation", Name: name, Reason: "name is required"}
	}
	if _, exists := c.transformationByName[name]; exists {
		return nil, &ErrDuplicateName{Kind: "transformation", Name: name}
	}
	if duration <= 0 {
		return nil, &ErrInvalidDefinition{Kind: "transformation", Name: name, Reason: "duration must be positive"}
	}
	if len(inputs) == 0 {
		return nil, &ErrInvalidDefinition{Kind: "transformation", Name: name, Reason: "at least one input is required"}
	}

	outputID, ok := c.partTypeByName[output]
	if !ok {
		return nil, &ErrUnknownPartType{Name: output}
	}

	inputIDs := make([]PartTypeID, 0, len(inputs))
	for _, input := range inputs {
		id, ok := c.partTypeByName[input]
		if !ok {
			return nil, &ErrUnknownPartType{Name: input}
		}
		inputIDs = append(inputIDs, id)
	}

	t := &Transformation{
		ID:           TransformationID(len(c.transformations)),
		Name:         name,
		Inputs:       inputIDs,
		Output:       outputID,
		Duration:     duration,
		requirements: buildRequirements(inputIDs),
	}
	c.transformations = append(c.transformations, t)
	c.transformationByName[name] = t.ID
	return t, nil
}

// AddMachineType declares a machine type supporting the named transformations in priority order
func (c *Catalog) AddMachineType(name string, slots int, transformations []string) (*MachineType, error) {
	if name == "" {
		return nil, &ErrInvalidDefinition{Kind: "machine type", Name: name, Reason: "name is required"}
	}
	if _, exists := c.machineTypeByName[name]; exists {
		return nil, &ErrDuplicateName{Kind: "machine type", Name: name}
	}
	if slots <= 0 {
		return nil, &ErrInvalidDefinition{Kind: "machine type", Name: name, Reason: "slots must be positive"}
	}

	supported := make([]*Transformation, 0, len(transformations))
	for _, tName := range transformations {
		t, ok := c.TransformationByName(tName)
		if !ok {
			return nil, &ErrUnknownTransformation{Name: tName}
		}
		supported = append(supported, t)
	}

	mt := &MachineType{
		Name:            name,
		Slots:           slots,
		Transformations: supported,
	}
	c.machineTypes = append(c.machineTypes, mt)
	c.machineTypeByName[name] = mt
	return mt, nil
}

// Lookups

// PartType returns the part type record for an id. It panics on an id that was
// not issued by this catalog.
func (c *Catalog) PartType(id PartTypeID) *PartType {
	return c.partTypes[id]
}

// PartTypeByName resolves a part type by name
func (c *Catalog) PartTypeByName(name string) (*PartType, bool) {
	id, ok := c.partTypeByName[name]
	if !ok {
		return nil, false
	}
	return c.partTypes[id], true
}

// PartTypes returns all part types in declaration order
func (c *Catalog) PartTypes() []*PartType {
	return c.partTypes
}

// PartTypeCount returns the number of declared part types
func (c *Catalog) PartTypeCount() int {
	return len(c.partTypes)
}

// Transformation returns the transformation record for an id
func (c *Catalog) Transformation(id TransformationID) *Transformation {
	return c.transformations[id]
}

// TransformationByName resolves a transformation by name
func (c *Catalog) TransformationByName(name string) (*Transformation, bool) {
	id, ok := c.transformationByName[name]
	if !ok {
		return nil, false
	}
	return c.transformations[id], true
}

// Transformations returns all transformations in declaration order
func (c *Catalog) Transformations() []*Transformation {
	return c.transformations
}

// MachineType resolves a machine type by name
func (c *Catalog) MachineType(name string) (*MachineType, bool) {
	mt, ok := c.machineTypeByName[name]
	return mt, ok
}

// MachineTypes returns all machine types in declaration order
func (c *Catalog) MachineTypes() []*MachineType {
	return c.machineTypes
}

// buildRequirements collapses an ordered input list into distinct types with counts,
// keeping first-appearance order
func buildRequirements(inputs []PartTypeID) []Requirement {
	reqs := make([]Requirement, 0, len(inputs))
	index := make(map[PartTypeID]int)
	for _, id := range inputs {
		if i, seen := index[id]; seen {
			reqs[i].Count++
			continue
		}
		index[id] = len(reqs)
		reqs = append(reqs, Requirement{PartType: id, Count: 1})
	}
	return reqs
}

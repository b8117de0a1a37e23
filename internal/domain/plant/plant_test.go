package plant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
)

func simpleChainPlant(t *testing.T) *plant.Plant {
	t.Helper()
	p, err := plant.FromDefinition(catalog.SimpleChainDefinition(), 0)
	require.NoError(t, err)
	return p
}

func typeNames(p *plant.Plant, ids []catalog.PartTypeID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, p.Catalog().PartType(id).Name)
	}
	return names
}

func partTypeNames(p *plant.Plant, parts []plant.Part) []string {
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		names = append(names, p.Catalog().PartType(part.Type).Name)
	}
	return names
}

func TestPlant_New_ReferenceStructure(t *testing.T) {
	// Act
	p, err := plant.FromDefinition(catalog.ReferenceDefinition(), 0)

	// Assert
	require.NoError(t, err)
	assert.Len(t, p.Machines(), 10)
	assert.Equal(t,
		[]string{"a1", "a2", "a4", "a5", "a6", "a8", "a0", "b7", "b0"},
		typeNames(p, p.Elementary()))

	names := make([]string, 0)
	for _, tr := range p.Transformations() {
		names = append(names, tr.Name)
	}
	assert.Equal(t,
		[]string{"tr1", "tr6", "tr2", "tr9", "tr5", "tr11", "tr12", "tr3", "tr7", "tr4", "tr8", "ftran1", "ftran2"},
		names, "distinct transformations in first-occurrence order")
}

func TestPlant_New_RejectsBadMachines(t *testing.T) {
	// Arrange
	c, err := catalog.FromDefinition(catalog.SimpleChainDefinition(), 0)
	require.NoError(t, err)

	// Act
	_, dupErr := plant.New(c, []plant.MachineSpec{{ID: "x", Type: "machine_type_A"}, {ID: "x", Type: "machine_type_A"}})
	_, typeErr := plant.New(c, []plant.MachineSpec{{ID: "y", Type: "robot"}})

	// Assert
	var dup *plant.ErrDuplicateMachine
	assert.ErrorAs(t, dupErr, &dup)
	var unknown *catalog.ErrUnknownMachineType
	assert.ErrorAs(t, typeErr, &unknown)
}

func TestPlant_NextPartID_Monotonic(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)

	// Act
	first := p.NextPartID()
	second := p.NextPartID()
	third := p.NextPartID()

	// Assert
	assert.Equal(t, []int{0, 1, 2}, []int{first, second, third})
}

func TestPlant_RefillGlobalBuffer_SynthesizesRoundRobin(t *testing.T) {
	// Arrange
	p, err := plant.FromDefinition(catalog.ReferenceDefinition(), 0)
	require.NoError(t, err)

	// Act
	report := p.RefillGlobalBuffer(11)

	// Assert
	assert.Equal(t, 0, report.Drained)
	assert.Len(t, report.Synthesized, 11)
	assert.Equal(t,
		[]string{"a1", "a2", "a4", "a5", "a6", "a8", "a0", "b7", "b0", "a1", "a2"},
		partTypeNames(p, p.GlobalBuffer()))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, idsOf(p.GlobalBuffer()))
	assert.Equal(t, 11, p.Ledger().Created)
}

func TestPlant_RefillGlobalBuffer_DrainsOutputsFirst(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	p.RefillGlobalBuffer(3)
	machining, _ := p.Catalog().TransformationByName("machining")
	for i := 0; i < 2; i++ {
		_, routed, err := p.Route(i, machining)
		require.NoError(t, err)
		require.True(t, routed)
	}
	// two ticks complete one intermediate on each machine
	p.Advance()
	p.Advance()
	require.Equal(t, 1, p.Machines()[0].OutputCount())
	require.Equal(t, 1, p.Machines()[1].OutputCount())

	// Act
	report := p.RefillGlobalBuffer(3)

	// Assert
	assert.Equal(t, 2, report.Drained)
	assert.Empty(t, report.Synthesized)
	assert.Equal(t, []string{"raw", "intermediate", "intermediate"}, partTypeNames(p, p.GlobalBuffer()))
	assert.Equal(t, 0, p.Machines()[0].OutputCount())
}

func TestPlant_RefillGlobalBuffer_RespectsCapacity(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	p.RefillGlobalBuffer(2)
	machining, _ := p.Catalog().TransformationByName("machining")
	_, _, _ = p.Route(0, machining)
	_, _, _ = p.Route(1, machining)
	p.Advance()
	p.Advance()
	p.RefillGlobalBuffer(1)

	// Act
	report := p.RefillGlobalBuffer(1)

	// Assert
	assert.Equal(t, 0, report.Drained)
	assert.Equal(t, 1, p.GlobalCount())
	assert.Equal(t, 1, p.Machines()[1].OutputCount(), "the second intermediate waits in its output buffer")
}

func TestPlant_RefillGlobalBuffer_FallsBackToFirstPartType(t *testing.T) {
	// Arrange: every type is produced, so nothing is elementary
	c := catalog.New("loop")
	_, _ = c.AddPartType("left", 1, 0, false)
	_, _ = c.AddPartType("right", 1, 0, false)
	_, _ = c.AddTransformation("l2r", []string{"left"}, "right", 1)
	_, _ = c.AddTransformation("r2l", []string{"right"}, "left", 1)
	_, _ = c.AddMachineType("swap", 1, []string{"l2r", "r2l"})
	p, err := plant.New(c, []plant.MachineSpec{{ID: "s1", Type: "swap"}})
	require.NoError(t, err)
	require.Empty(t, p.Elementary())

	// Act
	p.RefillGlobalBuffer(3)

	// Assert
	assert.Equal(t, []string{"left", "left", "left"}, partTypeNames(p, p.GlobalBuffer()))
}

func TestPlant_Advance_SellsFinishedGoods(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	cat := p.Catalog()
	intermediate, _ := cat.PartTypeByName("intermediate")
	p.Machines()[0].Receive(plant.Part{ID: p.NextPartID(), Type: intermediate.ID})

	// Act
	var sold int
	for i := 0; i < 3; i++ {
		sold += len(p.Advance().Sold)
	}

	// Assert
	assert.Equal(t, 1, sold)
	assert.Equal(t, 0, p.Machines()[0].OutputCount())
	assert.Equal(t, 3, p.Tick())
	assert.Equal(t, 1, p.Ledger().Sold)
	assert.Equal(t, 1, p.Ledger().Consumed)
}

func TestPlant_Advance_StartsAndDecrementsInSameTick(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	p.RefillGlobalBuffer(1)
	machining, _ := p.Catalog().TransformationByName("machining")
	_, routed, err := p.Route(0, machining)
	require.NoError(t, err)
	require.True(t, routed)

	// Act
	first := p.Advance()
	second := p.Advance()

	// Assert
	require.Len(t, first.Started, 1)
	assert.Empty(t, first.Completed)
	require.Len(t, second.Completed, 1)
	assert.Equal(t, "intermediate", p.Catalog().PartType(second.Completed[0].Output.Type).Name)
	assert.Equal(t, []string{"intermediate"}, partTypeNames(p, p.Machines()[0].OutputBuffer()))
}

func TestPlant_Route(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	p.RefillGlobalBuffer(2)
	machining, _ := p.Catalog().TransformationByName("machining")
	assembly, _ := p.Catalog().TransformationByName("assembly")

	// Act
	moved, routed, err := p.Route(1, machining)
	_, blocked, blockedErr := p.Route(0, assembly)
	_, _, missingErr := p.Route(7, machining)

	// Assert
	require.NoError(t, err)
	assert.True(t, routed)
	assert.Equal(t, []int{0}, idsOf(moved))
	assert.Equal(t, []int{0}, idsOf(p.Machines()[1].InputBuffer()))
	assert.Equal(t, []int{1}, idsOf(p.GlobalBuffer()))

	require.NoError(t, blockedErr)
	assert.False(t, blocked, "no intermediate in the global buffer")

	var notFound *plant.ErrMachineNotFound
	assert.ErrorAs(t, missingErr, &notFound)
}

func TestPlant_Reset(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	p.RefillGlobalBuffer(4)
	machining, _ := p.Catalog().TransformationByName("machining")
	_, _, _ = p.Route(0, machining)
	p.Advance()
	require.NoError(t, p.Machines()[1].SetPriority([]string{"assembly", "machining"}))

	// Act
	p.Reset()

	// Assert
	assert.Equal(t, 0, p.GlobalCount())
	assert.Equal(t, 0, p.Tick())
	assert.Equal(t, 0, p.NextPartID())
	assert.Equal(t, plant.Ledger{Created: 0, Consumed: 0, Sold: 0}, p.Ledger())
	for _, m := range p.Machines() {
		assert.Equal(t, 0, m.InputCount()+m.OutputCount()+m.JobCount())
		assert.Equal(t, "machining", m.Priority()[0].Name)
	}
	raw, _ := p.Catalog().PartTypeByName("raw")
	assert.Equal(t, 25.0, raw.Value, "catalog untouched")
}

func TestPlant_ProfitAndVerify(t *testing.T) {
	// Arrange
	p := simpleChainPlant(t)
	p.RefillGlobalBuffer(2)
	machining, _ := p.Catalog().TransformationByName("machining")
	_, _, _ = p.Route(0, machining)

	// Act
	profit := p.Profit()
	p.Advance()
	midJob := p.Profit()

	// Assert
	assert.Equal(t, 30.0, profit, "two raw parts at 25 - 10")
	assert.Equal(t, 30.0, midJob, "parts held by a job still count")
	assert.NoError(t, p.Verify())
}

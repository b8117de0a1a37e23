package production_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/production"
)

func referenceGraph(t *testing.T) (*production.Graph, *catalog.Catalog) {
	t.Helper()
	p, err := plant.FromDefinition(catalog.ReferenceDefinition(), 0)
	require.NoError(t, err)
	return production.NewGraph(p.Catalog(), p.Transformations()), p.Catalog()
}

func TestGraph_DistanceByName(t *testing.T) {
	g, _ := referenceGraph(t)

	tests := []struct {
		from, to  string
		want      int
		reachable bool
	}{
		{from: "fp2", to: "fp2", want: 0, reachable: true},
		{from: "b9", to: "fp2", want: 1, reachable: true},
		{from: "b8", to: "fp2", want: 1, reachable: true},
		{from: "a7", to: "fp2", want: 2, reachable: true},
		{from: "a4", to: "fp2", want: 3, reachable: true},
		{from: "a1", to: "fp1", want: 4, reachable: true},
		{from: "fp1", to: "a1", want: production.Unreachable, reachable: false},
		{from: "b7", to: "b0", want: production.Unreachable, reachable: false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			// Act
			d, reachable, err := g.DistanceByName(tt.from, tt.to)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.reachable, reachable)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestGraph_DistanceByName_UnknownType(t *testing.T) {
	g, _ := referenceGraph(t)

	_, _, err := g.DistanceByName("unobtainium", "fp1")

	var unknown *catalog.ErrUnknownPartType
	assert.ErrorAs(t, err, &unknown)
}

func TestGraph_OnlyMachineTransformationsCreateEdges(t *testing.T) {
	// Arrange: tr10 (b3, b5, b1 -> b7) is declared but no machine runs it
	g, c := referenceGraph(t)
	b3, _ := c.PartTypeByName("b3")
	b7, _ := c.PartTypeByName("b7")

	// Act
	_, reachable := g.Distance(b3.ID, b7.ID)

	// Assert
	assert.False(t, reachable)
}

func TestGraph_Potential(t *testing.T) {
	// Arrange
	g, c := referenceGraph(t)
	fp2, _ := c.PartTypeByName("fp2")
	b9, _ := c.PartTypeByName("b9")
	a7, _ := c.PartTypeByName("a7")
	fp1, _ := c.PartTypeByName("fp1")

	// Act
	phi := g.Potential([]catalog.PartTypeID{fp2.ID, b9.ID, a7.ID, fp1.ID}, fp2.ID)

	// Assert
	assert.InDelta(t, 1+math.Exp(-1)+math.Exp(-2), phi, 1e-12, "fp1 cannot reach fp2 and contributes 0")
	assert.Equal(t, 0.0, g.Potential(nil, fp2.ID))
}

func TestGraph_Upstream(t *testing.T) {
	// Arrange
	p, err := plant.FromDefinition(catalog.SimpleChainDefinition(), 0)
	require.NoError(t, err)
	g := production.NewGraph(p.Catalog(), p.Transformations())
	finished, _ := p.Catalog().PartTypeByName("finished")
	raw, _ := p.Catalog().PartTypeByName("raw")

	// Act
	upstream := g.Upstream(finished.ID)

	// Assert
	require.Len(t, upstream, 2)
	assert.Equal(t, raw.ID, upstream[0])
	assert.Empty(t, g.Upstream(raw.ID))
	assert.Len(t, g.Successors(raw.ID), 1)
}

func TestGraph_Path(t *testing.T) {
	// Arrange
	p, err := plant.FromDefinition(catalog.SimpleChainDefinition(), 0)
	require.NoError(t, err)
	c := p.Catalog()
	g := production.NewGraph(c, p.Transformations())
	raw, _ := c.PartTypeByName("raw")
	intermediate, _ := c.PartTypeByName("intermediate")
	finished, _ := c.PartTypeByName("finished")

	// Act
	path := g.Path(raw.ID, finished.ID)

	// Assert
	assert.Equal(t, []catalog.PartTypeID{raw.ID, intermediate.ID, finished.ID}, path)
	assert.Equal(t, []catalog.PartTypeID{finished.ID}, g.Path(finished.ID, finished.ID))
	assert.Nil(t, g.Path(finished.ID, raw.ID))
}

package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

type catalogContext struct {
	def     catalog.Definition
	catalog *catalog.Catalog
	passes  int
	err     error
}

func (cc *catalogContext) reset() {
	cc.def = catalog.Definition{}
	cc.catalog = nil
	cc.passes = 0
	cc.err = nil
}

// InitializeCatalogScenario registers the catalog and value propagation steps
func InitializeCatalogScenario(ctx *godog.ScenarioContext) {
	cc := &catalogContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	ctx.Step(`^a catalog named "([^"]*)" with part types:$`, cc.aCatalogWithPartTypes)
	ctx.Step(`^transformation "([^"]*)" turns "([^"]*)" into "([^"]*)" in (\d+) ticks?$`, cc.transformationTurnsInto)
	ctx.Step(`^the catalog is built$`, cc.theCatalogIsBuilt)
	ctx.Step(`^the catalog is priced with at most (\d+) propagation passes$`, cc.theCatalogIsPricedWithAtMost)
	ctx.Step(`^values are propagated$`, cc.valuesArePropagated)
	ctx.Step(`^part type "([^"]*)" should be valued at ([0-9.]+)$`, cc.partTypeShouldBeValuedAt)
	ctx.Step(`^propagation should take (\d+) passes$`, cc.propagationShouldTakePasses)
	ctx.Step(`^propagating again should leave every value unchanged$`, cc.propagatingAgainShouldLeaveValuesUnchanged)
	ctx.Step(`^pricing should fail because propagation diverged after (\d+) passes$`, cc.pricingShouldFailBecauseDiverged)
	ctx.Step(`^building should fail with an unknown part type "([^"]*)"$`, cc.buildingShouldFailWithUnknownPartType)
}

func (cc *catalogContext) aCatalogWithPartTypes(name string, table *godog.Table) error {
	cc.def = catalog.Definition{Name: name}
	for _, row := range table.Rows[1:] {
		cost, err := parseFloatCell(table, row, "cost")
		if err != nil {
			return err
		}
		value, err := parseFloatCell(table, row, "value")
		if err != nil {
			return err
		}
		cc.def.PartTypes = append(cc.def.PartTypes, catalog.PartTypeDef{
			Name:     getCellValueFromTable(table, row, "name"),
			Cost:     cost,
			Value:    value,
			Finished: getCellValueFromTable(table, row, "finished") == "yes",
		})
	}
	return nil
}

func (cc *catalogContext) transformationTurnsInto(name, inputs, output string, duration int) error {
	cc.def.Transformations = append(cc.def.Transformations, catalog.TransformationDef{
		Name:     name,
		Inputs:   splitList(inputs),
		Output:   output,
		Duration: duration,
	})
	return nil
}

func (cc *catalogContext) theCatalogIsBuilt() error {
	cc.catalog, cc.err = catalog.Build(cc.def)
	return nil
}

func (cc *catalogContext) theCatalogIsPricedWithAtMost(maxPasses int) error {
	c, err := catalog.Build(cc.def)
	if err != nil {
		return err
	}
	cc.catalog = c
	cc.passes, cc.err = catalog.PropagateValuesWithLimit(c, maxPasses)
	return nil
}

func (cc *catalogContext) valuesArePropagated() error {
	if cc.err != nil {
		return fmt.Errorf("catalog failed to build: %w", cc.err)
	}
	cc.passes, cc.err = catalog.PropagateValues(cc.catalog)
	return cc.err
}

func (cc *catalogContext) partTypeShouldBeValuedAt(name string, expected float64) error {
	pt, ok := cc.catalog.PartTypeByName(name)
	if !ok {
		return fmt.Errorf("part type %s not found", name)
	}
	return assertInDelta(expected, pt.Value, "value of %s", name)
}

func (cc *catalogContext) propagationShouldTakePasses(expected int) error {
	return assertExpectedAndActual(assert.Equal, expected, cc.passes, "propagation passes")
}

func (cc *catalogContext) propagatingAgainShouldLeaveValuesUnchanged() error {
	before := make(map[string]float64)
	for _, pt := range cc.catalog.PartTypes() {
		before[pt.Name] = pt.Value
	}

	passes, err := catalog.PropagateValues(cc.catalog)
	if err != nil {
		return err
	}
	if passes != 1 {
		return fmt.Errorf("expected a single quiet pass, got %d", passes)
	}
	for _, pt := range cc.catalog.PartTypes() {
		if err := assertInDelta(before[pt.Name], pt.Value, "value of %s", pt.Name); err != nil {
			return err
		}
	}
	return nil
}

func (cc *catalogContext) pricingShouldFailBecauseDiverged(passes int) error {
	var diverged *catalog.ErrPropagationDiverged
	if !errors.As(cc.err, &diverged) {
		return fmt.Errorf("expected propagation to diverge, got %v", cc.err)
	}
	return assertExpectedAndActual(assert.Equal, passes, diverged.Passes)
}

func (cc *catalogContext) buildingShouldFailWithUnknownPartType(name string) error {
	var unknown *catalog.ErrUnknownPartType
	if !errors.As(cc.err, &unknown) {
		return fmt.Errorf("expected unknown part type error, got %v", cc.err)
	}
	return assertExpectedAndActual(assert.Equal, name, unknown.Name)
}

package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/simulation"
)

// DescribePlantQuery - Query to price a plant definition and describe its action space
type DescribePlantQuery struct {
	Definition catalog.Definition
	Config     simulation.Config
	MaxPasses  int
}

// PartTypeSummary is one part type after value propagation
type PartTypeSummary struct {
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	Value      float64 `json:"value"`
	Margin     float64 `json:"margin"`
	Finished   bool    `json:"finished"`
	Elementary bool    `json:"elementary"`
}

// TransformationSummary is one transformation with resolved names
type TransformationSummary struct {
	Name     string   `json:"name"`
	Inputs   []string `json:"inputs"`
	Output   string   `json:"output"`
	Duration int      `json:"duration"`
}

// MachineSummary is one machine instance
type MachineSummary struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Slots           int      `json:"slots"`
	Transformations []string `json:"transformations"`
}

// DescribePlantResponse - Response describing the priced catalog and environment dimensions
type DescribePlantResponse struct {
	Plant             string                  `json:"plant"`
	PartTypes         []PartTypeSummary       `json:"part_types"`
	Transformations   []TransformationSummary `json:"transformations"`
	Machines          []MachineSummary        `json:"machines"`
	ActionSpace       []string                `json:"action_space"`
	ActionCount       int                     `json:"action_count"`
	ObservationSize   int                     `json:"observation_size"`
	PropagationPasses int                     `json:"propagation_passes"`
}

// DescribePlantHandler - Handles describe plant queries
type DescribePlantHandler struct{}

// NewDescribePlantHandler creates a new describe plant query handler
func NewDescribePlantHandler() *DescribePlantHandler {
	return &DescribePlantHandler{}
}

// Handle executes the describe plant query
func (h *DescribePlantHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*DescribePlantQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	c, err := catalog.Build(query.Definition)
	if err != nil {
		return nil, err
	}
	passes, err := catalog.PropagateValuesWithLimit(c, query.MaxPasses)
	if err != nil {
		return nil, err
	}
	p, err := plant.New(c, machineSpecs(query.Definition))
	if err != nil {
		return nil, err
	}
	env, err := simulation.NewEnvironment(p, query.Config)
	if err != nil {
		return nil, err
	}

	resp := &DescribePlantResponse{
		Plant:             query.Definition.Name,
		ActionCount:       env.ActionCount(),
		ObservationSize:   env.ObservationSize(),
		PropagationPasses: passes,
	}

	for _, pt := range c.PartTypes() {
		resp.PartTypes = append(resp.PartTypes, PartTypeSummary{
			Name:       pt.Name,
			Cost:       pt.Cost,
			Value:      pt.Value,
			Margin:     pt.Margin(),
			Finished:   pt.Finished,
			Elementary: p.IsElementary(pt.ID),
		})
	}
	for _, t := range c.Transformations() {
		resp.Transformations = append(resp.Transformations, summarizeTransformation(c, t))
	}
	for _, m := range p.Machines() {
		summary := MachineSummary{ID: m.ID(), Type: m.Type().Name, Slots: m.Slots()}
		for _, t := range m.Type().Transformations {
			summary.Transformations = append(summary.Transformations, t.Name)
		}
		resp.Machines = append(resp.Machines, summary)
	}

	resp.ActionSpace = append(resp.ActionSpace, "0: no-op")
	for k := 1; k < env.ActionCount(); k++ {
		a, _ := env.DecodeAction(k)
		machine := p.Machines()[a.Machine]
		t := env.Transformations()[a.Transformation]
		resp.ActionSpace = append(resp.ActionSpace, fmt.Sprintf("%d: %s <- %s", k, machine.ID(), t.Name))
	}

	return resp, nil
}

func summarizeTransformation(c *catalog.Catalog, t *catalog.Transformation) TransformationSummary {
	inputs := make([]string, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		inputs = append(inputs, c.PartType(in).Name)
	}
	return TransformationSummary{
		Name:     t.Name,
		Inputs:   inputs,
		Output:   c.PartType(t.Output).Name,
		Duration: t.Duration,
	}
}

func machineSpecs(def catalog.Definition) []plant.MachineSpec {
	specs := make([]plant.MachineSpec, 0, len(def.Machines))
	for _, m := range def.Machines {
		specs = append(specs, plant.MachineSpec{ID: m.ID, Type: m.Type})
	}
	return specs
}

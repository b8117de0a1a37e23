package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
	"github.com/andrescamacho/jobshop-sim/internal/domain/plant"
	"github.com/andrescamacho/jobshop-sim/internal/domain/production"
)

// GetDistanceQuery - Query for the production distance between two part types
type GetDistanceQuery struct {
	Definition catalog.Definition
	From       string
	To         string
}

// GetDistanceResponse - Response with the hop count and the shaping weight exp(-d)
type GetDistanceResponse struct {
	From      string
	To        string
	Distance  int
	Reachable bool
	Weight    float64
	Path      []string
}

// GetDistanceHandler - Handles production distance queries
type GetDistanceHandler struct{}

// NewGetDistanceHandler creates a new distance query handler
func NewGetDistanceHandler() *GetDistanceHandler {
	return &GetDistanceHandler{}
}

// Handle executes the distance query
func (h *GetDistanceHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetDistanceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	graph, err := buildGraph(query.Definition)
	if err != nil {
		return nil, err
	}
	c := graph.Catalog()
	from, ok := c.PartTypeByName(query.From)
	if !ok {
		return nil, &catalog.ErrUnknownPartType{Name: query.From}
	}
	to, ok := c.PartTypeByName(query.To)
	if !ok {
		return nil, &catalog.ErrUnknownPartType{Name: query.To}
	}

	distance, reachable := graph.Distance(from.ID, to.ID)
	resp := &GetDistanceResponse{
		From:      from.Name,
		To:        to.Name,
		Distance:  distance,
		Reachable: reachable,
		Weight:    graph.Weight(from.ID, to.ID),
	}
	for _, id := range graph.Path(from.ID, to.ID) {
		resp.Path = append(resp.Path, c.PartType(id).Name)
	}
	return resp, nil
}

// ListSubgoalsQuery - Query for the part types a goal selector may choose
type ListSubgoalsQuery struct {
	Definition catalog.Definition
}

// SubgoalSummary is one candidate goal with the part types feeding it
type SubgoalSummary struct {
	Name     string
	Finished bool
	Upstream []string
}

// ListSubgoalsResponse - Response listing non-elementary part types
type ListSubgoalsResponse struct {
	Subgoals []SubgoalSummary
}

// ListSubgoalsHandler - Handles subgoal listing queries
type ListSubgoalsHandler struct{}

// NewListSubgoalsHandler creates a new subgoal listing handler
func NewListSubgoalsHandler() *ListSubgoalsHandler {
	return &ListSubgoalsHandler{}
}

// Handle executes the subgoal listing query
func (h *ListSubgoalsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListSubgoalsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	c, err := catalog.Build(query.Definition)
	if err != nil {
		return nil, err
	}
	p, err := plant.New(c, machineSpecs(query.Definition))
	if err != nil {
		return nil, err
	}
	graph := production.NewGraph(c, p.Transformations())

	resp := &ListSubgoalsResponse{}
	for _, pt := range c.PartTypes() {
		if p.IsElementary(pt.ID) {
			continue
		}
		summary := SubgoalSummary{Name: pt.Name, Finished: pt.Finished}
		for _, id := range graph.Upstream(pt.ID) {
			summary.Upstream = append(summary.Upstream, c.PartType(id).Name)
		}
		resp.Subgoals = append(resp.Subgoals, summary)
	}
	return resp, nil
}

func buildGraph(def catalog.Definition) (*production.Graph, error) {
	c, err := catalog.Build(def)
	if err != nil {
		return nil, err
	}
	p, err := plant.New(c, machineSpecs(def))
	if err != nil {
		return nil, err
	}
	return production.NewGraph(c, p.Transformations()), nil
}

package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/domain/episode"
)

// ListEpisodesQuery - Query to list recorded episodes, newest first
type ListEpisodesQuery struct {
	Plant  string
	Policy string
	Limit  int
}

// ListEpisodesResponse - Response containing episodes without tick records
type ListEpisodesResponse struct {
	Episodes []*episode.Episode
}

// ListEpisodesHandler - Handles list episode queries
type ListEpisodesHandler struct {
	repo episode.Repository
}

// NewListEpisodesHandler creates a new list episodes query handler
func NewListEpisodesHandler(repo episode.Repository) *ListEpisodesHandler {
	return &ListEpisodesHandler{repo: repo}
}

// Handle executes the list episodes query
func (h *ListEpisodesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListEpisodesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	episodes, err := h.repo.List(ctx, episode.ListFilter{
		Plant:  query.Plant,
		Policy: query.Policy,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ListEpisodesResponse{Episodes: episodes}, nil
}

// GetEpisodeQuery - Query to load one episode with its tick records
type GetEpisodeQuery struct {
	ID string
}

// GetEpisodeResponse - Response containing one episode
type GetEpisodeResponse struct {
	Episode *episode.Episode
}

// GetEpisodeHandler - Handles get episode queries
type GetEpisodeHandler struct {
	repo episode.Repository
}

// NewGetEpisodeHandler creates a new get episode query handler
func NewGetEpisodeHandler(repo episode.Repository) *GetEpisodeHandler {
	return &GetEpisodeHandler{repo: repo}
}

// Handle executes the get episode query
func (h *GetEpisodeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetEpisodeQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	e, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	return &GetEpisodeResponse{Episode: e}, nil
}

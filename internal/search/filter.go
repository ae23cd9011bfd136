package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"dispatch-portal/internal/models"
)

type FilterParams struct {
	Query         string
	Status        string
	Sectors       []string
	MinDifficulty *int
	MaxDifficulty *int
	MinRooms      *int
	SortBy        string
	Limit         int64
}

// FilterSearch performs advanced search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]models.Unit, error) {
	var filters []string

	if params.Status != "" {
		filters = append(filters, fmt.Sprintf("status = '%s'", params.Status))
	}

	// Sector filter
	if len(params.Sectors) > 0 {
		sectorFilters := make([]string, len(params.Sectors))
		for i, sector := range params.Sectors {
			sectorFilters[i] = fmt.Sprintf("sector = '%s'", sector)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(sectorFilters, " OR ")))
	}

	// Difficulty range filter
	if params.MinDifficulty != nil {
		filters = append(filters, fmt.Sprintf("difficulty >= %d", *params.MinDifficulty))
	}
	if params.MaxDifficulty != nil {
		filters = append(filters, fmt.Sprintf("difficulty <= %d", *params.MaxDifficulty))
	}

	if params.MinRooms != nil {
		filters = append(filters, fmt.Sprintf("rooms >= %d", *params.MinRooms))
	}

	// Combine filters
	var filterStr string
	if len(filters) > 0 {
		filterStr = strings.Join(filters, " AND ")
	}

	// Determine sort order
	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	// Default limit
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}

	if filterStr != "" {
		searchReq.Filter = filterStr
	}

	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	// Convert hits to units
	var units []models.Unit
	for _, hit := range searchRes.Hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}

		var unit models.Unit
		if err := json.Unmarshal(hitJSON, &unit); err != nil {
			continue
		}

		units = append(units, unit)
	}

	return units, nil
}

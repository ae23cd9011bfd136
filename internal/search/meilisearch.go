package search

import (
	"dispatch-portal/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "units",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	// Configure searchable attributes
	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"name",
		"address",
		"sector",
	})
	if err != nil {
		return err
	}

	// Configure filterable attributes
	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"status",
		"sector",
		"difficulty",
		"rooms",
		"agent_id",
	})
	if err != nil {
		return err
	}

	// Configure sortable attributes
	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"area_m2",
		"distance_km",
		"difficulty",
		"created_at",
	})
	if err != nil {
		return err
	}

	return nil
}

// IndexUnit indexes a single unit
func (s *SearchClient) IndexUnit(unit *models.Unit) error {
	_, err := s.client.Index(s.index).AddDocuments([]models.Unit{*unit})
	return err
}

// IndexUnits indexes multiple units
func (s *SearchClient) IndexUnits(units []models.Unit) error {
	if len(units) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(units)
	return err
}

// DeleteUnit removes a unit from the index
func (s *SearchClient) DeleteUnit(id string) error {
	_, err := s.client.Index(s.index).DeleteDocument(id)
	return err
}

// SearchRequest represents advanced search parameters
type SearchRequest struct {
	Query                string
	Limit                int64
	Offset               int64
	Filter               []string
	Sort                 []string
	FacetsFilter         []string
	AttributesToRetrieve []string
}

// SearchResult represents search results with facets
type SearchResult struct {
	Hits           []models.Unit
	TotalHits      int64
	Facets         map[string]interface{}
	ProcessingTime int64
}

// Search searches for units with basic options
func (s *SearchClient) Search(query string, limit int64) ([]models.Unit, error) {
	result, err := s.AdvancedSearch(SearchRequest{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return result.Hits, nil
}

// AdvancedSearch performs advanced search with facets and filters
func (s *SearchClient) AdvancedSearch(req SearchRequest) (*SearchResult, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	if len(req.Filter) > 0 {
		filterStr := ""
		for i, f := range req.Filter {
			if i > 0 {
				filterStr += " AND "
			}
			filterStr += f
		}
		searchReq.Filter = filterStr
	}

	if len(req.Sort) > 0 {
		searchReq.Sort = req.Sort
	}

	if len(req.FacetsFilter) > 0 {
		searchReq.Facets = req.FacetsFilter
	}

	if len(req.AttributesToRetrieve) > 0 {
		searchReq.AttributesToRetrieve = req.AttributesToRetrieve
	}

	searchRes, err := s.client.Index(s.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	units := make([]models.Unit, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		units = append(units, parseUnitFromHit(hit))
	}

	var facets map[string]interface{}
	if searchRes.FacetDistribution != nil {
		facets, _ = searchRes.FacetDistribution.(map[string]interface{})
	}

	result := &SearchResult{
		Hits:           units,
		TotalHits:      searchRes.EstimatedTotalHits,
		Facets:         facets,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}

	return result, nil
}

// parseUnitFromHit converts a search hit to a Unit
func parseUnitFromHit(hit interface{}) models.Unit {
	hitMap := hit.(map[string]interface{})
	unit := models.Unit{
		ID:      getString(hitMap, "id"),
		Name:    getString(hitMap, "name"),
		Address: getString(hitMap, "address"),
		Sector:  getString(hitMap, "sector"),
		Status:  models.UnitStatus(getString(hitMap, "status")),
	}

	// Parse numeric fields
	if rooms, ok := hitMap["rooms"].(float64); ok {
		unit.Rooms = int(rooms)
	}
	if area, ok := hitMap["area_m2"].(float64); ok {
		unit.AreaM2 = area
	}
	if distance, ok := hitMap["distance_km"].(float64); ok {
		unit.DistanceKm = distance
	}
	if difficulty, ok := hitMap["difficulty"].(float64); ok {
		unit.Difficulty = int(difficulty)
	}
	if lat, ok := hitMap["latitude"].(float64); ok {
		unit.Latitude = &lat
	}
	if lng, ok := hitMap["longitude"].(float64); ok {
		unit.Longitude = &lng
	}
	if agentID, ok := hitMap["agent_id"].(string); ok && agentID != "" {
		unit.AgentID = &agentID
	}

	return unit
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

// GetFacets retrieves facet distribution for specified fields
func (s *SearchClient) GetFacets(facets []string) (map[string]interface{}, error) {
	searchRes, err := s.client.Index(s.index).Search("", &meilisearch.SearchRequest{
		Limit:  0,
		Facets: facets,
	})
	if err != nil {
		return nil, err
	}

	if searchRes.FacetDistribution != nil {
		if facetMap, ok := searchRes.FacetDistribution.(map[string]interface{}); ok {
			return facetMap, nil
		}
	}
	return map[string]interface{}{}, nil
}

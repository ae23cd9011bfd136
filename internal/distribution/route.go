package distribution

import "dispatch-portal/internal/models"

// RouteStop is one visit in an agent's route with the distance of the leg
// that reaches it
type RouteStop struct {
	Unit  models.Unit `json:"unit"`
	LegKm float64     `json:"leg_km"`
}

// Route is an ordered visiting sequence over an agent's assigned units
type Route struct {
	AgentID string      `json:"agent_id"`
	Stops   []RouteStop `json:"stops"`
	TotalKm float64     `json:"total_km"`
}

// BuildRoute orders the given units into a visiting sequence using a
// nearest-neighbor heuristic over great-circle distance. Units without a
// coordinate pair are left out of the route entirely. When a base point is
// supplied the first leg is measured from it; otherwise the coordinate-bearing
// unit with the smallest ID starts the route with a zero-length first leg, so
// the route does not depend on the order units were fetched in. Ties between
// equally near units resolve to the earlier one in the remaining input order.
func BuildRoute(agentID string, units []models.Unit, base *Coordinate) Route {
	route := Route{AgentID: agentID}

	var remaining []models.Unit
	for _, u := range units {
		if u.HasCoordinates() {
			remaining = append(remaining, u)
		}
	}
	if len(remaining) == 0 {
		return route
	}

	var current Coordinate
	hasCurrent := false
	if base != nil {
		current = *base
		hasCurrent = true
	}

	for len(remaining) > 0 {
		nearest := 0
		legKm := 0.0

		if hasCurrent {
			bestKm := Haversine(current, unitCoordinate(remaining[0]))
			for i := 1; i < len(remaining); i++ {
				if d := Haversine(current, unitCoordinate(remaining[i])); d < bestKm {
					bestKm = d
					nearest = i
				}
			}
			legKm = bestKm
		} else {
			for i := 1; i < len(remaining); i++ {
				if remaining[i].ID < remaining[nearest].ID {
					nearest = i
				}
			}
		}

		next := remaining[nearest]
		route.Stops = append(route.Stops, RouteStop{Unit: next, LegKm: legKm})
		route.TotalKm += legKm

		current = unitCoordinate(next)
		hasCurrent = true
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}

	return route
}

func unitCoordinate(u models.Unit) Coordinate {
	return Coordinate{Lat: *u.Latitude, Lng: *u.Longitude}
}

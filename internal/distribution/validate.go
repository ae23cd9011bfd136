package distribution

import (
	"fmt"

	"dispatch-portal/internal/models"
)

// ValidateUnit checks the attribute invariants a unit must satisfy before it
// can be scored or routed. Malformed units are rejected at the engine
// boundary rather than silently scored.
func ValidateUnit(u models.Unit) error {
	if u.Rooms < 0 {
		return fmt.Errorf("unit %s: negative room count %d", u.ID, u.Rooms)
	}
	if u.AreaM2 < 0 {
		return fmt.Errorf("unit %s: negative area %.2f", u.ID, u.AreaM2)
	}
	if u.DistanceKm < 0 {
		return fmt.Errorf("unit %s: negative distance %.2f", u.ID, u.DistanceKm)
	}
	if u.Difficulty < 1 || u.Difficulty > 5 {
		return fmt.Errorf("unit %s: difficulty %d outside 1-5", u.ID, u.Difficulty)
	}
	if (u.Latitude == nil) != (u.Longitude == nil) {
		return fmt.Errorf("unit %s: exactly one of latitude/longitude present", u.ID)
	}
	return nil
}

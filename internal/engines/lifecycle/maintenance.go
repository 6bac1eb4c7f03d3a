package lifecycle

// IntRandom is the slice of a random source needed for scheduling
type IntRandom interface {
	// Intn returns a value in [0, n)
	Intn(n int) int
}

const (
	minMaintenanceInterval = 3
	maxMaintenanceInterval = 5
)

// ScheduleMaintenance returns the maintenance years for a plant: each one 3 to 5
// years after the previous (starting from commissioning), strictly before retirement.
func ScheduleMaintenance(commissioningYear, retirementYear int, rng IntRandom) []int {
	years := []int{}
	current := commissioningYear
	for current < retirementYear {
		current += minMaintenanceInterval + rng.Intn(maxMaintenanceInterval-minMaintenanceInterval+1)
		if current < retirementYear {
			years = append(years, current)
		}
	}
	return years
}

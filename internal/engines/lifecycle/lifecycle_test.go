package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitymarket/internal/models"
)

type fixedInts struct {
	values []int
	pos    int
}

func (f *fixedInts) Intn(n int) int {
	v := f.values[f.pos%len(f.values)]
	f.pos++
	return v % n
}

func newPlant(status models.PlantStatus, start, commissioning, retirement int, maintenance ...int) *models.Plant {
	return &models.Plant{
		ID:                    "plant-1",
		Name:                  "Test Plant",
		UtilityID:             "utility-1",
		PlantType:             models.PlantTypeCoal,
		CapacityMW:            100,
		ConstructionStartYear: start,
		CommissioningYear:     commissioning,
		RetirementYear:        retirement,
		Status:                status,
		MaintenanceYears:      maintenance,
	}
}

func TestAdvance(t *testing.T) {
	t.Run("under construction before commissioning stays put", func(t *testing.T) {
		plant := newPlant(models.PlantStatusUnderConstruction, 2024, 2026, 2050)

		transitions := Advance(plant, 2025)

		assert.Empty(t, transitions)
		assert.Equal(t, models.PlantStatusUnderConstruction, plant.Status)
		assert.False(t, IsAvailable(plant, 2025))
	})

	t.Run("commissioning year moves to operating", func(t *testing.T) {
		plant := newPlant(models.PlantStatusUnderConstruction, 2024, 2026, 2050)

		transitions := Advance(plant, 2026)

		require.Len(t, transitions, 1)
		assert.Equal(t, ChangeCommissioned, transitions[0].Change)
		assert.Equal(t, models.PlantStatusOperating, plant.Status)
		assert.True(t, IsAvailable(plant, 2026))
	})

	t.Run("planned plant starts construction", func(t *testing.T) {
		plant := newPlant(models.PlantStatusPlanned, 2026, 2029, 2060)

		assert.Empty(t, Advance(plant, 2025))
		transitions := Advance(plant, 2026)

		require.Len(t, transitions, 1)
		assert.Equal(t, models.PlantStatusUnderConstruction, transitions[0].To)
		assert.Equal(t, models.PlantStatusPlanned, transitions[0].From)
	})

	t.Run("maintenance lasts exactly one year", func(t *testing.T) {
		plant := newPlant(models.PlantStatusOperating, 2020, 2023, 2050, 2027)

		Advance(plant, 2027)
		assert.Equal(t, models.PlantStatusMaintenance, plant.Status)
		assert.False(t, IsAvailable(plant, 2027))

		transitions := Advance(plant, 2028)
		require.Len(t, transitions, 1)
		assert.Equal(t, ChangeMaintenanceComplete, transitions[0].Change)
		assert.Equal(t, models.PlantStatusOperating, plant.Status)
	})

	t.Run("retirement takes precedence", func(t *testing.T) {
		plant := newPlant(models.PlantStatusUnderConstruction, 2020, 2030, 2030)

		transitions := Advance(plant, 2030)

		require.Len(t, transitions, 2)
		assert.Equal(t, ChangeRetired, transitions[1].Change)
		assert.Equal(t, models.PlantStatusRetired, plant.Status)
	})

	t.Run("retired is terminal", func(t *testing.T) {
		plant := newPlant(models.PlantStatusOperating, 2000, 2003, 2030)
		Advance(plant, 2030)
		require.Equal(t, models.PlantStatusRetired, plant.Status)

		for year := 2031; year < 2040; year++ {
			assert.Empty(t, Advance(plant, year))
			assert.Equal(t, models.PlantStatusRetired, plant.Status)
		}
		// Going back in time does not resurrect it either.
		assert.Empty(t, Advance(plant, 2025))
		assert.Equal(t, models.PlantStatusRetired, plant.Status)
	})
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name  string
		plant *models.Plant
		year  int
		want  bool
	}{
		{"operating in window", newPlant(models.PlantStatusOperating, 2020, 2023, 2050), 2025, true},
		{"operating but maintenance year", newPlant(models.PlantStatusOperating, 2020, 2023, 2050, 2025), 2025, false},
		{"operating before commissioning", newPlant(models.PlantStatusOperating, 2020, 2026, 2050), 2025, false},
		{"operating at retirement year", newPlant(models.PlantStatusOperating, 2020, 2023, 2025), 2025, false},
		{"planned", newPlant(models.PlantStatusPlanned, 2026, 2028, 2050), 2025, false},
		{"maintenance", newPlant(models.PlantStatusMaintenance, 2020, 2023, 2050), 2025, false},
		{"retired", newPlant(models.PlantStatusRetired, 2000, 2003, 2024), 2025, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAvailable(tt.plant, tt.year))
		})
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, models.PlantStatusPlanned, InitialStatus(newPlant("", 2027, 2030, 2060), 2025))
	assert.Equal(t, models.PlantStatusUnderConstruction, InitialStatus(newPlant("", 2024, 2026, 2060), 2025))
	assert.Equal(t, models.PlantStatusOperating, InitialStatus(newPlant("", 2020, 2025, 2060), 2025))
	assert.Equal(t, models.PlantStatusRetired, InitialStatus(newPlant("", 2000, 2003, 2025), 2025))
}

func TestScheduleMaintenance(t *testing.T) {
	t.Run("intervals follow the random source", func(t *testing.T) {
		// Intn(3) yields 0, 2, 1 -> intervals 3, 5, 4
		rng := &fixedInts{values: []int{0, 2, 1}}

		years := ScheduleMaintenance(2025, 2040, rng)

		assert.Equal(t, []int{2028, 2033, 2037}, years)
	})

	t.Run("every year strictly before retirement", func(t *testing.T) {
		rng := &fixedInts{values: []int{0}}

		years := ScheduleMaintenance(2025, 2031, rng)

		assert.Equal(t, []int{2028}, years)
	})

	t.Run("short life has no maintenance", func(t *testing.T) {
		years := ScheduleMaintenance(2025, 2027, &fixedInts{values: []int{0}})
		assert.Empty(t, years)
	})
}

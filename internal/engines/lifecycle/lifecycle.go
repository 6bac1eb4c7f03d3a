package lifecycle

import (
	"fmt"
	"log"

	"capacitymarket/internal/models"
)

// Change names the kind of lifecycle transition a plant went through
type Change string

const (
	ChangeConstructionStarted Change = "construction_started"
	ChangeCommissioned        Change = "commissioned"
	ChangeMaintenance         Change = "maintenance"
	ChangeMaintenanceComplete Change = "maintenance_complete"
	ChangeRetired             Change = "retired"
)

// Transition records one status change applied to a plant for a simulated year
type Transition struct {
	PlantID   string             `json:"plant_id"`
	PlantName string             `json:"plant_name"`
	UtilityID string             `json:"utility_id"`
	From      models.PlantStatus `json:"from"`
	To        models.PlantStatus `json:"to"`
	Change    Change             `json:"change"`
	Message   string             `json:"message"`
}

// Advance applies the yearly lifecycle rules to plant in place and returns the
// transitions it went through. Rules run in order; retirement is checked last
// and wins over anything earlier in the same year.
func Advance(plant *models.Plant, year int) []Transition {
	if plant.Status == models.PlantStatusRetired {
		return nil
	}

	var transitions []Transition
	move := func(to models.PlantStatus, change Change, msg string) {
		transitions = append(transitions, Transition{
			PlantID:   plant.ID,
			PlantName: plant.Name,
			UtilityID: plant.UtilityID,
			From:      plant.Status,
			To:        to,
			Change:    change,
			Message:   msg,
		})
		plant.Status = to
	}

	if plant.Status == models.PlantStatusPlanned && year >= plant.ConstructionStartYear {
		move(models.PlantStatusUnderConstruction, ChangeConstructionStarted,
			fmt.Sprintf("%s started construction", plant.Name))
	}

	if plant.Status == models.PlantStatusUnderConstruction && year >= plant.CommissioningYear {
		move(models.PlantStatusOperating, ChangeCommissioned,
			fmt.Sprintf("%s commissioned and now operating", plant.Name))
	}

	switch {
	case plant.Status == models.PlantStatusOperating && plant.IsMaintenanceYear(year):
		move(models.PlantStatusMaintenance, ChangeMaintenance,
			fmt.Sprintf("%s scheduled for maintenance", plant.Name))
	case plant.Status == models.PlantStatusMaintenance && !plant.IsMaintenanceYear(year):
		move(models.PlantStatusOperating, ChangeMaintenanceComplete,
			fmt.Sprintf("%s completed maintenance", plant.Name))
	}

	if year >= plant.RetirementYear {
		move(models.PlantStatusRetired, ChangeRetired,
			fmt.Sprintf("%s retired after reaching end of life", plant.Name))
	}

	for _, t := range transitions {
		log.Printf("Plant %s (%s) %s -> %s in %d", t.PlantID, t.PlantName, t.From, t.To, year)
	}
	return transitions
}

// IsAvailable reports whether the plant may bid and generate in year
func IsAvailable(plant *models.Plant, year int) bool {
	return plant.Status == models.PlantStatusOperating &&
		plant.CommissioningYear <= year &&
		year < plant.RetirementYear &&
		!plant.IsMaintenanceYear(year)
}

// InitialStatus derives the status of a newly created plant relative to the current year
func InitialStatus(plant *models.Plant, currentYear int) models.PlantStatus {
	switch {
	case currentYear >= plant.RetirementYear:
		return models.PlantStatusRetired
	case plant.ConstructionStartYear > currentYear:
		return models.PlantStatusPlanned
	case plant.CommissioningYear > currentYear:
		return models.PlantStatusUnderConstruction
	default:
		return models.PlantStatusOperating
	}
}

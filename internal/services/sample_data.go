package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"capacitymarket/internal/engines/finance"
	"capacitymarket/internal/engines/lifecycle"
	"capacitymarket/internal/models"
)

const SampleSessionID = "sample_game_1"

type samplePlant struct {
	utilityID     string
	name          string
	plantType     models.PlantType
	capacityMW    float64
	startYear     int
	commissioning int
	retirement    int
}

var sampleUtilityBudgets = []float64{2e9, 1.5e9, 1.8e9}

var samplePlants = []samplePlant{
	// traditional coal and gas
	{"utility_1", "Riverside Coal Plant", models.PlantTypeCoal, 600, 2020, 2023, 2050},
	{"utility_1", "Westside Gas CC", models.PlantTypeNaturalGasCC, 400, 2021, 2024, 2049},
	{"utility_1", "Peak Gas CT", models.PlantTypeNaturalGasCT, 150, 2022, 2025, 2045},
	// nuclear with renewables
	{"utility_2", "Coastal Nuclear", models.PlantTypeNuclear, 1000, 2018, 2025, 2075},
	{"utility_2", "Solar Farm Alpha", models.PlantTypeSolar, 250, 2023, 2025, 2045},
	{"utility_2", "Wind Farm Beta", models.PlantTypeWindOnshore, 200, 2023, 2025, 2045},
	// renewables with storage
	{"utility_3", "Mega Solar Project", models.PlantTypeSolar, 400, 2024, 2026, 2046},
	{"utility_3", "Offshore Wind", models.PlantTypeWindOffshore, 300, 2024, 2027, 2047},
	{"utility_3", "Grid Battery Storage", models.PlantTypeBattery, 100, 2025, 2026, 2036},
}

// SampleData describes what SeedSampleData created
type SampleData struct {
	SessionID       string   `json:"game_session_id"`
	OperatorID      string   `json:"operator_id"`
	UtilityIDs      []string `json:"utility_ids"`
	PlantCount      int      `json:"plant_count"`
	TotalCapacityMW float64  `json:"total_capacity_mw"`
}

// SeedSampleData creates a demo operator, three utilities, a session and a mixed
// plant fleet. Existing plants are financed 70/30 without a budget check, so a
// utility can start with a negative budget. Seeding twice is a no-op.
func (s *GameService) SeedSampleData() (*SampleData, error) {
	if _, err := s.repos.Sessions.GetSession(SampleSessionID); err == nil {
		log.Printf("Sample session %s already exists, skipping seed", SampleSessionID)
		return nil, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := s.repos.Utilities.CreateUtility(&models.Utility{
		ID:       "operator_1",
		Username: "operator_1",
		UserType: models.UserTypeOperator,
		Budget:   s.catalog.Defaults.OperatorBudget,
		Equity:   s.catalog.Defaults.OperatorBudget,
	}); err != nil && !errors.Is(err, models.ErrAlreadyExists) {
		return nil, err
	}

	data := &SampleData{SessionID: SampleSessionID, OperatorID: "operator_1"}
	utilities := make(map[string]*models.Utility)
	for i, budget := range sampleUtilityBudgets {
		id := fmt.Sprintf("utility_%d", i+1)
		u := &models.Utility{
			ID:       id,
			Username: id,
			UserType: models.UserTypeUtility,
			Budget:   budget,
			Equity:   budget,
		}
		if err := s.repos.Utilities.CreateUtility(u); errors.Is(err, models.ErrAlreadyExists) {
			if u, err = s.repos.Utilities.GetUtility(id); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		utilities[id] = u
		data.UtilityIDs = append(data.UtilityIDs, id)
	}

	session, err := s.CreateSession(CreateSessionRequest{
		ID:         SampleSessionID,
		Name:       "Advanced Electricity Market Simulation 2025-2035",
		OperatorID: "operator_1",
		StartYear:  2025,
		EndYear:    2035,
	})
	if err != nil {
		return nil, err
	}

	for _, sp := range samplePlants {
		template, ok := s.catalog.Template(sp.plantType)
		if !ok {
			return nil, fmt.Errorf("%w: no template for %s", models.ErrInvalidPlant, sp.plantType)
		}
		plant := &models.Plant{
			ID:                     "plant_" + strings.ToLower(strings.ReplaceAll(sp.name, " ", "_")),
			GameSessionID:          session.ID,
			UtilityID:              sp.utilityID,
			Name:                   sp.name,
			PlantType:              sp.plantType,
			CapacityMW:             sp.capacityMW,
			ConstructionStartYear:  sp.startYear,
			CommissioningYear:      sp.commissioning,
			RetirementYear:         sp.retirement,
			CapitalCostTotal:       finance.CapitalCost(sp.capacityMW, template.OvernightCostPerKW),
			FixedOMAnnual:          finance.FixedOMAnnual(sp.capacityMW, template.FixedOMPerKWYear),
			VariableOMPerMWh:       template.VariableOMPerMWh,
			CapacityFactor:         template.CapacityFactorBase,
			HeatRate:               template.HeatRate,
			FuelType:               template.FuelType,
			MinGenerationMW:        sp.capacityMW * template.MinGenerationPct,
			CO2EmissionsTonsPerMWh: template.CO2EmissionsTonsPerMWh,
			MaintenanceYears:       []int{},
		}
		plant.Status = lifecycle.InitialStatus(plant, session.CurrentYear)

		owner := utilities[sp.utilityID]
		f := finance.PlanFinancing(plant.CapitalCostTotal)
		owner.Debt += f.Debt
		owner.Budget -= f.Equity
		owner.Equity -= f.Equity

		if err := s.repos.Plants.CreatePlantWithFinancing(plant, owner); err != nil {
			return nil, err
		}
		data.PlantCount++
		data.TotalCapacityMW += plant.CapacityMW
	}

	log.Printf("Seeded sample session %s: %d utilities, %d plants, %.0f MW",
		session.ID, len(data.UtilityIDs), data.PlantCount, data.TotalCapacityMW)
	return data, nil
}

package gameflow

import (
	"fmt"

	"capacitymarket/internal/engines/cost"
	"capacitymarket/internal/engines/finance"
	"capacitymarket/internal/engines/market"
	"capacitymarket/internal/models"
)

const (
	competitiveMarkup = 1.10
	premiumMarkup     = 1.25

	lowCapacityMargin  = 0.15
	highCapacityMargin = 0.30
)

var periodDescriptions = map[models.LoadPeriod]string{
	models.LoadPeriodOffPeak:  "Night and weekend hours",
	models.LoadPeriodShoulder: "Daytime non-peak hours",
	models.LoadPeriodPeak:     "Evening and high-demand hours",
}

// fuelFreeRange is offered to plants with no fuel to price
var fuelFreeRange = BidRange{Minimum: 0, Competitive: 10, Premium: 25}

func forecastDemand(profile models.AnnualDemandProfile, yearOffset int) DemandForecast {
	return DemandForecast{
		OffPeak:           profile.PeriodDemand(models.LoadPeriodOffPeak, yearOffset),
		Shoulder:          profile.PeriodDemand(models.LoadPeriodShoulder, yearOffset),
		Peak:              profile.PeriodDemand(models.LoadPeriodPeak, yearOffset),
		GrowthRate:        profile.DemandGrowthRate,
		TotalAnnualEnergy: profile.AnnualEnergy(yearOffset),
	}
}

// operatingIn reports whether a plant is producing in year, judged from its
// commissioning window and maintenance schedule rather than its current status
func operatingIn(plant *models.Plant, year int) bool {
	return finance.InService(plant, year) && !plant.IsMaintenanceYear(year)
}

func guidanceFor(plant *models.Plant, fuelPrices map[string]float64, carbonPrice float64) BidGuidance {
	b := cost.MarginalCostBreakdown(plant, fuelPrices, carbonPrice)
	g := BidGuidance{
		MarginalCost:        b.Total,
		FuelCostComponent:   b.FuelCost,
		CarbonCostComponent: b.CarbonCost,
	}
	if plant.FuelType != nil && *plant.FuelType != "" {
		g.RecommendedBidRange = BidRange{
			Minimum:     b.Total,
			Competitive: b.Total * competitiveMarkup,
			Premium:     b.Total * premiumMarkup,
		}
	} else {
		g.RecommendedBidRange = fuelFreeRange
	}
	return g
}

func outcomeOf(c market.PeriodClearing) PeriodOutcome {
	return PeriodOutcome{
		ClearingPrice:   c.ClearingPrice,
		ClearedQuantity: c.ClearedQuantity,
		TotalEnergy:     c.TotalEnergy,
		TargetDemand:    c.TargetDemand,
		AcceptedBids:    len(c.Accepted),
		MarginalPlant:   c.MarginalPlantID,
		Scarcity:        c.Scarcity,
	}
}

func outcomeFromModel(r models.MarketResult) PeriodOutcome {
	o := PeriodOutcome{
		ClearingPrice:   r.ClearingPrice,
		ClearedQuantity: r.ClearedQuantity,
		TotalEnergy:     r.TotalEnergy,
		TargetDemand:    r.TargetDemand,
		AcceptedBids:    len(r.AcceptedBidIDs),
		Scarcity:        r.Scarcity,
	}
	if r.MarginalPlantID != nil {
		o.MarginalPlant = *r.MarginalPlantID
	}
	return o
}

// energyAndValue sums energy (MWh) and price-weighted value ($) over stored results
func energyAndValue(results []models.MarketResult) (energy, value float64) {
	for _, r := range results {
		energy += r.TotalEnergy
		value += r.ClearingPrice * r.TotalEnergy
	}
	return energy, value
}

// capacityUtilization is annual energy over the energy operating plants could
// produce running flat out all year
func capacityUtilization(totalEnergy float64, plants []models.Plant, year int) float64 {
	capacity := 0.0
	for i := range plants {
		if operatingIn(&plants[i], year) {
			capacity += plants[i].CapacityMW
		}
	}
	return finance.SafeDiv(totalEnergy, capacity*models.HoursPerYear)
}

// renewablePenetration is the renewable share of operating capacity
func renewablePenetration(plants []models.Plant, year int) float64 {
	total, renewable := 0.0, 0.0
	for i := range plants {
		if !operatingIn(&plants[i], year) {
			continue
		}
		total += plants[i].CapacityMW
		if plants[i].PlantType.IsRenewable() {
			renewable += plants[i].CapacityMW
		}
	}
	return finance.SafeDiv(renewable, total)
}

// marketInsights produces short classroom commentary on a cleared year.
// Capacity margin compares operating capacity against peak demand.
func marketInsights(clearings []market.PeriodClearing, plants []models.Plant, year int) []string {
	insights := []string{}
	if len(clearings) == 0 {
		return insights
	}

	sum := 0.0
	minPrice, maxPrice := clearings[0].ClearingPrice, clearings[0].ClearingPrice
	var peakDemand float64
	for _, c := range clearings {
		sum += c.ClearingPrice
		minPrice = min(minPrice, c.ClearingPrice)
		maxPrice = max(maxPrice, c.ClearingPrice)
		if c.Period == models.LoadPeriodPeak {
			peakDemand = c.TargetDemand
		}
	}
	insights = append(insights, fmt.Sprintf("Average clearing price across all periods: $%.2f/MWh", sum/float64(len(clearings))))

	if maxPrice > minPrice*2 {
		insights = append(insights, "Significant price volatility between load periods - peak hours command premium prices")
	}

	for _, c := range clearings {
		if c.Scarcity {
			insights = append(insights, fmt.Sprintf("Supply fell short of demand in the %s period - scarcity pricing applied", c.Period))
		}
	}

	if peakDemand > 0 {
		capacity := 0.0
		for i := range plants {
			if operatingIn(&plants[i], year) {
				capacity += plants[i].CapacityMW
			}
		}
		margin := (capacity - peakDemand) / peakDemand
		switch {
		case margin < lowCapacityMargin:
			insights = append(insights, "Low capacity margin - market may be tight, consider new investments")
		case margin > highCapacityMargin:
			insights = append(insights, "High capacity margin - excess generation capacity in the market")
		}
	}

	return insights
}

var noBidsInsights = []string{
	"No market activity occurred this year due to lack of bids",
	"Utilities should submit bids during the bidding phase",
	"Consider reviewing bidding strategies for future years",
}

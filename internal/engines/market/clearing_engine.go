package market

import (
	"math"
	"sort"

	"capacitymarket/internal/models"
)

// scarcityMultiplier is applied to the highest submitted price when supply falls short of demand
const scarcityMultiplier = 2.0

// PeriodBid is one bid's offer for a single load period
type PeriodBid struct {
	BidID     string  `json:"bid_id"`
	PlantID   string  `json:"plant_id"`
	UtilityID string  `json:"utility_id"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
}

// PeriodClearing is the outcome of clearing one load period
type PeriodClearing struct {
	Year            int               `json:"year"`
	Period          models.LoadPeriod `json:"period"`
	Hours           int               `json:"hours"`
	TargetDemand    float64           `json:"target_demand"`
	TotalSupply     float64           `json:"total_supply"`
	ClearingPrice   float64           `json:"clearing_price"`
	ClearedQuantity float64           `json:"cleared_quantity"`
	TotalEnergy     float64           `json:"total_energy"`
	Accepted        []PeriodBid       `json:"accepted_bids"`
	MarginalBidID   string            `json:"marginal_bid_id,omitempty"`
	MarginalPlantID string            `json:"marginal_plant_id,omitempty"`
	Scarcity        bool              `json:"scarcity"`
}

// ExtractPeriodBids picks the period's quantity and price out of each bid,
// dropping zero-quantity offers. Input order is preserved.
func ExtractPeriodBids(bids []models.YearlyBid, period models.LoadPeriod) []PeriodBid {
	out := make([]PeriodBid, 0, len(bids))
	for i := range bids {
		qty, price := bids[i].ForPeriod(period)
		if qty <= 0 {
			continue
		}
		out = append(out, PeriodBid{
			BidID:     bids[i].ID,
			PlantID:   bids[i].PlantID,
			UtilityID: bids[i].UtilityID,
			Price:     price,
			Quantity:  qty,
		})
	}
	return out
}

// ClearingEngine runs uniform-price merit-order auctions
type ClearingEngine struct{}

// NewClearingEngine creates a new clearing engine
func NewClearingEngine() *ClearingEngine {
	return &ClearingEngine{}
}

// ClearPeriod clears one load period. bids must be in submission order so that
// equal prices keep that order after sorting.
func (e *ClearingEngine) ClearPeriod(bids []PeriodBid, targetDemand float64, hours int) PeriodClearing {
	result := PeriodClearing{
		Hours:        hours,
		TargetDemand: targetDemand,
		Accepted:     []PeriodBid{},
	}
	if len(bids) == 0 {
		return result
	}

	sorted := make([]PeriodBid, len(bids))
	copy(sorted, bids)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	cumulative := 0.0
	marginal := -1
	for i, bid := range sorted {
		cumulative += bid.Quantity
		if cumulative >= targetDemand {
			marginal = i
			break
		}
	}

	if marginal >= 0 {
		result.Accepted = sorted[:marginal+1]
		result.ClearingPrice = sorted[marginal].Price
		result.MarginalBidID = sorted[marginal].BidID
		result.MarginalPlantID = sorted[marginal].PlantID
	} else {
		maxPrice := math.Inf(-1)
		for _, bid := range sorted {
			maxPrice = math.Max(maxPrice, bid.Price)
		}
		result.Accepted = sorted
		result.ClearingPrice = scarcityMultiplier * maxPrice
		result.Scarcity = true
	}

	for _, bid := range sorted {
		result.TotalSupply += bid.Quantity
	}
	result.ClearedQuantity = math.Min(targetDemand, cumulative)
	result.TotalEnergy = result.ClearedQuantity * float64(hours)
	return result
}

// ClearYear clears every load period independently for year. yearOffset is the
// number of growth years applied to the demand profile.
func (e *ClearingEngine) ClearYear(bids []models.YearlyBid, demand models.AnnualDemandProfile, year, yearOffset int) []PeriodClearing {
	results := make([]PeriodClearing, 0, len(models.LoadPeriods))
	for _, period := range models.LoadPeriods {
		r := e.ClearPeriod(
			ExtractPeriodBids(bids, period),
			demand.PeriodDemand(period, yearOffset),
			demand.PeriodHours(period),
		)
		r.Year = year
		r.Period = period
		results = append(results, r)
	}
	return results
}

// ToModel converts the clearing into a persistable market result
func (c PeriodClearing) ToModel(sessionID string) *models.MarketResult {
	ids := make([]string, len(c.Accepted))
	for i, bid := range c.Accepted {
		ids[i] = bid.BidID
	}

	var marginal *string
	if c.MarginalPlantID != "" {
		id := c.MarginalPlantID
		marginal = &id
	}

	return &models.MarketResult{
		GameSessionID:   sessionID,
		Year:            c.Year,
		Period:          c.Period,
		ClearingPrice:   c.ClearingPrice,
		ClearedQuantity: c.ClearedQuantity,
		TotalEnergy:     c.TotalEnergy,
		TargetDemand:    c.TargetDemand,
		AcceptedBidIDs:  ids,
		MarginalPlantID: marginal,
		Scarcity:        c.Scarcity,
	}
}

package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitymarket/internal/models"
)

func TestStoreSessions(t *testing.T) {
	store := NewStore()

	session := &models.GameSession{Name: "test", StartYear: 2025, EndYear: 2030, CurrentYear: 2025, State: models.GameStateSetup}
	require.NoError(t, store.CreateSession(session))
	require.NotEmpty(t, session.ID)

	got, err := store.GetSession(session.ID)
	require.NoError(t, err)
	got.State = models.GameStateBiddingOpen

	again, err := store.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStateSetup, again.State, "returned records are copies")

	require.NoError(t, store.UpdateSession(got))
	again, _ = store.GetSession(session.ID)
	assert.Equal(t, models.GameStateBiddingOpen, again.State)

	_, err = store.GetSession("missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.True(t, errors.Is(store.UpdateSession(&models.GameSession{ID: "missing"}), models.ErrNotFound))
}

func TestStoreUtilities(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.CreateUtility(&models.Utility{Username: "b", Budget: 1}))
	require.NoError(t, store.CreateUtility(&models.Utility{Username: "a", Budget: 2}))
	assert.Error(t, store.CreateUtility(&models.Utility{Username: "a"}))

	u, err := store.GetUtilityByUsername("a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, u.Budget)

	all, err := store.ListUtilities()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Username)
}

func TestStorePlants(t *testing.T) {
	store := NewStore()
	utility := &models.Utility{Username: "u", Budget: 100, Equity: 100}
	require.NoError(t, store.CreateUtility(utility))

	plant := &models.Plant{GameSessionID: "s1", UtilityID: utility.ID, Name: "p", MaintenanceYears: []int{2028}}
	utility.Budget = 70
	require.NoError(t, store.CreatePlantWithFinancing(plant, utility))

	stored, err := store.GetUtility(utility.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.0, stored.Budget)

	got, err := store.GetPlant("s1", plant.ID)
	require.NoError(t, err)
	got.MaintenanceYears[0] = 1999

	plants, err := store.ListPlants("s1")
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, 2028, plants[0].MaintenanceYears[0])

	_, err = store.GetPlant("other-session", plant.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	err = store.CreatePlantWithFinancing(&models.Plant{GameSessionID: "s1"}, &models.Utility{ID: "ghost"})
	assert.True(t, errors.Is(err, models.ErrNotFound))
	plants, _ = store.ListPlants("s1")
	assert.Len(t, plants, 1, "failed financing creates no plant")
}

func TestStoreBidsAndResults(t *testing.T) {
	store := NewStore()

	first := &models.YearlyBid{GameSessionID: "s1", PlantID: "p1", Year: 2025, PeakQuantity: 10}
	require.NoError(t, store.UpsertBid(first))
	second := &models.YearlyBid{GameSessionID: "s1", PlantID: "p2", Year: 2025, PeakQuantity: 20}
	require.NoError(t, store.UpsertBid(second))
	replacement := &models.YearlyBid{GameSessionID: "s1", PlantID: "p1", Year: 2025, PeakQuantity: 30}
	require.NoError(t, store.UpsertBid(replacement))

	assert.Equal(t, first.ID, replacement.ID)

	bids, err := store.ListBids("s1", 2025)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, "p2", bids[0].PlantID)
	assert.Equal(t, 30.0, bids[1].PeakQuantity)

	empty, err := store.ListBids("s2", 2025)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.SaveResults("s1", 2025, []*models.MarketResult{{GameSessionID: "s1", Year: 2025, Period: models.LoadPeriodPeak}}))
	require.NoError(t, store.SaveResults("s1", 2026, []*models.MarketResult{{GameSessionID: "s1", Year: 2026, Period: models.LoadPeriodPeak}}))
	require.NoError(t, store.SaveResults("s1", 2025, []*models.MarketResult{
		{GameSessionID: "s1", Year: 2025, Period: models.LoadPeriodShoulder},
		{GameSessionID: "s1", Year: 2025, Period: models.LoadPeriodOffPeak},
	}))

	results, err := store.ListResults("s1", 2025)
	require.NoError(t, err)
	require.Len(t, results, 2, "re-saving a year supersedes earlier rows")
	assert.Equal(t, models.LoadPeriodOffPeak, results[0].Period, "rows come back in clearing order")
	assert.Equal(t, models.LoadPeriodShoulder, results[1].Period)

	all, err := store.ListResults("s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLoadPeriodRank(t *testing.T) {
	assert.Equal(t, 0, models.LoadPeriodOffPeak.Rank())
	assert.Equal(t, 1, models.LoadPeriodShoulder.Rank())
	assert.Equal(t, 2, models.LoadPeriodPeak.Rank())
	assert.Equal(t, 3, models.LoadPeriod("night").Rank())
}

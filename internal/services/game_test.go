package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitymarket/internal/config"
	"capacitymarket/internal/dao/memory"
	"capacitymarket/internal/engines/gameflow"
	"capacitymarket/internal/models"
)

func newTestService(t *testing.T, seed int64) *GameService {
	t.Helper()
	catalog, err := config.DefaultCatalog()
	require.NoError(t, err)
	repos := memory.NewRepositories()
	return NewGameService(repos, catalog, NewSessionRegistry(repos, catalog, nil, seed))
}

func TestCreateUtility(t *testing.T) {
	svc := newTestService(t, 1)

	u, err := svc.CreateUtility(CreateUtilityRequest{Username: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeUtility, u.UserType)
	assert.Equal(t, 2e9, u.Budget)
	assert.Equal(t, 2e9, u.Equity)

	op, err := svc.CreateUtility(CreateUtilityRequest{Username: "op", UserType: models.UserTypeOperator})
	require.NoError(t, err)
	assert.Equal(t, 1e10, op.Budget)

	budget := 5e8
	small, err := svc.CreateUtility(CreateUtilityRequest{Username: "small", Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, 5e8, small.Budget)

	_, err = svc.CreateUtility(CreateUtilityRequest{Username: "alpha"})
	assert.True(t, errors.Is(err, models.ErrAlreadyExists))

	_, err = svc.CreateUtility(CreateUtilityRequest{Username: "  "})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestCreateSession(t *testing.T) {
	svc := newTestService(t, 1)

	session, err := svc.CreateSession(CreateSessionRequest{Name: "defaults"})
	require.NoError(t, err)
	assert.Equal(t, 2025, session.StartYear)
	assert.Equal(t, 2035, session.EndYear)
	assert.Equal(t, 2025, session.CurrentYear)
	assert.Equal(t, models.GameStateSetup, session.State)
	assert.Equal(t, 50.0, session.CarbonPricePerTon)
	assert.Equal(t, 2400.0, session.Demand().PeakDemand)
	assert.Equal(t, 4.2, session.FuelPricesForYear(2026)["natural_gas"])

	_, err = svc.CreateSession(CreateSessionRequest{Name: "backwards", StartYear: 2030, EndYear: 2026})
	assert.True(t, errors.Is(err, models.ErrInvalidYear))

	negative := -1.0
	_, err = svc.CreateSession(CreateSessionRequest{Name: "negative", CarbonPricePerTon: &negative})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	sessions, err := svc.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSeedSampleData(t *testing.T) {
	svc := newTestService(t, 1)

	data, err := svc.SeedSampleData()
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, SampleSessionID, data.SessionID)
	assert.Equal(t, []string{"utility_1", "utility_2", "utility_3"}, data.UtilityIDs)
	assert.Equal(t, 9, data.PlantCount)
	assert.Equal(t, 3400.0, data.TotalCapacityMW)

	u1, err := svc.GetUtility("utility_1")
	require.NoError(t, err)
	capital := 600e3*4500 + 400e3*1200 + 150e3*800
	assert.InDelta(t, 2e9-0.3*capital, u1.Budget, 1)
	assert.InDelta(t, 0.7*capital, u1.Debt, 1)

	plants, err := svc.ListPlants(SampleSessionID, "utility_3")
	require.NoError(t, err)
	require.Len(t, plants, 3)
	for _, p := range plants {
		assert.Equal(t, models.PlantStatusUnderConstruction, p.Status, p.Name)
	}

	battery, err := svc.GetPlant(SampleSessionID, "plant_grid_battery_storage")
	require.NoError(t, err)
	assert.InDelta(t, -100.0, battery.MinGenerationMW, 1e-9, "charging capability is carried but never bid")

	again, err := svc.SeedSampleData()
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestFinancialSummary(t *testing.T) {
	svc := newTestService(t, 1)
	_, err := svc.SeedSampleData()
	require.NoError(t, err)

	summary, err := svc.FinancialSummary(SampleSessionID, "utility_3")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PlantCount)
	assert.Equal(t, 3, summary.PlantsByStatus[models.PlantStatusUnderConstruction])
	assert.Equal(t, 800.0, summary.TotalCapacityMW)
	assert.Zero(t, summary.OperatingCapacity)
	assert.Zero(t, summary.AnnualFixedCosts, "nothing is in service in 2025")
	assert.Equal(t, 400.0, summary.CapacityByPlantType[models.PlantTypeSolar])

	_, err = svc.FinancialSummary("missing", "utility_3")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestProjectInvestment(t *testing.T) {
	svc := newTestService(t, 1)
	u, err := svc.CreateUtility(CreateUtilityRequest{Username: "alpha"})
	require.NoError(t, err)

	projection, err := svc.ProjectInvestment(ProjectionRequest{
		UtilityID:             u.ID,
		PlantType:             models.PlantTypeSolar,
		CapacityMW:            100,
		ConstructionStartYear: 2025,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.4e8, projection.Financing.CapitalCost, 1e-6)
	assert.True(t, projection.BudgetSufficient)

	stored, err := svc.GetUtility(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2e9, stored.Budget, "projections book nothing")

	_, err = svc.ProjectInvestment(ProjectionRequest{UtilityID: u.ID, PlantType: "fusion", CapacityMW: 1, ConstructionStartYear: 2025})
	assert.True(t, errors.Is(err, models.ErrInvalidPlant))
}

func TestSessionRegistry(t *testing.T) {
	svc := newTestService(t, 42)
	session, err := svc.CreateSession(CreateSessionRequest{Name: "registry"})
	require.NoError(t, err)
	registry := svc.Registry()

	err = registry.WithSession("missing", func(*gameflow.GameFlowEngine) error { return nil })
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Empty(t, registry.Active())

	var first, second *gameflow.GameFlowEngine
	require.NoError(t, registry.WithSession(session.ID, func(e *gameflow.GameFlowEngine) error {
		first = e
		_, err := e.StartYearPlanning(2025)
		return err
	}))
	require.NoError(t, registry.WithSession(session.ID, func(e *gameflow.GameFlowEngine) error {
		second = e
		return nil
	}))
	assert.Same(t, first, second)
	assert.Equal(t, []string{session.ID}, registry.Active())

	sentinel := errors.New("boom")
	assert.Equal(t, sentinel, registry.WithSession(session.ID, func(*gameflow.GameFlowEngine) error { return sentinel }))

	assert.True(t, registry.Dispose(session.ID))
	assert.False(t, registry.Dispose(session.ID))
	assert.Empty(t, registry.Active())

	stored, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStateYearPlanning, stored.State, "disposing keeps persisted state")
}

func TestSeededRandomIsReproducible(t *testing.T) {
	a := NewSessionRegistry(memory.NewRepositories(), nil, nil, 7)
	b := NewSessionRegistry(memory.NewRepositories(), nil, nil, 7)

	ra, rb := a.randomFor("s1"), b.randomFor("s1")
	for i := 0; i < 5; i++ {
		assert.Equal(t, ra.Float64(), rb.Float64())
		assert.Equal(t, ra.Intn(100), rb.Intn(100))
	}
	assert.NotEqual(t, a.randomFor("s1").Int63(), a.randomFor("s2").Int63())
}

func TestDisposeKeepsSessionSerialised(t *testing.T) {
	svc := newTestService(t, 3)
	session, err := svc.CreateSession(CreateSessionRequest{Name: "dispose"})
	require.NoError(t, err)
	registry := svc.Registry()

	var inFlight, maxInFlight int32
	enter := func() {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
	}

	started := make(chan struct{})
	var wg sync.WaitGroup
	var first, second *gameflow.GameFlowEngine

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, registry.WithSession(session.ID, func(e *gameflow.GameFlowEngine) error {
			enter()
			defer atomic.AddInt32(&inFlight, -1)
			first = e
			assert.True(t, registry.Dispose(session.ID))
			close(started)
			time.Sleep(50 * time.Millisecond)
			return nil
		}))
	}()

	<-started
	require.NoError(t, registry.WithSession(session.ID, func(e *gameflow.GameFlowEngine) error {
		enter()
		defer atomic.AddInt32(&inFlight, -1)
		second = e
		return nil
	}))
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	assert.NotSame(t, first, second, "a disposed engine is replaced")
	assert.Equal(t, []string{session.ID}, registry.Active())
}

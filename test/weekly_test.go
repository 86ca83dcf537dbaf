//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/weeklyfit/internal"
	"github.com/2beens/weeklyfit/internal/config"
	"github.com/2beens/weeklyfit/internal/kv"
	"github.com/2beens/weeklyfit/internal/recommend"
	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/internal/weekly"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestAuthRequired() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, _ := s.do(ctx, "GET", "/weekly", nil, false)
	assert.Equal(s.T(), http.StatusUnauthorized, status)

	status, body := s.do(ctx, "GET", "/version", nil, false)
	assert.Equal(s.T(), http.StatusOK, status)
	assert.Equal(s.T(), "test-version-info", string(body))
}

func (s *IntegrationTestSuite) TestWeeklyLifecycle() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	status, _ := s.do(ctx, "POST", "/weekly/reset", nil, true)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(ctx, "DELETE", "/weekly/history", nil, true)
	require.Equal(t, http.StatusOK, status)

	for _, ex := range []weekly.Exercise{
		{Name: "Squat", Sets: 3, Reps: 10, Duration: 20, Type: "strength", Intensity: 6},
		{Name: "Run", Duration: 30, Type: "cardio", Intensity: 7},
		{Name: "Deadlift", Sets: 3, Reps: 5, Duration: 25, Type: "strength", Intensity: 8},
	} {
		status, body := s.do(ctx, "POST", "/weekly/exercises", weekly.LogExercise{Group: "Main", Exercise: ex}, true)
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body := s.do(ctx, "POST", "/weekly/hydration", weekly.LogHydration{Amount: 750, Day: "Monday"}, true)
	require.Equal(t, http.StatusCreated, status, string(body))

	// persisted in redis under the configured prefix
	raw, err := s.redisClient.Get(ctx, "it:"+weekly.KeyWeeklyData).Bytes()
	require.NoError(t, err)
	res := weekly.Normalize(raw)
	assert.Empty(t, res.Repairs)
	assert.Equal(t, 3, res.Record.ExerciseCount())

	status, body = s.do(ctx, "GET", "/recommendations/workouts", nil, true)
	require.Equal(t, http.StatusOK, status)
	var rec recommend.Recommendation
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, recommend.LevelIntermediate, rec.Level)
	assert.Equal(t, weekly.CategoryFlexibility, rec.Focus)

	status, _ = s.do(ctx, "POST", "/weekly/archive", nil, true)
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(ctx, "GET", "/weekly", nil, true)
	require.Equal(t, http.StatusOK, status)
	var record weekly.WeeklyRecord
	require.NoError(t, json.Unmarshal(body, &record))
	assert.Empty(t, record.Workouts)
	assert.Empty(t, record.Hydration)
	require.Len(t, record.History.PreviousWeeks, 1)
	assert.Len(t, record.History.PreviousWeeks[0].Workouts["Main"], 3)
}

func (s *IntegrationTestSuite) TestLegacyStateIsRepairedOnLoad() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	prefix := "legacy:"
	legacy := `{"workouts":{"Legs":{"name":"Squat","sets":"3","type":"strength"}},"hydration":"1500","goals":{"workoutDays":-1}}`
	require.NoError(t, s.redisClient.Set(ctx, prefix+weekly.KeyWeeklyData, legacy, 0).Err())

	store := weekly.NewStore(ctx, kv.WithPrefix(kv.NewRedisStore(s.redisClient), prefix), metrics.NewTestManager())
	rec := store.Record()
	require.Len(t, rec.Workouts["Legs"], 1)
	assert.Equal(t, 3, rec.Workouts["Legs"][0].Sets)
	assert.Equal(t, weekly.CategoryStrength, rec.Workouts["Legs"][0].Category)
	require.Len(t, rec.Hydration, 1)
	assert.Equal(t, float64(1500), rec.Hydration[0].Amount)
	assert.Equal(t, weekly.DefaultGoals().WorkoutDays, rec.Goals.WorkoutDays)
}

func (s *IntegrationTestSuite) TestPostgresBackend() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	storage, err := internal.OpenStorage(ctx, s.testConfig(config.StoragePostgres), &config.Secrets{PostgresUser: "postgres"})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, storage.Close())
	}()
	assert.Len(t, storage.Collectors(), 1)

	store := weekly.NewStore(ctx, storage.KV, metrics.NewTestManager())
	_, err = store.Apply(ctx, weekly.SetMeal{Slot: "breakfast", Description: "Oatmeal"})
	require.NoError(t, err)

	var value string
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT value::text FROM kv_store WHERE key = $1`, "it:"+weekly.KeyWeeklyData,
	).Scan(&value))
	assert.Contains(t, value, "Oatmeal")

	// a fresh store over the same table sees the same record
	reloaded := weekly.NewStore(ctx, storage.KV, metrics.NewTestManager())
	assert.Equal(t, "Oatmeal", reloaded.Record().Meals["breakfast"])
}

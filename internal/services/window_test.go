package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
	"lunchdesk/internal/services/servicestest"
)

var tbilisi = time.FixedZone("GET", 4*60*60)

// at returns a wall-clock time in the operating timezone during July 2024.
// 2024-07-01 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.July, day, hour, minute, 0, 0, tbilisi)
}

func newEvaluator(store services.WindowStore, now time.Time) *services.WindowEvaluator {
	return services.NewWindowEvaluator(store, servicestest.FixedClock(now), tbilisi, 10)
}

func enabledWindow(weekStart time.Time) *models.WindowState {
	return &models.WindowState{NextWeekEnabled: true, WeekStart: &weekStart}
}

func TestEvaluateDayTodayBeforeCutoff(t *testing.T) {
	now := at(1, 9, 0)
	evaluator := newEvaluator(servicestest.NewWindowStore(nil), now)

	decision, err := evaluator.EvaluateDay(context.Background(), models.Monday, now)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.False(t, decision.IsNextWeek)
	assert.Equal(t, servicestest.Date(2024, time.July, 1), decision.TargetWeekStart)
	assert.Empty(t, decision.Warning)
}

func TestEvaluateDayTodayAfterCutoff(t *testing.T) {
	now := at(1, 11, 0)
	evaluator := newEvaluator(servicestest.NewWindowStore(nil), now)

	decision, err := evaluator.EvaluateDay(context.Background(), models.Monday, now)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Warning, "until 10:00")
}

func TestEvaluateDayCutoffIsInclusive(t *testing.T) {
	now := at(2, 10, 0)
	evaluator := newEvaluator(servicestest.NewWindowStore(nil), now)

	decision, err := evaluator.EvaluateDay(context.Background(), models.Tuesday, now)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluateDayPassedDayWithoutWindow(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		day  models.Weekday
	}{
		{"monday on wednesday", at(3, 8, 0), models.Monday},
		{"tuesday on wednesday", at(3, 8, 0), models.Tuesday},
		{"thursday on friday", at(5, 7, 30), models.Thursday},
		{"monday on friday evening", at(5, 22, 0), models.Monday},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := newEvaluator(servicestest.NewWindowStore(nil), tc.now)

			decision, err := evaluator.EvaluateDay(context.Background(), tc.day, tc.now)
			require.NoError(t, err)

			assert.False(t, decision.Allowed)
			assert.Equal(t, servicestest.Date(2024, time.July, 1), decision.TargetWeekStart)
			assert.Contains(t, decision.Warning, "closed for the current week")
		})
	}
}

func TestEvaluateDayPassedDayRollsToNextWeek(t *testing.T) {
	now := at(3, 12, 0)
	nextWeek := servicestest.Date(2024, time.July, 8)
	evaluator := newEvaluator(servicestest.NewWindowStore(enabledWindow(nextWeek)), now)

	decision, err := evaluator.EvaluateDay(context.Background(), models.Monday, now)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.True(t, decision.IsNextWeek)
	assert.Equal(t, nextWeek, decision.TargetWeekStart)
}

func TestEvaluateDayUpcomingDaysStayInCurrentWeekWhileWindowOpen(t *testing.T) {
	now := at(4, 9, 0)
	nextWeek := servicestest.Date(2024, time.July, 8)
	evaluator := newEvaluator(servicestest.NewWindowStore(enabledWindow(nextWeek)), now)

	for _, day := range []models.Weekday{models.Thursday, models.Friday} {
		decision, err := evaluator.EvaluateDay(context.Background(), day, now)
		require.NoError(t, err)

		assert.True(t, decision.Allowed, day)
		assert.False(t, decision.IsNextWeek, day)
		assert.Equal(t, servicestest.Date(2024, time.July, 1), decision.TargetWeekStart, day)
	}

	decision, err := evaluator.EvaluateDay(context.Background(), models.Wednesday, now)
	require.NoError(t, err)
	assert.True(t, decision.IsNextWeek)
	assert.Equal(t, nextWeek, decision.TargetWeekStart)
}

func TestEvaluateDayUpcomingDayWithoutWindow(t *testing.T) {
	now := at(3, 12, 0)
	evaluator := newEvaluator(servicestest.NewWindowStore(nil), now)

	decision, err := evaluator.EvaluateDay(context.Background(), models.Thursday, now)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.False(t, decision.IsNextWeek)
	assert.Equal(t, servicestest.Date(2024, time.July, 1), decision.TargetWeekStart)
}

func TestEvaluateDayRejectsUnknownDay(t *testing.T) {
	now := at(1, 9, 0)
	evaluator := newEvaluator(servicestest.NewWindowStore(nil), now)

	_, err := evaluator.EvaluateDay(context.Background(), models.Weekday("saturday"), now)

	var validation services.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "day", validation.Field)
}

func TestStateCreatesDefaultOnFirstRead(t *testing.T) {
	store := servicestest.NewWindowStore(nil)
	evaluator := newEvaluator(store, at(1, 9, 0))

	state, err := evaluator.State(context.Background())
	require.NoError(t, err)

	assert.False(t, state.NextWeekEnabled)
	assert.Nil(t, state.WeekStart)
	assert.Equal(t, 1, store.Saves)
}

func TestStateExpiryIsIdempotent(t *testing.T) {
	store := servicestest.NewWindowStore(enabledWindow(servicestest.Date(2024, time.July, 1)))
	evaluator := newEvaluator(store, at(3, 9, 0))

	first, err := evaluator.State(context.Background())
	require.NoError(t, err)
	second, err := evaluator.State(context.Background())
	require.NoError(t, err)

	assert.False(t, first.NextWeekEnabled)
	assert.Nil(t, first.WeekStart)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Saves, "only the first read corrects the record")
}

func TestStateKeepsFutureWindow(t *testing.T) {
	nextWeek := servicestest.Date(2024, time.July, 8)
	store := servicestest.NewWindowStore(enabledWindow(nextWeek))
	evaluator := newEvaluator(store, at(5, 18, 0))

	state, err := evaluator.State(context.Background())
	require.NoError(t, err)

	assert.True(t, state.NextWeekEnabled)
	require.NotNil(t, state.WeekStart)
	assert.Equal(t, nextWeek, *state.WeekStart)
	assert.Zero(t, store.Saves)
}

func TestSetWindowOverwrites(t *testing.T) {
	store := servicestest.NewWindowStore(enabledWindow(servicestest.Date(2024, time.July, 8)))
	evaluator := newEvaluator(store, at(3, 9, 0))

	state, err := evaluator.SetWindow(context.Background(), false, nil, "kitchen closed")
	require.NoError(t, err)
	assert.False(t, state.NextWeekEnabled)

	loaded, err := evaluator.State(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.NextWeekEnabled)
	assert.Nil(t, loaded.WeekStart)
	assert.Equal(t, "kitchen closed", loaded.Note)
}

func TestStatePropagatesStoreFailure(t *testing.T) {
	store := servicestest.NewWindowStore(nil)
	store.Err = errors.New("connection refused")
	evaluator := newEvaluator(store, at(1, 9, 0))

	_, err := evaluator.State(context.Background())
	require.Error(t, err)
	assert.False(t, services.IsDomainError(err))
}

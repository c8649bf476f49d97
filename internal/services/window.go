package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/models"
)

const DefaultCutoffHour = 10

const closedForWeekMessage = "orders for this day are closed for the current week; wait for next week's window to open"

// WindowDecision is the admission outcome for one day request.
// TargetWeekStart is the current week's Monday when the request is denied.
type WindowDecision struct {
	Allowed         bool      `json:"allowed"`
	Warning         string    `json:"warning,omitempty"`
	IsNextWeek      bool      `json:"isNextWeek"`
	TargetWeekStart time.Time `json:"targetWeekStart"`
}

// WindowEvaluator decides whether a day can still be ordered and for which
// delivery week.
//
// The self-expiry correction in State is a read followed by a write and is
// not atomic across processes. Concurrent callers compute and store the same
// corrected state, so the race is benign.
type WindowEvaluator struct {
	store      WindowStore
	clock      Clock
	loc        *time.Location
	cutoffHour int
}

func NewWindowEvaluator(store WindowStore, clock Clock, loc *time.Location, cutoffHour int) *WindowEvaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &WindowEvaluator{
		store:      store,
		clock:      clock,
		loc:        loc,
		cutoffHour: cutoffHour,
	}
}

// State returns the current window, creating the default record on first
// read and disabling a window whose week has already started.
func (w *WindowEvaluator) State(ctx context.Context) (models.WindowState, error) {
	return w.state(ctx, w.clock.Now().In(w.loc))
}

func (w *WindowEvaluator) state(ctx context.Context, now time.Time) (models.WindowState, error) {
	state, err := w.store.LoadWindow(ctx)
	if err != nil {
		return models.WindowState{}, fmt.Errorf("load order window: %w", err)
	}

	if state == nil {
		fresh := models.WindowState{UpdatedAt: now}
		if err := w.store.SaveWindow(ctx, fresh); err != nil {
			return models.WindowState{}, fmt.Errorf("create order window: %w", err)
		}
		return fresh, nil
	}

	today := models.DateOf(now)
	if state.WeekStart != nil && !state.WeekStart.After(today) {
		log.WithFields(log.Fields{
			"component": "window",
			"weekStart": models.DateKey(*state.WeekStart),
		}).Info("next-week window expired, disabling")

		state.NextWeekEnabled = false
		state.WeekStart = nil
		state.UpdatedAt = now
		if err := w.store.SaveWindow(ctx, *state); err != nil {
			return models.WindowState{}, fmt.Errorf("expire order window: %w", err)
		}
	}

	return *state, nil
}

// SetWindow overwrites the window unconditionally. Callers enforce that
// only admins reach it.
func (w *WindowEvaluator) SetWindow(ctx context.Context, enabled bool, weekStart *time.Time, note string) (models.WindowState, error) {
	state := models.WindowState{
		NextWeekEnabled: enabled,
		Note:            note,
		UpdatedAt:       w.clock.Now(),
	}
	if weekStart != nil {
		start := models.DateOf(*weekStart)
		state.WeekStart = &start
	}

	if err := w.store.SaveWindow(ctx, state); err != nil {
		return models.WindowState{}, fmt.Errorf("save order window: %w", err)
	}

	fields := log.Fields{"component": "window", "enabled": enabled}
	if state.WeekStart != nil {
		fields["weekStart"] = models.DateKey(*state.WeekStart)
	}
	log.WithFields(fields).Info("order window updated")

	return state, nil
}

// EvaluateDay decides whether day may be ordered at now.
func (w *WindowEvaluator) EvaluateDay(ctx context.Context, day models.Weekday, now time.Time) (WindowDecision, error) {
	if !day.Valid() {
		return WindowDecision{}, ValidationError{Field: "day", Message: "only weekdays from monday to friday can be ordered"}
	}

	local := now.In(w.loc)
	state, err := w.state(ctx, local)
	if err != nil {
		return WindowDecision{}, err
	}

	dayIdx := day.Index()
	todayIdx := models.DayIndex(local)
	currentWeek := models.MondayOf(local)
	nextWeekOpen := state.NextWeekEnabled && state.WeekStart != nil

	switch {
	case dayIdx < todayIdx:
		if nextWeekOpen {
			return WindowDecision{Allowed: true, IsNextWeek: true, TargetWeekStart: *state.WeekStart}, nil
		}
		return WindowDecision{Warning: closedForWeekMessage, TargetWeekStart: currentWeek}, nil
	case dayIdx == todayIdx && local.Hour() >= w.cutoffHour:
		return WindowDecision{
			Warning:         fmt.Sprintf("orders for this day are accepted until %02d:00", w.cutoffHour),
			TargetWeekStart: currentWeek,
		}, nil
	}

	// upcoming days stay in the current week even while next week is open
	return WindowDecision{Allowed: true, TargetWeekStart: currentWeek}, nil
}

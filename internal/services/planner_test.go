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

var weekOfJuly15 = servicestest.Date(2024, time.July, 15)

type plannerFixture struct {
	catalog *servicestest.Catalog
	planner *services.Planner

	monday   string
	limited  string
	closed   string
	soldOut  string
	nextWeek string
}

func newPlannerFixture() *plannerFixture {
	catalog := servicestest.NewCatalog()
	catalog.AddWeek(weekOfJuly1, "First July week", weekDishes())
	catalog.AddWeek(weekOfJuly8, "", weekDishes())

	f := &plannerFixture{catalog: catalog}
	f.monday = catalog.AddOffer(models.DayOffer{
		WeekStart: weekOfJuly1, Day: models.Monday, Status: models.OfferAvailable,
		PriceAmount: 1500, Currency: "GEL",
	})
	f.limited = catalog.AddOffer(models.DayOffer{
		WeekStart: weekOfJuly1, Day: models.Tuesday, Status: models.OfferAvailable,
		PriceAmount: 1600, Currency: "GEL", PortionLimit: intPtr(5), PortionsReserved: 3,
	})
	f.closed = catalog.AddOffer(models.DayOffer{
		WeekStart: weekOfJuly1, Day: models.Wednesday, Status: models.OfferClosed,
		PriceAmount: 1500, Currency: "GEL",
	})
	f.soldOut = catalog.AddOffer(models.DayOffer{
		WeekStart: weekOfJuly1, Day: models.Thursday, Status: models.OfferAvailable,
		PriceAmount: 1500, Currency: "GEL", PortionLimit: intPtr(2), PortionsReserved: 2,
	})
	f.nextWeek = catalog.AddOffer(models.DayOffer{
		WeekStart: weekOfJuly8, Day: models.Monday, Status: models.OfferAvailable,
		PriceAmount: 1700, Currency: "GEL",
	})
	f.planner = services.NewPlanner(catalog, services.DefaultPricingRules())
	return f
}

func week(start time.Time, enabled bool, selections ...models.PlannerSelection) models.PlannerWeekRequest {
	return models.PlannerWeekRequest{WeekStart: &start, Enabled: enabled, Selections: selections}
}

func pick(offerID string, portions int) models.PlannerSelection {
	return models.PlannerSelection{OfferID: offerID, Portions: portions}
}

func TestQuoteCapacityLimitsAcceptedPortions(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{week(weekOfJuly1, true, pick(f.limited, 10))}),
	})
	require.NoError(t, err)

	require.Len(t, quote.Items, 1)
	line := quote.Items[0]
	assert.Equal(t, models.LinePartial, line.Status)
	assert.Equal(t, 10, line.RequestedPortions)
	assert.Equal(t, 2, line.AcceptedPortions)
	assert.Equal(t, int64(3200), line.Subtotal)
	assert.Equal(t, "only 2 portions available", line.Message)
	assert.Contains(t, quote.Warnings, "only 2 portions available")
}

func TestQuoteMidWeekStartPricesThatWeek(t *testing.T) {
	f := newPlannerFixture()
	wednesday := servicestest.Date(2024, time.July, 3)
	weeks := []models.PlannerWeekRequest{week(wednesday, true, pick(f.monday, 2))}

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{Plan: services.WeeklyPlan(weeks)})
	require.NoError(t, err)

	require.Len(t, quote.Items, 1)
	assert.Equal(t, models.LineOK, quote.Items[0].Status)
	assert.Equal(t, int64(3000), quote.Subtotal)
	require.NotNil(t, quote.Weeks[0].WeekStart)
	assert.True(t, weekOfJuly1.Equal(*quote.Weeks[0].WeekStart))
	assert.Equal(t, models.MenuPublished, quote.Weeks[0].MenuStatus)
	assert.True(t, wednesday.Equal(*weeks[0].WeekStart), "caller's plan must not be rewritten")
}

func TestQuoteDisabledWeekContributesNothing(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, true, pick(f.monday, 2)),
			week(weekOfJuly8, false, pick(f.nextWeek, 3)),
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), quote.Subtotal)
	assert.Equal(t, int64(3000), quote.Total)
	require.Len(t, quote.Weeks, 2)
	assert.Equal(t, int64(3000), quote.Weeks[0].Subtotal)
	assert.Equal(t, models.MenuPublished, quote.Weeks[0].MenuStatus)
	assert.Equal(t, int64(0), quote.Weeks[1].Subtotal)
	assert.Equal(t, models.MenuDisabled, quote.Weeks[1].MenuStatus)
	assert.Empty(t, quote.Weeks[1].Items)
}

func TestQuoteFlatPlanPricesEachOfferInItsOwnWeek(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.FlatPlan([]models.PlannerSelection{pick(f.monday, 1), pick(f.nextWeek, 1)}),
	})
	require.NoError(t, err)

	require.Len(t, quote.Weeks, 1)
	assert.Nil(t, quote.Weeks[0].WeekStart)
	assert.Equal(t, "Current week", quote.Weeks[0].Label)
	assert.Equal(t, models.MenuPublished, quote.Weeks[0].MenuStatus)
	assert.Equal(t, int64(3200), quote.Subtotal)
	assert.Zero(t, f.catalog.WeekLookups)
}

func TestQuoteAggregatesDuplicateSelections(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, true, pick(f.limited, 1), pick(f.monday, 1), pick(f.monday, 2), pick(f.closed, 0)),
		}),
	})
	require.NoError(t, err)

	require.Len(t, quote.Items, 2)
	assert.Equal(t, f.limited, quote.Items[0].OfferID)
	assert.Equal(t, f.monday, quote.Items[1].OfferID)
	assert.Equal(t, 3, quote.Items[1].RequestedPortions)
	assert.Equal(t, models.LineOK, quote.Items[1].Status)
	assert.Equal(t, int64(1600+4500), quote.Subtotal)
}

func TestQuoteLineStatuses(t *testing.T) {
	f := newPlannerFixture()
	const unknown = "000000000000000000000000"

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, true, pick(unknown, 1), pick(f.closed, 1), pick(f.soldOut, 2)),
			week(weekOfJuly8, true, pick(f.monday, 1)),
		}),
	})
	require.NoError(t, err)

	first := quote.Weeks[0]
	require.Len(t, first.Items, 3)
	assert.Equal(t, models.LineMissing, first.Items[0].Status)
	assert.Equal(t, "offer no longer available", first.Items[0].Message)
	assert.Equal(t, models.LineClosed, first.Items[1].Status)
	assert.Equal(t, "day unavailable", first.Items[1].Message)
	assert.Equal(t, models.LineSoldOut, first.Items[2].Status)
	assert.Zero(t, first.Subtotal)

	second := quote.Weeks[1]
	require.Len(t, second.Items, 1)
	assert.Equal(t, models.LineMissing, second.Items[0].Status)
	assert.Equal(t, "offer belongs to a different week", second.Items[0].Message)
	assert.Zero(t, second.Items[0].AcceptedPortions)

	assert.Equal(t, []string{
		"offer no longer available",
		"day unavailable",
		"sold out",
		"offer belongs to a different week",
		"address required",
	}, quote.Warnings)
}

func TestQuotePendingWeekLocksInPrice(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{week(weekOfJuly15, true, pick(f.monday, 2))}),
	})
	require.NoError(t, err)

	pending := quote.Weeks[0]
	assert.Equal(t, models.MenuPending, pending.MenuStatus)
	assert.Equal(t, "Week of Jul 15", pending.Label)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, models.LineReserved, pending.Items[0].Status)
	assert.Equal(t, 2, pending.Items[0].AcceptedPortions)
	assert.Equal(t, "menu pending: price locked in", pending.Items[0].Message)
	assert.Equal(t, int64(3000), pending.Subtotal)
	assert.Equal(t, int64(3000), quote.Subtotal)
}

func TestQuoteEmptyWeekStatus(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, true),
			week(weekOfJuly15, true, pick(f.monday, 0)),
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, models.MenuEmpty, quote.Weeks[0].MenuStatus)
	assert.Equal(t, "First July week", quote.Weeks[0].Label)
	assert.Equal(t, models.MenuPending, quote.Weeks[1].MenuStatus)
	assert.Zero(t, quote.Subtotal)
	assert.Zero(t, f.catalog.OfferLookups)
}

func TestQuoteRejectsInvalidPlans(t *testing.T) {
	f := newPlannerFixture()

	_, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.FlatPlan([]models.PlannerSelection{pick(f.monday, -1)}),
	})
	var validation services.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "selections", validation.Field)

	_, err = f.planner.Quote(context.Background(), services.QuoteRequest{Plan: services.WeeklyPlan(nil)})
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "weeks", validation.Field)
}

func TestQuoteResolvesCatalogInOneBatch(t *testing.T) {
	f := newPlannerFixture()

	_, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, true, pick(f.monday, 1), pick(f.limited, 1)),
			week(weekOfJuly8, true, pick(f.nextWeek, 1)),
			week(weekOfJuly15, true, pick(f.monday, 1)),
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.catalog.OfferLookups)
	assert.Equal(t, 1, f.catalog.WeekLookups)
}

func TestQuotePromoAndZone(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan:      services.WeeklyPlan([]models.PlannerWeekRequest{week(weekOfJuly1, true, pick(f.monday, 2))}),
		PromoCode: " welcome10 ",
		Address:   "Rustaveli Ave 10, apt 4",
	})
	require.NoError(t, err)

	assert.Equal(t, "WELCOME10", quote.PromoCode)
	assert.Empty(t, quote.PromoCodeError)
	assert.Equal(t, int64(300), quote.Discount)
	assert.Equal(t, int64(2700), quote.Total)
	assert.Equal(t, "center", quote.DeliveryZone)
	assert.True(t, quote.DeliveryAvailable)
	assert.Empty(t, quote.Warnings)
}

func TestQuoteUnknownPromoIsAWarning(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan:      services.WeeklyPlan([]models.PlannerWeekRequest{week(weekOfJuly1, true, pick(f.monday, 2))}),
		PromoCode: "FREELUNCH",
		Address:   "Somewhere far away",
	})
	require.NoError(t, err)

	assert.Zero(t, quote.Discount)
	assert.Equal(t, "code not found", quote.PromoCodeError)
	assert.False(t, quote.DeliveryAvailable)
	assert.Empty(t, quote.DeliveryZone)
	assert.Equal(t, []string{"code not found", "address is outside delivery area"}, quote.Warnings)
}

func TestQuoteTopLevelItemsComeFromFirstEnabledWeek(t *testing.T) {
	f := newPlannerFixture()

	quote, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, false, pick(f.monday, 1)),
			week(weekOfJuly8, true, pick(f.nextWeek, 1)),
		}),
	})
	require.NoError(t, err)

	require.Len(t, quote.Items, 1)
	assert.Equal(t, f.nextWeek, quote.Items[0].OfferID)
	assert.Equal(t, "GEL", quote.Currency)
}

func TestQuoteIsRepeatable(t *testing.T) {
	f := newPlannerFixture()
	req := services.QuoteRequest{
		Plan: services.WeeklyPlan([]models.PlannerWeekRequest{
			week(weekOfJuly1, true, pick(f.monday, 2), pick(f.limited, 4)),
			week(weekOfJuly15, true, pick(f.monday, 1)),
		}),
		PromoCode: "TEAM15",
		Address:   "New Boulevard 3",
	}

	first, err := f.planner.Quote(context.Background(), req)
	require.NoError(t, err)
	second, err := f.planner.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestQuotePropagatesCatalogFailure(t *testing.T) {
	f := newPlannerFixture()
	f.catalog.Err = errors.New("catalog unavailable")

	_, err := f.planner.Quote(context.Background(), services.QuoteRequest{
		Plan: services.FlatPlan([]models.PlannerSelection{pick(f.monday, 1)}),
	})
	require.Error(t, err)
	assert.False(t, services.IsDomainError(err))
}

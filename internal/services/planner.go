package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/models"
)

// PlanInput is either a flat selection list or an explicit list of week
// requests. Build it with FlatPlan or WeeklyPlan.
type PlanInput struct {
	flat   []models.PlannerSelection
	weeks  []models.PlannerWeekRequest
	weekly bool
}

// FlatPlan is a single implicit week in which every offer is priced for
// whatever week it belongs to.
func FlatPlan(selections []models.PlannerSelection) PlanInput {
	return PlanInput{flat: selections}
}

func WeeklyPlan(weeks []models.PlannerWeekRequest) PlanInput {
	return PlanInput{weeks: weeks, weekly: true}
}

// weekRequests returns a copy of the plan with every explicit week start
// moved to its Monday.
func (p PlanInput) weekRequests() []models.PlannerWeekRequest {
	if !p.weekly {
		return []models.PlannerWeekRequest{{Enabled: true, Selections: p.flat}}
	}
	out := make([]models.PlannerWeekRequest, len(p.weeks))
	for i, week := range p.weeks {
		if week.WeekStart != nil {
			monday := models.MondayOf(*week.WeekStart)
			week.WeekStart = &monday
		}
		out[i] = week
	}
	return out
}

type QuoteRequest struct {
	Plan      PlanInput
	PromoCode string
	Address   string
}

// PlannerQuote is the priced result of a plan. Items and Currency mirror the
// first enabled week.
type PlannerQuote struct {
	Items             []models.PlannerLine      `json:"items"`
	Subtotal          int64                     `json:"subtotal"`
	Discount          int64                     `json:"discount"`
	Total             int64                     `json:"total"`
	Currency          string                    `json:"currency"`
	Warnings          []string                  `json:"warnings"`
	PromoCode         string                    `json:"promoCode,omitempty"`
	PromoCodeError    string                    `json:"promoCodeError,omitempty"`
	DeliveryZone      string                    `json:"deliveryZone,omitempty"`
	DeliveryAvailable bool                      `json:"deliveryAvailable"`
	Weeks             []models.PlannerWeekQuote `json:"weeks"`
}

// Planner prices multi-week portion selections against catalog offers. It
// never writes anything.
type Planner struct {
	catalog CatalogReader
	rules   PricingRules
}

func NewPlanner(catalog CatalogReader, rules PricingRules) *Planner {
	return &Planner{catalog: catalog, rules: rules}
}

func (p *Planner) Quote(ctx context.Context, req QuoteRequest) (PlannerQuote, error) {
	requests := req.Plan.weekRequests()
	if len(requests) == 0 {
		return PlannerQuote{}, ValidationError{Field: "weeks", Message: "at least one week is required"}
	}
	for _, week := range requests {
		for _, selection := range week.Selections {
			if selection.Portions < 0 {
				return PlannerQuote{}, ValidationError{Field: "selections", Message: "portions cannot be negative"}
			}
		}
	}

	offers, weeks, err := p.resolve(ctx, requests)
	if err != nil {
		return PlannerQuote{}, err
	}

	quote := PlannerQuote{
		Currency: p.rules.Currency,
		Items:    []models.PlannerLine{},
		Warnings: []string{},
		Weeks:    make([]models.PlannerWeekQuote, 0, len(requests)),
	}
	for _, request := range requests {
		week := p.quoteWeek(request, offers, weeks)
		if week.Enabled {
			quote.Subtotal += week.Subtotal
		}
		quote.Weeks = append(quote.Weeks, week)
	}

	promo := p.rules.ApplyPromo(req.PromoCode, quote.Subtotal)
	quote.PromoCode = promo.Code
	quote.PromoCodeError = promo.Error
	quote.Discount = promo.Discount
	quote.Total = max(quote.Subtotal-quote.Discount, 0)

	zone := p.rules.ResolveZone(req.Address)
	quote.DeliveryZone = zone.Zone
	quote.DeliveryAvailable = zone.Available

	primary := quote.Weeks[0]
	for _, week := range quote.Weeks {
		if week.Enabled {
			primary = week
			break
		}
	}
	quote.Items = primary.Items
	quote.Currency = primary.Currency

	for _, week := range quote.Weeks {
		quote.Warnings = append(quote.Warnings, week.Warnings...)
	}
	if promo.Error != "" {
		quote.Warnings = append(quote.Warnings, promo.Error)
	}
	if zone.Warning != "" {
		quote.Warnings = append(quote.Warnings, zone.Warning)
	}

	log.WithFields(log.Fields{
		"component": "planner",
		"weeks":     len(quote.Weeks),
		"subtotal":  quote.Subtotal,
		"discount":  quote.Discount,
	}).Debug("quote computed")

	return quote, nil
}

// resolve loads every referenced offer and week in two batched lookups.
func (p *Planner) resolve(ctx context.Context, requests []models.PlannerWeekRequest) (map[string]models.DayOffer, map[string]models.MenuWeek, error) {
	var (
		offerIDs   []string
		weekStarts []time.Time
		seenOffers = map[string]bool{}
		seenWeeks  = map[string]bool{}
	)
	for _, request := range requests {
		if request.WeekStart != nil {
			key := models.DateKey(*request.WeekStart)
			if !seenWeeks[key] {
				seenWeeks[key] = true
				weekStarts = append(weekStarts, *request.WeekStart)
			}
		}
		if !request.Enabled {
			continue
		}
		for _, selection := range request.Selections {
			if selection.Portions > 0 && !seenOffers[selection.OfferID] {
				seenOffers[selection.OfferID] = true
				offerIDs = append(offerIDs, selection.OfferID)
			}
		}
	}

	offers := map[string]models.DayOffer{}
	if len(offerIDs) > 0 {
		found, err := p.catalog.GetOffersByIDs(ctx, offerIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve offers: %w", err)
		}
		offers = found
	}

	weeks := map[string]models.MenuWeek{}
	if len(weekStarts) > 0 {
		found, err := p.catalog.GetWeeks(ctx, weekStarts)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve weeks: %w", err)
		}
		weeks = found
	}

	return offers, weeks, nil
}

func (p *Planner) quoteWeek(request models.PlannerWeekRequest, offers map[string]models.DayOffer, weeks map[string]models.MenuWeek) models.PlannerWeekQuote {
	week := models.PlannerWeekQuote{
		WeekStart: request.WeekStart,
		Enabled:   request.Enabled,
		Currency:  p.rules.Currency,
		Items:     []models.PlannerLine{},
		Warnings:  []string{},
	}

	menuExists := true
	if request.WeekStart != nil {
		menu, ok := weeks[models.DateKey(*request.WeekStart)]
		menuExists = ok
		week.Label = weekLabel(request.WeekStart, menu.Label)
	} else {
		week.Label = weekLabel(nil, "")
	}

	if !request.Enabled {
		week.MenuStatus = models.MenuDisabled
		return week
	}

	// aggregate duplicates, keeping first-seen order
	var order []string
	portions := map[string]int{}
	for _, selection := range request.Selections {
		if selection.Portions <= 0 {
			continue
		}
		if _, seen := portions[selection.OfferID]; !seen {
			order = append(order, selection.OfferID)
		}
		portions[selection.OfferID] += selection.Portions
	}

	pending := !menuExists
	if len(order) == 0 {
		if pending {
			week.MenuStatus = models.MenuPending
		} else {
			week.MenuStatus = models.MenuEmpty
		}
		return week
	}

	currencySet := false
	for _, offerID := range order {
		offer, found := offers[offerID]
		line := priceLine(offerID, portions[offerID], offer, found, request.WeekStart, pending, p.rules.Currency)
		if found && !currencySet {
			week.Currency = line.Currency
			currencySet = true
		}

		week.Subtotal += line.Subtotal
		week.Items = append(week.Items, line)
		if line.Message != "" {
			week.Warnings = append(week.Warnings, line.Message)
		}
	}

	if pending {
		week.MenuStatus = models.MenuPending
	} else {
		week.MenuStatus = models.MenuPublished
	}
	return week
}

func priceLine(offerID string, requested int, offer models.DayOffer, found bool, weekStart *time.Time, pending bool, fallbackCurrency string) models.PlannerLine {
	line := models.PlannerLine{
		OfferID:           offerID,
		RequestedPortions: requested,
		Currency:          fallbackCurrency,
	}
	if !found {
		line.Status = models.LineMissing
		line.Message = "offer no longer available"
		return line
	}

	line.Day = offer.Day
	line.UnitPrice = offer.PriceAmount
	if offer.Currency != "" {
		line.Currency = offer.Currency
	}

	switch {
	case weekStart != nil && !offer.WeekStart.Equal(*weekStart):
		if !pending {
			line.Status = models.LineMissing
			line.Message = "offer belongs to a different week"
			return line
		}
		line.Status = models.LineReserved
		line.AcceptedPortions = requested
		line.Message = "menu pending: price locked in"
	case offer.Status != models.OfferAvailable:
		line.Status = models.LineStatus(offer.Status)
		line.Message = "day unavailable"
	default:
		capacity, limited := offer.AvailableCapacity()
		switch {
		case limited && capacity <= 0:
			line.Status = models.LineSoldOut
			line.Message = "sold out"
		case limited && requested > capacity:
			line.Status = models.LinePartial
			line.AcceptedPortions = capacity
			line.Message = fmt.Sprintf("only %d portions available", capacity)
		default:
			line.Status = models.LineOK
			line.AcceptedPortions = requested
		}
	}

	line.Subtotal = int64(line.AcceptedPortions) * line.UnitPrice
	return line
}

func weekLabel(weekStart *time.Time, catalogLabel string) string {
	switch {
	case catalogLabel != "":
		return catalogLabel
	case weekStart != nil:
		return "Week of " + weekStart.Format("Jan 2")
	default:
		return "Current week"
	}
}

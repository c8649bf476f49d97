package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/models"
)

type CheckoutRequest struct {
	Plan        PlanInput
	Address     string
	PromoCode   string
	RepeatWeeks bool
	// WeeksCount defaults to the number of planned weeks.
	WeeksCount int
}

type CheckoutWeekSummary struct {
	Index      int               `json:"index"`
	WeekStart  *time.Time        `json:"weekStart,omitempty"`
	Label      string            `json:"label"`
	Enabled    bool              `json:"enabled"`
	MenuStatus models.MenuStatus `json:"menuStatus"`
	Subtotal   int64             `json:"subtotal"`
	Currency   string            `json:"currency"`
	Warnings   []string          `json:"warnings"`
}

type CheckoutResult struct {
	TemplateID        string                `json:"templateId"`
	Subtotal          int64                 `json:"subtotal"`
	Discount          int64                 `json:"discount"`
	Total             int64                 `json:"total"`
	Currency          string                `json:"currency"`
	PromoCode         string                `json:"promoCode,omitempty"`
	PromoCodeError    string                `json:"promoCodeError,omitempty"`
	DeliveryZone      string                `json:"deliveryZone,omitempty"`
	DeliveryAvailable bool                  `json:"deliveryAvailable"`
	Warnings          []string              `json:"warnings"`
	Weeks             []CheckoutWeekSummary `json:"weeks"`
}

// CheckoutService turns an accepted plan into a stored checkout template.
type CheckoutService struct {
	planner   *Planner
	templates TemplateStore
	profiles  ProfileWriter
	clock     Clock
	newID     func() string
}

func NewCheckoutService(planner *Planner, templates TemplateStore, profiles ProfileWriter, clock Clock) *CheckoutService {
	return &CheckoutService{
		planner:   planner,
		templates: templates,
		profiles:  profiles,
		clock:     clock,
		newID:     func() string { return uuid.NewString() },
	}
}

// CreateTemplate re-quotes the plan and stores the template together with
// one row per planned week.
func (s *CheckoutService) CreateTemplate(ctx context.Context, actor Actor, req CheckoutRequest) (*CheckoutResult, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, ValidationError{Field: "address", Message: "delivery address is required"}
	}
	if req.WeeksCount < 0 {
		return nil, ValidationError{Field: "weeksCount", Message: "weeks count cannot be negative"}
	}

	quote, err := s.planner.Quote(ctx, QuoteRequest{
		Plan:      req.Plan,
		PromoCode: req.PromoCode,
		Address:   address,
	})
	if err != nil {
		return nil, err
	}

	hasLines := false
	for _, week := range quote.Weeks {
		if week.Enabled && len(week.Items) > 0 {
			hasLines = true
			break
		}
	}
	if !hasLines {
		return nil, ValidationError{Field: "selections", Message: "select at least one portion in an enabled week"}
	}

	requests := req.Plan.weekRequests()
	weeksCount := req.WeeksCount
	if weeksCount == 0 {
		weeksCount = len(requests)
	}

	template := models.CheckoutTemplate{
		ID:                s.newID(),
		UserID:            actor.UserID,
		BaseWeekStart:     requests[0].WeekStart,
		WeeksCount:        weeksCount,
		RepeatWeeks:       req.RepeatWeeks,
		Address:           address,
		PromoCode:         quote.PromoCode,
		Subtotal:          quote.Subtotal,
		Discount:          quote.Discount,
		Total:             quote.Total,
		Currency:          quote.Currency,
		DeliveryZone:      quote.DeliveryZone,
		DeliveryAvailable: quote.DeliveryAvailable,
		CreatedAt:         s.clock.Now(),
	}
	if quote.PromoCodeError != "" {
		template.PromoCode = ""
	}

	rows := make([]models.CheckoutTemplateWeek, len(quote.Weeks))
	summaries := make([]CheckoutWeekSummary, len(quote.Weeks))
	for i, week := range quote.Weeks {
		selections := requests[i].Selections
		if selections == nil {
			selections = []models.PlannerSelection{}
		}
		rows[i] = models.CheckoutTemplateWeek{
			TemplateID: template.ID,
			WeekIndex:  i,
			WeekStart:  week.WeekStart,
			Label:      week.Label,
			Enabled:    week.Enabled,
			MenuStatus: week.MenuStatus,
			Subtotal:   week.Subtotal,
			Currency:   week.Currency,
			Selections: selections,
			Items:      week.Items,
			Warnings:   week.Warnings,
		}
		summaries[i] = CheckoutWeekSummary{
			Index:      i,
			WeekStart:  week.WeekStart,
			Label:      week.Label,
			Enabled:    week.Enabled,
			MenuStatus: week.MenuStatus,
			Subtotal:   week.Subtotal,
			Currency:   week.Currency,
			Warnings:   week.Warnings,
		}
	}

	if err := s.templates.CreateTemplate(ctx, template, rows); err != nil {
		return nil, fmt.Errorf("store checkout template: %w", err)
	}

	if s.profiles != nil {
		if err := s.profiles.UpdateAddressPhone(ctx, actor.UserID, &address, nil); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"component": "checkout",
				"userId":    actor.UserID,
			}).Warn("failed to update user profile")
		}
	}

	log.WithFields(log.Fields{
		"component":  "checkout",
		"templateId": template.ID,
		"userId":     actor.UserID,
		"weeks":      len(rows),
		"total":      template.Total,
	}).Info("checkout template created")

	return &CheckoutResult{
		TemplateID:        template.ID,
		Subtotal:          quote.Subtotal,
		Discount:          quote.Discount,
		Total:             quote.Total,
		Currency:          quote.Currency,
		PromoCode:         quote.PromoCode,
		PromoCodeError:    quote.PromoCodeError,
		DeliveryZone:      quote.DeliveryZone,
		DeliveryAvailable: quote.DeliveryAvailable,
		Warnings:          quote.Warnings,
		Weeks:             summaries,
	}, nil
}

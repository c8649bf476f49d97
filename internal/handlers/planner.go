package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
)

/* =========================
   REQUEST DTOs
========================= */

type selectionRequest struct {
	OfferID  string `json:"offerId" binding:"required"`
	Portions int    `json:"portions" binding:"min=0"`
}

type weekRequest struct {
	WeekStart  string             `json:"weekStart"`
	Enabled    *bool              `json:"enabled"`
	Selections []selectionRequest `json:"selections" binding:"omitempty,dive"`
}

// quoteRequest carries either a flat selection list or explicit weeks.
type quoteRequest struct {
	Selections []selectionRequest `json:"selections" binding:"omitempty,dive"`
	Weeks      []weekRequest      `json:"weeks" binding:"omitempty,dive"`
	PromoCode  string             `json:"promoCode" binding:"max=32"`
	Address    string             `json:"address" binding:"max=300"`
}

type checkoutRequest struct {
	Selections  []selectionRequest `json:"selections" binding:"omitempty,dive"`
	Weeks       []weekRequest      `json:"weeks" binding:"omitempty,dive"`
	PromoCode   string             `json:"promoCode" binding:"max=32"`
	Address     string             `json:"address" binding:"max=300"`
	RepeatWeeks bool               `json:"repeatWeeks"`
	WeeksCount  int                `json:"weeksCount"`
}

func (r checkoutRequest) plan() (services.PlanInput, error) {
	return quoteRequest{Selections: r.Selections, Weeks: r.Weeks}.plan()
}

func toSelections(in []selectionRequest) []models.PlannerSelection {
	out := make([]models.PlannerSelection, 0, len(in))
	for _, s := range in {
		out = append(out, models.PlannerSelection{OfferID: strings.TrimSpace(s.OfferID), Portions: s.Portions})
	}
	return out
}

func (r quoteRequest) plan() (services.PlanInput, error) {
	if r.Weeks == nil {
		return services.FlatPlan(toSelections(r.Selections)), nil
	}
	if len(r.Selections) > 0 {
		return services.PlanInput{}, services.ValidationError{Field: "weeks", Message: "send either selections or weeks"}
	}

	weeks := make([]models.PlannerWeekRequest, 0, len(r.Weeks))
	for i, w := range r.Weeks {
		week := models.PlannerWeekRequest{
			Enabled:    w.Enabled == nil || *w.Enabled,
			Selections: toSelections(w.Selections),
		}
		if strings.TrimSpace(w.WeekStart) != "" {
			parsed, err := models.ParseDate(w.WeekStart)
			if err != nil {
				return services.PlanInput{}, services.ValidationError{
					Field:   "weeks[" + strconv.Itoa(i) + "].weekStart",
					Message: "expected YYYY-MM-DD",
				}
			}
			monday := models.MondayOf(parsed)
			week.WeekStart = &monday
		}
		weeks = append(weeks, week)
	}
	return services.WeeklyPlan(weeks), nil
}

/* =========================
   PLANNER
========================= */

func QuoteOrder(quoter Quoter) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/calc"
		defer handlePanic(c, route)

		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, route, err)
			return
		}
		plan, err := req.plan()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		quote, err := quoter.Quote(ctx, services.QuoteRequest{
			Plan:      plan,
			PromoCode: req.PromoCode,
			Address:   req.Address,
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

func Checkout(templates TemplateCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/checkout"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, route, err)
			return
		}
		plan, err := req.plan()
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*requestTimeout)
		defer cancel()

		result, err := templates.CreateTemplate(ctx, actor, services.CheckoutRequest{
			Plan:        plan,
			Address:     req.Address,
			PromoCode:   req.PromoCode,
			RepeatWeeks: req.RepeatWeeks,
			WeeksCount:  req.WeeksCount,
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

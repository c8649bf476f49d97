package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
)

/* =========================
   RESPONSE DTOs
========================= */

type windowResponse struct {
	NextWeekEnabled bool      `json:"nextWeekEnabled"`
	WeekStart       string    `json:"weekStart,omitempty"`
	Note            string    `json:"note,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func newWindowResponse(state models.WindowState) windowResponse {
	resp := windowResponse{
		NextWeekEnabled: state.NextWeekEnabled,
		Note:            state.Note,
		UpdatedAt:       state.UpdatedAt,
	}
	if state.WeekStart != nil {
		resp.WeekStart = models.DateKey(*state.WeekStart)
	}
	return resp
}

type dayDecisionResponse struct {
	Day             models.Weekday `json:"day"`
	Allowed         bool           `json:"allowed"`
	Warning         string         `json:"warning,omitempty"`
	IsNextWeek      bool           `json:"isNextWeek"`
	TargetWeekStart string         `json:"targetWeekStart"`
}

/* =========================
   PUBLIC
========================= */

func GetOrderWindow(window OrderWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order-window"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		state, err := window.State(ctx)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newWindowResponse(state))
	}
}

// EvaluateOrderDay tells the client whether an order for :day would be
// accepted right now and which week it would be delivered in.
func EvaluateOrderDay(window OrderWindow, clock services.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order-window/:day"
		defer handlePanic(c, route)

		day, err := models.ParseWeekday(c.Param("day"))
		if err != nil {
			respondDomainError(c, route, services.ValidationError{Field: "day", Message: "unknown day"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		decision, err := window.EvaluateDay(ctx, day, clock.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, dayDecisionResponse{
			Day:             day,
			Allowed:         decision.Allowed,
			Warning:         decision.Warning,
			IsNextWeek:      decision.IsNextWeek,
			TargetWeekStart: models.DateKey(decision.TargetWeekStart),
		})
	}
}

/* =========================
   ADMIN
========================= */

type setWindowRequest struct {
	Enabled   *bool  `json:"enabled" binding:"required"`
	WeekStart string `json:"weekStart"`
	Note      string `json:"note" binding:"max=280"`
}

func SetOrderWindow(window OrderWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/order-window"
		defer handlePanic(c, route)

		var req setWindowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, route, err)
			return
		}

		var weekStart *time.Time
		if strings.TrimSpace(req.WeekStart) != "" {
			parsed, err := models.ParseDate(req.WeekStart)
			if err != nil {
				respondDomainError(c, route, services.ValidationError{Field: "weekStart", Message: "expected YYYY-MM-DD"})
				return
			}
			weekStart = &parsed
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		state, err := window.SetWindow(ctx, *req.Enabled, weekStart, strings.TrimSpace(req.Note))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newWindowResponse(state))
	}
}

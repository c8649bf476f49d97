package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderRequest struct {
	Day     string `json:"day" binding:"required"`
	Count   int    `json:"count"`
	Address string `json:"address" binding:"max=300"`
	Phone   string `json:"phone" binding:"max=32"`
}

type updateOrderRequest struct {
	Count   *int    `json:"count"`
	Address *string `json:"address" binding:"omitempty,max=300"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// orderResponse adds the derived total to the stored order.
type orderResponse struct {
	models.Order
	Total int64 `json:"total"`
}

func newOrderResponse(order models.Order) orderResponse {
	return orderResponse{Order: order, Total: order.Total()}
}

func newOrderList(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, newOrderResponse(order))
	}
	return out
}

/* =========================
   CUSTOMER
========================= */

func CreateOrder(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := orders.Create(ctx, actor, services.OrderDraft{
			Day:     req.Day,
			Count:   req.Count,
			Address: req.Address,
			Phone:   strings.TrimSpace(req.Phone),
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, newOrderResponse(*order))
	}
}

// ListMyOrders pages through the caller's order history, newest first.
func ListMyOrders(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		pageReq, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		result, err := orders.ListForUser(ctx, actor, pageReq)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders":     newOrderList(result.Orders),
			"pagination": page{Page: result.Page, Limit: result.Limit, Total: result.Total},
		})
	}
}

func GetOrder(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := orders.Get(ctx, actor, c.Param("id"))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(*order))
	}
}

func UpdateOrder(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := orders.Update(ctx, actor, c.Param("id"), services.OrderPatch{
			Count:   req.Count,
			Address: req.Address,
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(*order))
	}
}

// CancelOrder serves both the customer and the admin route; the service
// picks the resulting status from the actor.
func CancelOrder(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := orders.Cancel(ctx, actor, c.Param("id"))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(*order))
	}
}

/* =========================
   ADMIN
========================= */

// ListWeekOrders lists a delivery week for the kitchen. ?status= takes a
// comma separated filter.
func ListWeekOrders(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		week, err := parseWeekParam(c.Query("week"))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		list, err := orders.ListForWeek(ctx, actor, week, parseStatuses(c.Query("status")))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"weekStart": models.DateKey(models.MondayOf(week)),
			"orders":    newOrderList(list),
		})
	}
}

func SetOrderStatus(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		actor, ok := actorFrom(c, route)
		if !ok {
			return
		}

		var req setStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindingError(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		status := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		order, err := orders.SetStatus(ctx, actor, c.Param("id"), status)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newOrderResponse(*order))
	}
}

func parseStatuses(raw string) []models.OrderStatus {
	var statuses []models.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			statuses = append(statuses, models.OrderStatus(part))
		}
	}
	return statuses
}

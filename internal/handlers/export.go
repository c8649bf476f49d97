package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lunchdesk/internal/models"
	"lunchdesk/internal/report"
)

// ExportWeekOrders streams the week's orders as an xlsx workbook.
func ExportWeekOrders(orders Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/export"
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
		weekStart := models.MondayOf(week)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		list, err := orders.ListForWeek(ctx, actor, weekStart, nil)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		var buf bytes.Buffer
		if err := report.WeeklyOrders(&buf, weekStart, list); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+report.FileName(weekStart)+`"`)
		c.Data(http.StatusOK, report.ContentType, buf.Bytes())
	}
}

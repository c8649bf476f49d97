package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"lunchdesk/internal/middleware"
	"lunchdesk/internal/models"
	"lunchdesk/internal/services"
)

const requestTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.WithField("route", route).Errorf("panic recovered: %v", r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.WithFields(log.Fields{"route": route, "status": status}).Info(message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondDomainError maps the service error taxonomy onto HTTP statuses.
// Anything that is not a typed domain error is an internal failure.
func respondDomainError(c *gin.Context, route string, err error) {
	if !services.IsDomainError(err) {
		log.WithField("route", route).WithError(err).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var (
		validation services.ValidationError
		closed     services.OrderWindowClosedError
		duplicate  services.DuplicateOrderError
		notFound   services.OrderNotFoundError
		forbidden  services.ForbiddenOrderActionError
		limited    services.RateLimitedError
	)

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": validation.Message,
			"field": validation.Field,
		})
	case errors.As(err, &closed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": closed.Message,
			"code":  "order_window_closed",
			"day":   closed.Day,
		})
	case errors.As(err, &duplicate):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "you already have an active order for this day",
			"code":      "duplicate_order",
			"orderId":   duplicate.ExistingID,
			"count":     duplicate.ExistingCount,
			"day":       duplicate.Day,
			"weekStart": models.DateKey(duplicate.WeekStart),
		})
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.As(err, &forbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": forbidden.Reason})
	case errors.As(err, &limited):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": limited.Error()})
	}
}

// respondBindingError reports the first failed binding rule in the same
// {field,error} shape services use for validation.
func respondBindingError(c *gin.Context, route string, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		respondDomainError(c, route, services.ValidationError{
			Field:   fieldPath(fe),
			Message: ruleMessage(fe),
		})
		return
	}
	respondWithError(c, http.StatusBadRequest, route, "invalid request body")
}

// fieldPath drops the root struct name from the namespace, which the json
// tag name func turns into e.g. "createOrderRequest.count".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

func actorFrom(c *gin.Context, route string) (services.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
		return services.Actor{}, false
	}
	return actor, true
}

func parseWeekParam(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, services.ValidationError{Field: "week", Message: "is required"}
	}
	week, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, services.ValidationError{Field: "week", Message: "expected YYYY-MM-DD"}
	}
	return week, nil
}

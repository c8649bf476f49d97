package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"lunchdesk/internal/middleware"
	"lunchdesk/internal/services"
)

// RouterDeps is everything the HTTP surface is built from.
type RouterDeps struct {
	Window    OrderWindow
	Orders    Orders
	Quoter    Quoter
	Checkout  TemplateCreator
	Clock     services.Clock
	Ping      func(context.Context) error
	JWTSecret string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/health", Health(deps.Ping))

	r.GET("/order-window", GetOrderWindow(deps.Window))
	r.GET("/order-window/:day", EvaluateOrderDay(deps.Window, deps.Clock))
	r.POST("/orders/calc", QuoteOrder(deps.Quoter))

	user := r.Group("/orders", middleware.UserAuth(deps.JWTSecret))
	{
		user.POST("/checkout", Checkout(deps.Checkout))
		user.POST("", CreateOrder(deps.Orders))
		user.GET("", ListMyOrders(deps.Orders))
		user.GET("/:id", GetOrder(deps.Orders))
		user.PATCH("/:id", UpdateOrder(deps.Orders))
		user.POST("/:id/cancel", CancelOrder(deps.Orders))
	}

	admin := r.Group("/admin/api", middleware.AdminAuth(deps.JWTSecret))
	{
		admin.PUT("/order-window", SetOrderWindow(deps.Window))
		admin.GET("/orders", ListWeekOrders(deps.Orders))
		admin.GET("/orders/export", ExportWeekOrders(deps.Orders))
		admin.PATCH("/orders/:id/status", SetOrderStatus(deps.Orders))
		admin.POST("/orders/:id/cancel", CancelOrder(deps.Orders))
	}

	return r
}

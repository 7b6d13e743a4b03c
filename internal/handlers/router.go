package handlers

import (
	"tabletrack/internal/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	Orders        *OrderHandler
	Tables        *TableHandler
	Products      *ProductHandler
	Notifications *NotificationHandler
	Authorizer    *policy.Authorizer
	Log           *zap.Logger
}

// Engine builds the gin engine with every route registered.
func (r Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(r.Log), Identity())

	router.GET("/healthz", r.Notifications.Health)

	api := router.Group("/", RequireAuth(r.Log))
	{
		orders := api.Group("/orders")
		orders.POST("/open", r.Orders.OpenOrder)
		orders.GET("", r.Orders.ListOrders)
		orders.GET("/count/open", r.Orders.GetOpenOrderCount)
		orders.GET("/stats", r.Orders.GetOrderStats)
		orders.PUT("/:id/status", r.Orders.UpdateOrderStatus)
		orders.PUT("/order-items/:id/status", r.Orders.UpdateOrderItemStatus)

		tables := api.Group("/tables")
		tables.GET("", r.Tables.ListTables)
		tables.GET("/:number", r.Tables.GetTable)
		tables.GET("/:number/details", r.Orders.GetTableDetails)
		tables.POST("", RequireCapability(r.Authorizer, policy.CreateTables, r.Log), r.Tables.CreateTable)
		tables.DELETE("/last", RequireCapability(r.Authorizer, policy.RemoveTables, r.Log), r.Tables.RemoveLastTable)
		tables.PATCH("/:number/status", r.Tables.ToggleStatus)

		products := api.Group("/products")
		products.GET("", r.Products.ListProducts)
		products.POST("", RequireCapability(r.Authorizer, policy.CreateProducts, r.Log), r.Products.CreateProduct)

		api.GET("/notifications/stream", r.Notifications.Stream)
	}

	return router
}

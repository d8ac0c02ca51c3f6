package routes

import (
	"github.com/gin-gonic/gin"

	"dealdesk/internal/authz"
	"dealdesk/internal/handlers"
	"dealdesk/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clientHandler *handlers.ClientHandler,
	dealHandler *handlers.DealHandler,
	estimationHandler *handlers.EstimationHandler,
	orderHandler *handlers.SalesOrderHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", userHandler.Register)

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	r.POST("/logout", authHandler.Logout)

	// USERS (admin)
	users := r.Group("/users", middleware.RequireRoles(authz.RoleAdmin))
	{
		users.GET("/", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUserByID)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	// CLIENTS
	clients := r.Group("/clients")
	{
		clients.POST("/", clientHandler.Create)
		clients.GET("/", clientHandler.List)
		clients.GET("/:id", clientHandler.GetByID)
		clients.PUT("/:id", clientHandler.Update)
	}

	// DEALS
	deals := r.Group("/deals")
	{
		deals.POST("/", dealHandler.Create)
		deals.GET("/", dealHandler.List)
		deals.GET("/:id", dealHandler.GetByID)
		deals.PUT("/:id", dealHandler.Update)
		deals.DELETE("/:id", dealHandler.Delete)
		deals.POST("/:id/status", dealHandler.MoveStage)
		deals.GET("/:id/activity", dealHandler.Activity)
		deals.POST("/:id/win", orderHandler.Finalize)
	}

	// ESTIMATIONS
	estimations := r.Group("/estimations")
	{
		estimations.POST("/", estimationHandler.Create)
		estimations.GET("/:id", estimationHandler.GetByID)
		estimations.GET("/deal/:dealid", estimationHandler.LatestByDeal)
		estimations.POST("/:id/approve",
			middleware.RequireRoles(authz.RoleManager, authz.RoleExecutive, authz.RoleAdmin),
			estimationHandler.Approve)
		estimations.POST("/:id/discount/request", estimationHandler.RequestDiscount)
		estimations.POST("/:id/discount/decide",
			middleware.RequireRoles(authz.RoleExecutive),
			estimationHandler.DecideDiscount)
	}

	// SALES ORDERS
	orders := r.Group("/orders")
	{
		orders.GET("/:id", orderHandler.GetByID)
		orders.GET("/deal/:dealid", orderHandler.GetByDeal)
	}

	// REPORTS (audit/manager/executive/admin)
	reports := r.Group("/reports",
		middleware.RequireRoles(authz.RoleAudit, authz.RoleManager, authz.RoleExecutive, authz.RoleAdmin),
	)
	{
		reports.GET("/summary", reportHandler.GetSummary)
	}

	return r
}

package router

import (
	"github.com/Archanasadhasivam/AgriPricePredict/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired, adminOnly, selfOrAdmin, credentialLimiter echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register, credentialLimiter)
	users.POST("/login", handler.Login, credentialLimiter)
	users.POST("/refresh-token", handler.RefreshToken, credentialLimiter)
	users.POST("/logout", handler.Logout, authRequired)

	users.PUT("/:id", handler.UpdateUser, authRequired, selfOrAdmin)
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupAlertRoutes(api *echo.Group, handler *rest.AlertHandler, authRequired echo.MiddlewareFunc) {
	alerts := api.Group("/alerts", authRequired)

	alerts.GET("", handler.ListAlerts)
	alerts.POST("", handler.SetAlert)
	alerts.DELETE("/:id", handler.DeleteAlert)
}

func SetupTrendRoutes(api *echo.Group, handler *rest.TrendHandler, authRequired echo.MiddlewareFunc) {
	trends := api.Group("/trends", authRequired)

	trends.GET("", handler.GetTrend)
	trends.GET("/products", handler.ListProducts)
}

func SetupPredictionRoutes(api *echo.Group, handler *rest.PredictionHandler, authRequired echo.MiddlewareFunc) {
	predictions := api.Group("/predictions", authRequired)

	predictions.POST("", handler.PredictPrice)
	predictions.GET("", handler.ListPredictions)
	predictions.GET("/commodities", handler.Commodities)
}

func SetupOpsRoutes(e *echo.Echo, handler *rest.HealthHandler) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

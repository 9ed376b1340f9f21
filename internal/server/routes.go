package server

import (
	"github.com/labstack/echo/v4"

	"github.com/jfrancis537/budget-oracle-sub000/internal/handlers"
)

type routeHandlers struct {
	health        echo.HandlerFunc
	bills         *handlers.BillHandler
	incomes       *handlers.IncomeHandler
	debts         *handlers.LedgerHandler
	accounts      *handlers.LedgerHandler
	investments   *handlers.InvestmentHandler
	schedules     *handlers.ScheduleHandler
	projection    *handlers.ProjectionHandler
	notifications *handlers.NotificationHandler
}

func registerRoutes(e *echo.Echo, h routeHandlers, authMiddleware, apiRateLimiter echo.MiddlewareFunc) {
	e.GET("/health", h.health)

	api := e.Group("/api/v1", apiRateLimiter, authMiddleware)

	bills := api.Group("/bills")
	bills.GET("", h.bills.List)
	bills.POST("", h.bills.Create)
	bills.PUT("/:id", h.bills.Update)
	bills.DELETE("/:id", h.bills.Delete)

	incomes := api.Group("/incomes")
	incomes.GET("", h.incomes.List)
	incomes.POST("", h.incomes.Create)
	incomes.PUT("/:id", h.incomes.Update)
	incomes.DELETE("/:id", h.incomes.Delete)

	debts := api.Group("/debts")
	debts.GET("", h.debts.List)
	debts.POST("", h.debts.Create)
	debts.PUT("/:id", h.debts.Update)
	debts.DELETE("/:id", h.debts.Delete)

	accounts := api.Group("/accounts")
	accounts.GET("", h.accounts.List)
	accounts.POST("", h.accounts.Create)
	accounts.PUT("/:id", h.accounts.Update)
	accounts.DELETE("/:id", h.accounts.Delete)

	investments := api.Group("/investments")
	investments.GET("", h.investments.List)
	investments.POST("", h.investments.Create)
	investments.PUT("/:id", h.investments.Update)
	investments.DELETE("/:id", h.investments.Delete)

	payments := api.Group("/payment-schedules")
	payments.GET("", h.schedules.ListPaymentSchedules)
	payments.POST("", h.schedules.CreatePaymentSchedule)
	payments.DELETE("/:id", h.schedules.DeletePaymentSchedule)
	payments.POST("/:id/payments", h.schedules.AddPayment)
	payments.DELETE("/:id/payments/:entryId", h.schedules.DeletePayment)

	vests := api.Group("/vest-schedules")
	vests.GET("", h.schedules.ListVestSchedules)
	vests.POST("", h.schedules.CreateVestSchedule)
	vests.DELETE("/:id", h.schedules.DeleteVestSchedule)
	vests.POST("/:id/vests", h.schedules.AddVest)
	vests.DELETE("/:id/vests/:entryId", h.schedules.DeleteVest)

	projection := api.Group("/projection")
	projection.GET("", h.projection.Get)
	projection.GET("/latest", h.projection.Latest)
	projection.GET("/end-date", h.projection.GetEndDate)
	projection.PUT("/end-date", h.projection.SetEndDate)
	projection.GET("/stream", h.notifications.Stream)
}

package handler

import (
	"github.com/clarityledger/clarity-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, transactionHandler *TransactionHandler, budgetHandler *BudgetHandler, recurringHandler *RecurringHandler, dashboardHandler *DashboardHandler, settingsHandler *SettingsHandler, backupHandler *BackupHandler, scanHandler *ScanHandler, imageHandler *ImageHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/month/:monthYear", budgetHandler.GetBudgetsForMonth)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Recurring template routes
	recurring := api.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.GetRecurring)
	recurring.PUT("/:id", recurringHandler.UpdateRecurring)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)
	recurring.POST("/process", recurringHandler.ProcessRecurring)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/summary/:monthYear", dashboardHandler.GetMonthSummary)

	// Settings routes
	settings := api.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)
	settings.GET("/categories", settingsHandler.GetDefaultCategories)

	// Backup routes
	backup := api.Group("/backup")
	backup.GET("/export", backupHandler.ExportBackup)
	backup.POST("/import", backupHandler.ImportBackup)

	// Scan routes (rate limited, they drive OCR and AI calls)
	scan := api.Group("/scan")
	scan.Use(middleware.RateLimitMiddleware(rateLimiter))
	scan.POST("/sessions", scanHandler.StartScan)
	scan.POST("", scanHandler.Scan)

	// Image routes
	images := api.Group("/images")
	images.POST("", imageHandler.UploadImage)
	images.DELETE("/:id", imageHandler.DeleteImage)

	// WebSocket endpoint
	e.GET("/ws", wsHandler.HandleWS)
}

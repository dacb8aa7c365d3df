package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-resale-ledger/internal/handler"
	"go-resale-ledger/internal/middleware"
	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/service"
	"go-resale-ledger/internal/ws"
	"go-resale-ledger/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{},
		&model.LotCategory{},
		&model.PurchaseLot{},
		&model.Allocation{},
		&model.Sale{},
		&model.SaleLineItem{},
		&model.StockTransfer{},
		&model.ProductPricing{},
		&model.IdempotencyKey{},
		&model.ExpenseCategory{},
		&model.Expense{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	lotRepo := repository.NewLotRepo(db)
	allocRepo := repository.NewAllocationRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	pricingRepo := repository.NewPricingRepo(db)
	userRepo := repository.NewUserRepo(db)
	idemRepo := repository.NewIdempotencyRepo(db)
	reportRepo := repository.NewReportRepo(db)
	categoryRepo := repository.NewLotCategoryRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)

	pricingService := service.NewPricingService(pricingRepo)
	lotService := service.NewLotService(lotRepo, allocRepo, saleRepo, db, wsHub)
	stockService := service.NewStockService(allocRepo, transferRepo, userRepo, idemRepo, db, wsHub)
	saleService := service.NewSaleService(saleRepo, allocRepo, transferRepo, idemRepo, pricingService, db, wsHub)
	exchangeService := service.NewExchangeService(saleRepo, allocRepo, idemRepo, db, wsHub)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo)
	reportService := service.NewReportService(reportRepo, saleRepo)
	categoryService := service.NewLotCategoryService(categoryRepo)
	expenseService := service.NewExpenseService(expenseRepo, db)

	lotHandler := handler.NewLotHandler(lotService)
	stockHandler := handler.NewStockHandler(stockService)
	saleHandler := handler.NewSaleHandler(saleService, exchangeService)
	pricingHandler := handler.NewPricingHandler(pricingService, lotService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	reportHandler := handler.NewReportHandler(reportService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	expenseHandler := handler.NewExpenseHandler(expenseService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Resale Ledger v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Get("/validate", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	admin := middleware.RequireAdmin()

	// Purchase lots (admin manages the catalog)
	protected.Get("/lots", lotHandler.GetLots)
	protected.Get("/lots/:id", lotHandler.GetLot)
	protected.Post("/lots", admin, lotHandler.CreateLot)
	protected.Patch("/lots/:id", admin, lotHandler.UpdateLot)
	protected.Put("/lots/:id/tier-prices", admin, lotHandler.UpdateTierPrices)
	protected.Delete("/lots/:id", admin, lotHandler.DeleteLot)

	// Lot categories
	protected.Get("/lot-categories", categoryHandler.GetCategories)
	protected.Post("/lot-categories", admin, categoryHandler.CreateCategory)
	protected.Put("/lot-categories/:id", admin, categoryHandler.UpdateCategory)
	protected.Delete("/lot-categories/:id", admin, categoryHandler.DeleteCategory)

	// Stock movement
	protected.Post("/stock/distribute", admin, stockHandler.Distribute)
	protected.Post("/stock/redistribute", admin, stockHandler.Redistribute)
	protected.Post("/stock/adjust", admin, stockHandler.Adjust)
	protected.Get("/stock/pool", admin, stockHandler.GetPool)
	protected.Get("/stock/overview", admin, stockHandler.GetOverview)
	protected.Get("/stock/transfers", admin, stockHandler.GetTransfers)
	protected.Get("/stock/sellers/:id", stockHandler.GetSellerStock)

	// Sales
	protected.Post("/sales", saleHandler.CreateSale)
	protected.Get("/sales", saleHandler.GetSales)
	protected.Get("/sales/:id", saleHandler.GetSale)
	protected.Patch("/sales/:id/lines/:lineId", admin, saleHandler.CorrectLine)
	protected.Post("/sales/:id/lines/:lineId/exchange", admin, saleHandler.ExchangeLine)
	protected.Delete("/sales/:id/lines/:lineId", admin, saleHandler.DeleteLine)
	protected.Delete("/sales/:id", admin, saleHandler.DeleteSale)

	// Product price table
	protected.Get("/pricings", pricingHandler.GetPricings)
	protected.Get("/pricings/resolve", pricingHandler.ResolvePrice)
	protected.Put("/pricings", admin, pricingHandler.UpsertPricing)

	// Operating expenses
	protected.Get("/expense-categories", admin, expenseHandler.GetCategories)
	protected.Post("/expense-categories", admin, expenseHandler.CreateCategory)
	protected.Put("/expense-categories/:id", admin, expenseHandler.UpdateCategory)
	protected.Delete("/expense-categories/:id", admin, expenseHandler.DeleteCategory)
	protected.Get("/expenses", admin, expenseHandler.GetExpenses)
	protected.Post("/expenses", admin, expenseHandler.CreateExpense)
	protected.Patch("/expenses/:id", admin, expenseHandler.UpdateExpense)
	protected.Delete("/expenses/:id", admin, expenseHandler.DeleteExpense)

	// Users
	protected.Get("/users", admin, userHandler.GetUsers)
	protected.Get("/users/sellers", userHandler.GetSellers)
	protected.Get("/users/:id", admin, userHandler.GetUser)
	protected.Post("/users", admin, userHandler.CreateUser)
	protected.Put("/users/:id", admin, userHandler.UpdateUser)

	// Reports
	protected.Get("/reports/stock", admin, reportHandler.GetStockStats)
	protected.Get("/reports/sales-movement", admin, reportHandler.GetSalesMovement)
	protected.Get("/reports/revenue", admin, reportHandler.GetRevenueSummary)
	protected.Get("/reports/sellers", admin, reportHandler.GetSellerSummaries)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default owner account on first boot.
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Administrator",
		IsAdmin:  true,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Println("Admin user created: admin@example.com / admin123")
}

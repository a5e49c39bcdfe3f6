package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Income-Clarity-Backend/internal/api/middleware"
	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	System         *service.SystemService
	Users          *service.UserService
	Portfolios     *service.PortfolioService
	Holdings       *service.HoldingService
	Income         *service.IncomeService
	Expenses       *service.ExpenseService
	Tax            *service.TaxProfileService
	Accounts       *service.SyncedAccountService
	SuperCards     *service.SuperCardService
	Reconciliation *service.ReconciliationService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(custommiddleware.NewCORS(cfg.CORS))

	systemHandler := handlers.NewSystemHandler(svc.System)
	userHandler := handlers.NewUserHandler(svc.Users)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolios, svc.Holdings)
	holdingHandler := handlers.NewHoldingHandler(svc.Holdings)
	incomeHandler := handlers.NewIncomeHandler(svc.Income)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses)
	taxHandler := handlers.NewTaxHandler(svc.Tax)
	accountHandler := handlers.NewAccountHandler(svc.Accounts)
	superCardHandler := handlers.NewSuperCardHandler(svc.SuperCards)
	reconcileHandler := handlers.NewReconcileHandler(svc.Reconciliation)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Get("/tax/jurisdiction", taxHandler.Jurisdictions)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.Users)
			r.Post("/", userHandler.CreateUser)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", userHandler.GetUser)
				r.Put("/", userHandler.UpdateUser)
				r.Delete("/", userHandler.DeleteUser)

				r.Route("/portfolio", func(r chi.Router) {
					r.Get("/", portfolioHandler.Portfolios)
					r.Post("/", portfolioHandler.CreatePortfolio)
					r.Route("/{portfolioId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateUUIDParams("portfolioId"))
						r.Get("/", portfolioHandler.GetPortfolio)
						r.Put("/", portfolioHandler.UpdatePortfolio)
						r.Delete("/", portfolioHandler.DeletePortfolio)
						r.Get("/holding", portfolioHandler.PortfolioHoldings)
					})
				})

				r.Route("/holding", func(r chi.Router) {
					r.Get("/", holdingHandler.Holdings)
					r.Post("/", holdingHandler.CreateHolding)
					r.Route("/{holdingId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateUUIDParams("holdingId"))
						r.Get("/", holdingHandler.GetHolding)
						r.Put("/", holdingHandler.UpdateHolding)
						r.Delete("/", holdingHandler.DeleteHolding)
					})
				})

				r.Route("/income", func(r chi.Router) {
					r.Get("/", incomeHandler.Income)
					r.Post("/", incomeHandler.CreateIncome)
					r.Post("/import", incomeHandler.ImportIncome)
					r.Route("/{incomeId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateUUIDParams("incomeId"))
						r.Get("/", incomeHandler.GetIncome)
						r.Delete("/", incomeHandler.DeleteIncome)
					})
				})

				r.Route("/expense", func(r chi.Router) {
					r.Get("/", expenseHandler.Expenses)
					r.Post("/", expenseHandler.CreateExpense)
					r.Route("/{expenseId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateUUIDParams("expenseId"))
						r.Get("/", expenseHandler.GetExpense)
						r.Delete("/", expenseHandler.DeleteExpense)
					})
				})

				r.Route("/tax-profile", func(r chi.Router) {
					r.Get("/", taxHandler.GetTaxProfile)
					r.Put("/", taxHandler.SetTaxProfile)
					r.Delete("/", taxHandler.DeleteTaxProfile)
				})

				r.Route("/account", func(r chi.Router) {
					r.Get("/", accountHandler.Accounts)
					r.Post("/", accountHandler.LinkAccount)
					r.Route("/{accountId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateUUIDParams("accountId"))
						r.Get("/", accountHandler.GetAccount)
						r.Delete("/", accountHandler.UnlinkAccount)
						r.Post("/sync", accountHandler.SyncAccount)
					})
				})

				r.Route("/supercards", func(r chi.Router) {
					r.Get("/", superCardHandler.SuperCards)
					r.Get("/{card}", superCardHandler.SuperCard)
				})

				r.Route("/reconcile", func(r chi.Router) {
					r.Post("/", reconcileHandler.Apply)
					r.Get("/candidates", reconcileHandler.Candidates)
					r.Post("/auto", reconcileHandler.Auto)
					r.Get("/history", reconcileHandler.History)
					r.Route("/{reconciliationId}", func(r chi.Router) {
						r.Use(custommiddleware.ValidateUUIDParams("reconciliationId"))
						r.Get("/", reconcileHandler.GetReconciliation)
						r.Post("/undo", reconcileHandler.Undo)
					})
				})
			})
		})
	})

	return r
}

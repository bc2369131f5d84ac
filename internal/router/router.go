package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/federicogioffre/finance-tracker/internal/accounts"
	"github.com/federicogioffre/finance-tracker/internal/admin"
	"github.com/federicogioffre/finance-tracker/internal/budgets"
	"github.com/federicogioffre/finance-tracker/internal/categories"
	"github.com/federicogioffre/finance-tracker/internal/imports"
	"github.com/federicogioffre/finance-tracker/internal/reports"
	"github.com/federicogioffre/finance-tracker/internal/summary"
	"github.com/federicogioffre/finance-tracker/internal/transactions"
	"github.com/federicogioffre/finance-tracker/internal/users"
)

type Router struct {
	UsersHandler        *users.Handler
	AccountsHandler     *accounts.Handler
	TransactionsHandler *transactions.Handler
	SummaryHandler      *summary.Handler
	CategoriesHandler   *categories.Handler
	BudgetsHandler      *budgets.Handler
	ImportHandler       *imports.Handler
	ReportsHandler      *reports.Handler
	AdminHandler        *admin.Handler
	AuthMW              fiber.Handler
	WriteMW             fiber.Handler
	AdminMW             fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	write := r.WriteMW
	if write == nil {
		write = func(c *fiber.Ctx) error { return c.Next() }
	}

	if r.UsersHandler != nil {
		app.Post("/api/auth/signup", RateLimitAuth(), r.UsersHandler.Signup)
		app.Post("/api/auth/login", RateLimitAuth(), r.UsersHandler.Login)
		app.Get("/api/me", r.AuthMW, r.UsersHandler.Me)
	}

	if r.AdminHandler != nil && r.AdminMW != nil {
		app.Get("/admin/overview", r.AdminMW, r.AdminHandler.Overview)
	}

	api := app.Group("/api", r.AuthMW)

	if r.AccountsHandler != nil {
		api.Get("/accounts", r.AccountsHandler.List)
		api.Post("/accounts", write, r.AccountsHandler.Create)
		api.Get("/accounts/:id", r.AccountsHandler.Get)
		api.Put("/accounts/:id", write, r.AccountsHandler.Update)
		api.Delete("/accounts/:id", write, r.AccountsHandler.Delete)
	}

	if r.ReportsHandler != nil {
		api.Get("/accounts/:id/statement", r.ReportsHandler.Statement)
		api.Get("/accounts/:id/statement.pdf", r.ReportsHandler.StatementPDF)
		api.Get("/reports/daily", r.ReportsHandler.Daily)
		api.Get("/reports/categories", r.ReportsHandler.Categories)
	}

	// summary must be registered before /transactions/:id
	if r.SummaryHandler != nil {
		api.Get("/transactions/summary", r.SummaryHandler.GetSummary)
	}

	if r.TransactionsHandler != nil {
		api.Get("/transactions", r.TransactionsHandler.List)
		api.Post("/transactions", write, r.TransactionsHandler.Create)
		api.Get("/transactions/:id", r.TransactionsHandler.Get)
		api.Patch("/transactions/:id", write, r.TransactionsHandler.Update)
		api.Delete("/transactions/:id", write, r.TransactionsHandler.Delete)
	}

	if r.CategoriesHandler != nil {
		api.Get("/categories", r.CategoriesHandler.List)
		api.Post("/categories", write, r.CategoriesHandler.Create)
	}

	if r.BudgetsHandler != nil {
		api.Get("/budgets", r.BudgetsHandler.List)
		api.Post("/budgets", write, r.BudgetsHandler.Create)
		api.Put("/budgets/:id", write, r.BudgetsHandler.Update)
		api.Delete("/budgets/:id", write, r.BudgetsHandler.Delete)
	}

	if r.ImportHandler != nil {
		api.Post("/import/inspect", r.ImportHandler.Inspect)
		api.Post("/import/preview", r.ImportHandler.Preview)
		api.Post("/import/confirm", write, r.ImportHandler.Confirm)
	}
}

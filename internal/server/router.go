package server

import (
	"context"
	"net/http"

	"brewcost/internal/handlers"
	applog "brewcost/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)

	protect := func(h http.HandlerFunc) http.Handler {
		return handlers.RequireAuthentication(h)
	}

	mux.Handle("/api/ingredients", protect(handlers.IngredientResource))
	mux.Handle("/api/ingredients/", protect(handlers.IngredientResource))
	mux.Handle("/api/recipes", protect(handlers.RecipeResource))
	mux.Handle("/api/recipes/", protect(handlers.RecipeResource))
	mux.Handle("/api/unresolved", protect(handlers.Unresolved))
	mux.Handle("/api/reload", protect(handlers.Reload))

	mux.Handle("/api/summary", protect(handlers.FinancialSummary))
	mux.Handle("/api/metrics", protect(handlers.FinancialMetrics))
	mux.Handle("/api/benchmarks", protect(handlers.Benchmarks))
	mux.Handle("/api/income-statements", protect(handlers.IncomeStatements))
	mux.Handle("/api/balance-sheets", protect(handlers.BalanceSheets))
	mux.Handle("/api/expense-breakdown", protect(handlers.ExpenseBreakdown))
	mux.Handle("/api/debt-progress", protect(handlers.DebtProgress))
	mux.Handle("/api/cash-flow-health", protect(handlers.CashFlowHealth))

	mux.Handle("/api/pos/status", protect(handlers.POSStatus))
	mux.Handle("/api/pos/labor", protect(handlers.POSLabor))
	mux.Handle("/api/pos/team", protect(handlers.POSTeam))
	mux.Handle("/api/pos/product-mix", protect(handlers.POSProductMix))
	mux.Handle("/api/pos/sales", protect(handlers.POSSales))

	applog.Debug(context.Background(), "http routes registered")
	return mux
}

package main

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/auth"
	"github.com/diewo77/comptable/internal/config"
	"github.com/diewo77/comptable/internal/handlers"
	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/logger"
	"github.com/diewo77/comptable/internal/services"
	"github.com/diewo77/comptable/internal/store"
)

// App wires stores, services and handlers onto one mux.
type App struct {
	mux *http.ServeMux
}

// NewApp builds the full application handler.
func NewApp(conn *gorm.DB, cfg *config.Config) *App {
	profiles := store.NewProfileStore(conn)
	invoices := store.NewInvoiceStore(conn)
	ledger := store.NewLedgerStore(conn)
	inventory := store.NewInventoryStore(conn)

	engine := services.NewInvoiceEngine(conn, invoices, ledger, inventory, logger.WithComponent("engine"))
	reconciler := services.NewSubscriptionReconciler(profiles, logger.WithComponent("subscriptions"))

	storeTimeout := time.Duration(cfg.Server.StoreTimeout) * time.Second
	ah := handlers.NewAuthHandler(profiles, reconciler, cfg, logger.WithComponent("auth"))
	ph := handlers.NewProfileHandler(profiles, cfg)
	ih := handlers.NewInvoiceHandler(engine, invoices, profiles, storeTimeout)
	lh := handlers.NewLedgerHandler(ledger, storeTimeout)
	sh := handlers.NewStockHandler(inventory, storeTimeout)
	ach := handlers.NewAccountHandler(conn, ledger, storeTimeout)
	eh := handlers.NewEmployeeHandler(conn, storeTimeout)
	adh := handlers.NewAdminHandler(profiles, reconciler, cfg, logger.WithComponent("admin"))

	app := &App{mux: http.NewServeMux()}
	m := app.mux

	m.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	m.HandleFunc("POST /signup", ah.Signup)
	m.HandleFunc("POST /login", ah.Login)
	m.HandleFunc("POST /logout", ah.Logout)

	m.Handle("GET /api/profile", protect(ph.Get))
	m.Handle("PUT /api/profile", protect(ph.Update))

	m.Handle("POST /api/invoices/price", protect(ih.Price))
	m.Handle("GET /api/invoices/next-number", protect(ih.NextNumber))
	m.Handle("GET /api/invoices", protect(ih.List))
	m.Handle("POST /api/invoices", protect(ih.Create))
	m.Handle("DELETE /api/invoices/{id}", protect(ih.Delete))

	m.Handle("GET /api/transactions", protect(lh.List))
	m.Handle("POST /api/transactions", protect(lh.Create))
	m.Handle("DELETE /api/transactions/{id}", protect(lh.Delete))

	m.Handle("GET /api/stock", protect(sh.List))
	m.Handle("POST /api/stock", protect(sh.Create))
	m.Handle("POST /api/stock/restock", protect(sh.Restock))
	m.Handle("DELETE /api/stock/{id}", protect(sh.Delete))

	m.Handle("GET /api/accounts", protect(ach.List))
	m.Handle("POST /api/accounts", protect(ach.Create))

	m.Handle("GET /api/employees", protect(eh.List))
	m.Handle("POST /api/employees", protect(eh.Create))

	m.Handle("GET /api/admin/users", protect(adh.ListUsers))
	m.Handle("POST /api/admin/users/{id}/grant", protect(adh.Grant))
	m.Handle("POST /api/admin/users/{id}/revoke", protect(adh.Revoke))
	m.Handle("PUT /api/admin/users/{id}/role", protect(adh.SetRole))
	m.Handle("POST /api/admin/sweep", protect(adh.Sweep))

	return app
}

// ServeHTTP attaches the session context before routing.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}

func protect(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

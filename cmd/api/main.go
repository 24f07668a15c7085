package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/garagedesk/internal/auth"
	"github.com/MrJamesThe3rd/garagedesk/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/garagedesk/internal/catalog/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/config"
	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	customerStore "github.com/MrJamesThe3rd/garagedesk/internal/customer/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/database"
	"github.com/MrJamesThe3rd/garagedesk/internal/document/pdf"
	garagedeskHttp "github.com/MrJamesThe3rd/garagedesk/internal/http"
	authHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/authn"
	catalogHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/catalog"
	customerHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/customer"
	importHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/importcsv"
	inventoryHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/inventory"
	invoiceHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/invoice"
	settingsHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/settings"
	vehicleHandler "github.com/MrJamesThe3rd/garagedesk/internal/http/vehicle"
	"github.com/MrJamesThe3rd/garagedesk/internal/inventory"
	inventoryStore "github.com/MrJamesThe3rd/garagedesk/internal/inventory/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/garagedesk/internal/invoice/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricelist"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricelist/generic"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
	settingsStore "github.com/MrJamesThe3rd/garagedesk/internal/settings/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
	vehicleStore "github.com/MrJamesThe3rd/garagedesk/internal/vehicle/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		customerService  = customer.NewService(customerStore.New(db))
		vehicleService   = vehicle.NewService(vehicleStore.New(db))
		catalogService   = catalog.NewService(catalogStore.New(db))
		inventoryService = inventory.NewService(inventoryStore.New(db))
		invoiceService   = invoice.NewService(invoiceStore.New(db))
		settingsService  = settings.NewService(settingsStore.New(db))
		pricelistService = pricelist.NewService(generic.New(), catalogService, inventoryService, slog.Default())
		renderer         = pdf.New()
	)

	var (
		authH      = authHandler.NewHandler(tokens, cfg.Auth.PIN)
		customerH  = customerHandler.NewHandler(customerService)
		vehicleH   = vehicleHandler.NewHandler(vehicleService)
		catalogH   = catalogHandler.NewHandler(catalogService)
		inventoryH = inventoryHandler.NewHandler(inventoryService)
		invoiceH   = invoiceHandler.NewHandler(invoiceService, customerService, settingsService, renderer)
		settingsH  = settingsHandler.NewHandler(settingsService)
		importH    = importHandler.NewHandler(pricelistService)
	)

	router := garagedeskHttp.New(tokens, authH, customerH, vehicleH, catalogH, inventoryH, invoiceH, settingsH, importH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

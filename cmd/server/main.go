package main // Entry point package

import (
	"context"   // Shutdown deadline and signal-bound root context
	"errors"    // Distinguish a clean server close from a failure
	"log"       // Logging library
	"net/http"  // http.ErrServerClosed
	"os"        // Bootstrap account variables
	"os/signal" // Graceful shutdown on SIGINT/SIGTERM
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/robfig/cron/v3"   // Nightly maintenance scheduler

	"github.com/iliyamo/hotel-backoffice/internal/config"     // Internal config loader
	"github.com/iliyamo/hotel-backoffice/internal/database"   // MySQL connection
	"github.com/iliyamo/hotel-backoffice/internal/export"     // Order exports
	"github.com/iliyamo/hotel-backoffice/internal/handler"    // HTTP handlers
	"github.com/iliyamo/hotel-backoffice/internal/jobs"       // Session purge
	"github.com/iliyamo/hotel-backoffice/internal/model"      // Roles
	"github.com/iliyamo/hotel-backoffice/internal/queue"      // Order status events
	"github.com/iliyamo/hotel-backoffice/internal/repository" // Data access
	"github.com/iliyamo/hotel-backoffice/internal/router"     // Internal router setup
	"github.com/iliyamo/hotel-backoffice/internal/service"    // Business rules
	"github.com/iliyamo/hotel-backoffice/internal/view"       // HTML pages
)

func main() {
	config.LoadDotEnv()  // Pick up a local .env when present
	cfg := config.Load() // Load environment config
	loc := cfg.Location()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unreachable: settings cache, response cache and rate limiting are off")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	orders := repository.NewOrderRepo(db, loc)
	messages := repository.NewMessageRepo(db, loc)

	bootstrapAdmin(ctx, users, cfg.BcryptCost)

	settings := service.NewSettings(repository.NewSettingRepo(db), rdb, cfg.DefaultVATRate)
	catalog := service.NewCatalog(repository.NewCategoryRepo(db), repository.NewItemRepo(db), settings)
	rooms := service.NewRooms(repository.NewRoomRepo(db))
	dashboard := service.NewDashboard(orders, messages, loc)
	exporter := export.NewExporter(orders, loc, cfg.CurrencySymbol)

	var publisher queue.Publisher = queue.NopPublisher{}
	if qc := config.LoadQueueConfig(); qc.Enabled {
		publisher = queue.NewAMQPPublisher(qc.URL)
		go func() {
			if err := queue.StartOrderConsumer(ctx, qc.URL); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("order consumer stopped: %v", err)
			}
		}()
	}

	scheduler := cron.New()
	if err := jobs.Register(scheduler, sessions); err != nil {
		log.Fatalf("cron: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	renderer, err := view.New(loc)
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Renderer = renderer

	base := handler.Base{Settings: settings}
	router.Setup(e, router.Handlers{
		Health:    handler.Health(db),
		Auth:      handler.NewAuthHandler(base, cfg, users, sessions),
		Dashboard: handler.NewDashboardHandler(base, dashboard),
		Orders:    handler.NewOrderHandler(base, orders, exporter, publisher),
		Catalog:   handler.NewCatalogHandler(base, catalog),
		Rooms:     handler.NewRoomHandler(base, rooms),
		Messages:  handler.NewMessageHandler(base, messages),
		Settings:  handler.NewSettingsHandler(base),
	}, router.Deps{
		JWTSecret:     cfg.JWTSecret,
		Sessions:      sessions,
		Redis:         rdb,
		Cache:         config.LoadCacheConfig(),
		RateLimit:     config.LoadRateLimitConfig(),
		SecureCookies: cfg.Env == "prod",
	})

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// bootstrapAdmin creates the first administrator from BOOTSTRAP_ADMIN_EMAIL
// and BOOTSTRAP_ADMIN_PASSWORD.  An existing account is left alone.
func bootstrapAdmin(ctx context.Context, users *repository.UserRepo, cost int) {
	email, password := os.Getenv("BOOTSTRAP_ADMIN_EMAIL"), os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	id, err := users.Create(ctx, email, password, model.RoleAdmin, cost)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return
	case err != nil:
		log.Printf("bootstrap admin: %v", err)
	default:
		log.Printf("bootstrap admin %s created (id=%d)", email, id)
	}
}

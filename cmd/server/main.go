package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/database"
	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/ledger"
	"github.com/iliyamo/event-registration/internal/notify"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/router"
	"github.com/iliyamo/event-registration/internal/workflow"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(ctx, cfg.DSN(), cfg.DBMaxConns, cfg.DBConnLifetime)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The Redis-backed ledger is preferred; when no Redis server is
	// reachable the in-process counter keeps a single-node deployment
	// correct and the reconciler keeps either one honest.
	var led ledger.Ledger
	if rdb := config.NewRedisClient(); rdb != nil {
		led = ledger.NewRedis(rdb, "evreg")
		log.Printf("ledger: using redis counters")
	} else {
		led = ledger.NewMemory()
		log.Printf("ledger: redis unavailable, using in-process counters")
	}

	events := repository.NewEventRepo(db)
	regs := repository.NewRegistrationRepo(db)
	users := repository.NewUserRepo(db)

	hub := notify.NewHub()
	notifier := notify.NewFanout(hub, queue.NewPublisher())
	auth := workflow.NewStoreAuthorizer(events, users)
	engine := workflow.NewEngine(regs, events, led, auth, notifier)

	// Seed the ledger and the event rows from the registration records so a
	// restart never starts admission control from stale counters.
	if err := engine.ReconcileAll(ctx); err != nil {
		log.Printf("startup reconcile: %v", err)
	}
	go engine.RunReconcileLoop(ctx, cfg.ReconcileInterval)

	if cfg.ConsumerEnabled {
		go queue.StartRegistrationConsumer()
	}

	e := echo.New()
	authHandler := handler.NewAuthHandler(cfg, users)
	eventHandler := handler.NewEventHandler(events, engine, hub)
	regHandler := handler.NewRegistrationHandler(engine, regs, auth)
	router.RegisterRoutes(e, eventHandler)
	router.RegisterAPI(e, cfg.JWTSecret, authHandler, eventHandler, regHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

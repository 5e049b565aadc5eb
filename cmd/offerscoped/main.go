package main

import (
	"flag"

	"offerscope-backend/lib/configutil"
	"offerscope-backend/lib/kvstore"
	"offerscope-backend/lib/serviceutil"
	"offerscope-backend/lib/telemetry"
	"offerscope-backend/services/notify"
	"offerscope-backend/services/session"
	"offerscope-backend/services/snapshots"
	"offerscope-backend/services/starred"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Config struct {
	Port   int            `json:"port"`
	Store  kvstore.Config `json:"store"`
	Notify notify.Options `json:"notify"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(*verbose)
	tel, err := telemetry.SetupFromEnv(ctx, "offerscoped")
	if err != nil {
		serviceutil.Fatal("init telemetry", err)
	}
	defer tel.Shutdown(ctx)
	telemetry.InstrumentPerfStats(ctx)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.Store.File == "" && cfg.Store.Url == "" {
		cfg.Store.File = "offerscope.db"
	}

	db, err := cfg.Store.OpenDB()
	if err != nil {
		serviceutil.Fatal("open store", err)
	}
	store, err := kvstore.NewSqlStore(db)
	if err != nil {
		serviceutil.Fatal("init store", err)
	}

	snapshotSvc := snapshots.NewService(store)
	starredSvc := starred.NewService(store)
	svc := NewService(
		session.NewService(snapshotSvc, starredSvc),
		snapshotSvc,
		starredSvc,
		notify.NewService(cfg.Notify),
	)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"*"},
	}))
	svc.Routes(r)

	go serviceutil.StartHttpServer(cfg.Port, r)
	<-ctx.Done()
}

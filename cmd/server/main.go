package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "sync"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/rs/zerolog/log"

    "freightdesk/internal/adapters/extractor"
    httpadapter "freightdesk/internal/adapters/http"
    pg "freightdesk/internal/adapters/postgres"
    rediscache "freightdesk/internal/adapters/redis"
    "freightdesk/internal/audit"
    "freightdesk/internal/config"
    "freightdesk/internal/fx"
    "freightdesk/internal/logging"
    "freightdesk/internal/negotiation"
    "freightdesk/internal/ports"
    auditsvc "freightdesk/internal/services/audits"
    negsvc "freightdesk/internal/services/negotiations"
    ratesvc "freightdesk/internal/services/rates"
    surchargesvc "freightdesk/internal/services/surcharges"
    "freightdesk/internal/textgen"
    "freightdesk/internal/workers/auditrunner"
)

func main() {
    cfg, cfgErr := config.Load()
    logging.Setup(cfg.Env, cfg.LogLevel)
    if cfgErr != nil {
        log.Warn().Err(cfgErr).Msg("config")
    }
    if cfg.DatabaseURL == "" {
        log.Fatal().Msg("DATABASE_URL is required for Postgres adapters")
    }

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    db, err := pg.Connect(ctx, cfg.DatabaseURL)
    if err != nil {
        log.Fatal().Err(err).Msg("db connect")
    }
    defer db.Close()
    if err := db.Migrate(ctx); err != nil {
        log.Fatal().Err(err).Msg("db migrate")
    }

    // Wire repositories to services (ports)
    var _ ports.AuditJobRepository = db
    var _ ports.QuoteRepository = db
    var _ ports.BidRepository = db
    var _ ports.SurchargeReferenceStore = db
    var _ ports.ExchangeRateStore = db

    var cache ports.DictionaryCache
    if cfg.RedisURL != "" {
        c, err := rediscache.Connect(ctx, cfg.RedisURL, cfg.DictionaryTTL)
        if err != nil {
            log.Warn().Err(err).Msg("redis unavailable, dictionary served from postgres")
        } else {
            defer func() { _ = c.Close() }()
            cache = c
        }
    }

    // The reasoning mode is chosen once here; the cores only see a Generator
    // and a Responder.
    var gen textgen.Generator = textgen.Disabled{}
    var responder negotiation.Responder = negotiation.RuleResponder{}
    if cfg.Live() {
        gen = textgen.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel,
            textgen.WithBaseURL(cfg.OpenAIBaseURL),
            textgen.WithRateLimit(cfg.TextgenRPS))
        responder = negotiation.ModelResponder{Gen: gen, Timeout: cfg.TextgenTimeout}
    }
    log.Info().Str("mode", cfg.ReasoningMode).Msg("reasoning configured")

    surcharges := surchargesvc.New(db, cache)
    audits := auditsvc.New(auditsvc.Deps{
        Jobs:         db,
        Quotes:       db,
        Extractor:    extractor.Extractor{Gen: gen, Timeout: cfg.TextgenTimeout, FX: fx.Converter{Rates: db}},
        Dictionaries: surcharges,
        Coordinator:  audit.NewCoordinator(audit.Risk{Gen: gen, Timeout: cfg.TextgenTimeout}),
        Drafter:      gen,
        DraftTimeout: cfg.TextgenTimeout,
    })
    negotiations := negsvc.New(db, responder)

    srv := httpadapter.New(httpadapter.Deps{
        Audits:       audits,
        Jobs:         db,
        Processor:    audits,
        Surcharges:   surcharges,
        Rates:        ratesvc.New(db),
        Negotiations: negotiations,
    })
    r := chi.NewRouter()
    r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
    r.Mount("/", srv.Routes())

    // Optional background job workers
    var workers sync.WaitGroup
    if cfg.AuditWorkers > 0 {
        workers.Add(1)
        go func() {
            defer workers.Done()
            auditrunner.Run(ctx, db, audits, cfg.AuditWorkers, 500*time.Millisecond)
        }()
        log.Info().Int("workers", cfg.AuditWorkers).Msg("audit workers started")
    }

    httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
    errCh := make(chan error, 1)
    go func() { errCh <- httpSrv.ListenAndServe() }()
    log.Info().Str("addr", cfg.ListenAddr).Msg("listening")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    select {
    case sig := <-sigCh:
        log.Info().Str("signal", sig.String()).Msg("shutting down")
    case err := <-errCh:
        if !errors.Is(err, http.ErrServerClosed) {
            log.Error().Err(err).Msg("server error")
        }
    }

    shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
    defer stop()
    if err := httpSrv.Shutdown(shutdownCtx); err != nil {
        log.Warn().Err(err).Msg("http shutdown")
    }
    cancel()
    workers.Wait()
}

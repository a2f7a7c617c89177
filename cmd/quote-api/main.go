// README: Entry point; loads config, wires services, and serves the quote API until interrupted.
package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "villaquote/internal/config"
    httptransport "villaquote/internal/http"
    "villaquote/internal/infra"
    "villaquote/internal/modules/calendar"
    "villaquote/internal/modules/exchange"
    "villaquote/internal/modules/labels"
    "villaquote/internal/modules/pricing"
    "villaquote/internal/modules/quote"
    "villaquote/internal/modules/villa"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatal(err)
    }

    logger, err := infra.NewLogger(cfg.Log.Level)
    if err != nil {
        log.Fatal(err)
    }
    defer func() { _ = logger.Sync() }()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
    if err != nil {
        logger.Fatal("database init failed", zap.Error(err))
    }
    defer dbPool.Close()

    redisClient := infra.NewRedis(cfg.Redis.Addr)
    defer redisClient.Close()

    tables := pricing.DefaultTables()
    if err := tables.Validate(); err != nil {
        logger.Fatal("rate tables incomplete", zap.Error(err))
    }

    villaStore := villa.NewStore(dbPool)
    villaCache := villa.NewCache(redisClient, villaStore, cfg.Villa.CacheTTL, logger)
    villaSvc := villa.NewService(villaStore, villaCache, logger)

    pricingSvc := pricing.NewService(tables, calendar.NewClassifier(calendar.DefaultHolidays()), villaCache, logger)

    bundle, err := labels.Load()
    if err != nil {
        logger.Fatal("label catalog", zap.Error(err))
    }
    quoteStore := quote.NewStore(dbPool)
    quoteSvc := quote.NewService(quoteStore, pricingSvc, quote.NewCodec(bundle), logger)

    exchangeSvc := exchange.NewService(exchange.NewStore(redisClient), logger)

    handler := httptransport.NewServer(httptransport.ServerDeps{
        Quote:       quoteSvc,
        Villa:       villaSvc,
        Exchange:    exchangeSvc,
        Logger:      logger,
        FeederToken: cfg.Exchange.FeederToken,
    })

    server := &http.Server{
        Addr:              cfg.HTTP.Addr,
        Handler:           handler.Routes(),
        ReadHeaderTimeout: 10 * time.Second,
    }

    go func() {
        <-ctx.Done()
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := server.Shutdown(shutdownCtx); err != nil {
            logger.Error("http shutdown", zap.Error(err))
        }
    }()

    logger.Info("quote api listening", zap.String("addr", cfg.HTTP.Addr))
    if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        logger.Fatal("http server", zap.Error(err))
    }
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"sigtrack/internal/config"
	cronrunner "sigtrack/internal/cron"
	"sigtrack/internal/db"
	"sigtrack/internal/evaluator"
	"sigtrack/internal/handler"
	"sigtrack/internal/logger"
	"sigtrack/internal/marketdata"
	"sigtrack/internal/metrics"
	"sigtrack/internal/notify"
	"sigtrack/internal/report"
	gormrepository "sigtrack/internal/repository/gorm"
	"sigtrack/internal/scanner"

	_ "sigtrack/docs"
)

func main() {
	cfgPath := os.Getenv("ST_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ST_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	mdHTTP := &http.Client{Timeout: cfg.MarketData.Timeout}
	barClient := marketdata.NewClient(mdHTTP, cfg.MarketData.BaseURL)
	barCache := marketdata.NewCachedSource(barClient, cfg.MarketData.CacheTTL)

	engine := &evaluator.Engine{
		Repo:   store,
		Bars:   barCache,
		Logger: logger,
		Config: cfg.Evaluator,
	}
	reporter := &report.Reporter{Repo: store}
	telegram := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, cfg.Notify.Timeout)
	delivery := &notify.ReportDelivery{
		Reporter: reporter,
		Sender:   telegram,
		Logger:   logger,
		Config:   cfg.Report,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	signalHandler := &handler.SignalHandler{
		Repo:                  store,
		DefaultHorizonMinutes: cfg.Evaluator.DefaultHorizonMinutes,
	}
	signalHandler.Register(router)
	reportHandler := &handler.ReportHandler{Reporter: reporter}
	reportHandler.Register(router)
	evaluateHandler := &handler.EvaluateHandler{Engine: engine}
	evaluateHandler.Register(router)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	_, err = cronRunner.Add(cfg.Evaluator.CronSpec, func(ctx context.Context) {
		res, err := engine.RunOnce(ctx)
		if err != nil {
			logger.Warn("evaluation run failed",
				zap.Error(err),
				zap.Int("tp", res.TP),
				zap.Int("sl", res.SL),
				zap.Int("amb", res.Amb),
				zap.Int("expired", res.Expired),
			)
			return
		}
		if res.TP+res.SL+res.Amb+res.Expired > 0 {
			logger.Info("evaluation run ok",
				zap.Int("tp", res.TP),
				zap.Int("sl", res.SL),
				zap.Int("amb", res.Amb),
				zap.Int("expired", res.Expired),
			)
		}
	})
	if err != nil {
		logger.Warn("cron register evaluation failed", zap.Error(err))
	}

	if cfg.Scanner.Enabled {
		scan := &scanner.Scanner{
			Repo:   store,
			Bars:   barCache,
			Logger: logger,
			Config: cfg.Scanner,
		}
		_, err = cronRunner.Add(cfg.Scanner.CronSpec, func(ctx context.Context) {
			if err := scan.RunOnce(ctx); err != nil {
				logger.Warn("scanner run failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register scanner failed", zap.Error(err))
		}
	}

	if telegram.Enabled() {
		_, err = cronRunner.Add(cfg.Report.CronSpec, func(ctx context.Context) {
			if err := delivery.RunOnce(ctx); err != nil {
				logger.Warn("report delivery failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register report delivery failed", zap.Error(err))
		}
	}

	cronRunner.Start()
	defer cronRunner.Stop()

	if cfg.MarketData.Stream.Enabled && len(cfg.Scanner.Symbols) > 0 {
		stream := &marketdata.KlineStream{
			URL:      cfg.MarketData.Stream.URL,
			Symbols:  cfg.Scanner.Symbols,
			Interval: cfg.Evaluator.BarInterval,
			Cache:    barCache,
			Logger:   logger,
		}
		go func() {
			if err := stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("kline stream stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

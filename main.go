package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"paintadvisor/internal/config"
	"paintadvisor/internal/email"
	"paintadvisor/internal/http/handlers"
	appmw "paintadvisor/internal/http/middleware"
	"paintadvisor/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	handlers.InitPrometheusMetrics()

	backends := storage.NewBackends(cfg, logger)
	mailer := email.NewClient(cfg.BrevoAPIKey)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.MetricsHandler())

	r.POST("/api/analytics", handlers.IngestEvent(backends, cfg, logger))
	r.GET("/api/analytics", handlers.QueryEvents(backends, logger))

	r.POST("/api/chat", handlers.Chat(cfg, logger))
	r.POST("/api/lead", handlers.Lead(cfg, mailer, logger))
	r.POST("/api/recap", handlers.Recap(cfg, mailer, logger))
	r.POST("/api/stt", handlers.Transcribe(cfg, logger))
	r.POST("/api/tts", handlers.Synthesize(cfg, logger))

	// Global middleware chain: request logger, then CORS, then router.
	// CORS sits inside the logger so pre-flight requests are logged too.
	handler := handlers.RequestLogger(logger)(appmw.CORS(r.Handler))

	logger.Info("paintadvisor listening", zap.String("addr", cfg.ListenAddr))
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/bakery_backend/api"
	"github.com/mmdatafocus/bakery_backend/config"
	"github.com/mmdatafocus/bakery_backend/export"
	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/notification"
	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := config.LoadSettings()
	logger := config.GetLogger()

	db := config.ConnectDatabaseWithRetry(settings)
	if err := models.MigrateTable(db); err != nil {
		logger.WithField("field", "main").Fatal("migrate: " + err.Error())
	}
	rdb := config.ConnectRedisWithRetry(ctx, settings)

	opts := workflow.EngineOptions{
		Notifier: buildNotifier(ctx, settings, logger),
		Exporter: export.NewWorkbookExporter(),
		Logger:   logger,
	}
	if settings.PostingLock && config.GetRedisLock() != nil {
		opts.Locker = workflow.NewRedisPostingLocker(config.GetRedisLock(), settings.PostingLockTTL, logger)
	}
	engine := workflow.NewEngine(
		models.NewDatabase(db),
		workflow.DefaultLookups(models.NewSettingsStore(rdb, settings.SettingsTTL)),
		opts,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-Id", "X-User-Name", "X-Platform", "X-Location-Id", "X-Correlation-Id"},
		ExposeHeaders:    []string{"X-Correlation-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.Register(router, engine)

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithField("port", settings.Port).Info("bakery posting server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithField("field", "main").Fatal("listen: " + err.Error())
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.LogError(logger, "server.go", "main", "shutdown", nil, err)
	}
}

// buildNotifier picks the event backend named by NOTIFIER. Broker backends are put
// behind a circuit breaker; any setup failure falls back to the log notifier.
func buildNotifier(ctx context.Context, s config.Settings, logger *logrus.Logger) workflow.Notifier {
	fallback := notification.NewLogNotifier(logger)
	switch s.Notifier {
	case "pubsub":
		client, err := config.ConnectPubSubWithRetry(ctx, s)
		if err != nil {
			config.LogError(logger, "server.go", "buildNotifier", "pubsub client", nil, err)
			return fallback
		}
		topic, err := config.CreateTopicIfNotExists(ctx, client, s.PubSubTopic)
		if err != nil {
			config.LogError(logger, "server.go", "buildNotifier", "pubsub topic", s.PubSubTopic, err)
			return fallback
		}
		return notification.NewBreakerNotifier("pubsub", notification.NewPubSubNotifier(topic), notification.DefaultBreakerConfig, logger)
	case "kafka":
		writer, err := config.NewKafkaWriter(s)
		if err != nil {
			config.LogError(logger, "server.go", "buildNotifier", "kafka writer", nil, err)
			return fallback
		}
		return notification.NewBreakerNotifier("kafka", notification.NewKafkaNotifier(writer), notification.DefaultBreakerConfig, logger)
	default:
		return fallback
	}
}

package appServer

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/rentdesk/config"
	repository "github.com/ds124wfegd/rentdesk/internal/database/postgres"
	"github.com/ds124wfegd/rentdesk/internal/service"
	"github.com/ds124wfegd/rentdesk/internal/store"
	"github.com/ds124wfegd/rentdesk/internal/transport"
	"github.com/ds124wfegd/rentdesk/internal/worker"

	"github.com/ds124wfegd/rentdesk/pkg/postgres"
	"github.com/ds124wfegd/rentdesk/pkg/queue"
	"github.com/ds124wfegd/rentdesk/pkg/redis"
	"github.com/ds124wfegd/rentdesk/pkg/telegram"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func setupLogger(cfg *config.ServerConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// NewServer wires the application from cfg and blocks until SIGINT or SIGTERM.
func NewServer(cfg *config.Config) {
	setupLogger(&cfg.Server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bookingStore := store.NewHTTPStore(&cfg.Store)
	logrus.WithField("base_url", cfg.Store.BaseURL).Info("Booking store client initialized")

	// Optional transition journal
	var journal repository.TransitionRepository
	if cfg.DatabaseEnabled() {
		db, err := openJournal(&cfg.Database)
		if err != nil {
			logrus.Errorf("Failed to initialize database: %v. Continuing without transition history...", err)
		} else {
			defer db.Close()
			journal = repository.NewTransitionRepository(db)
			logrus.Info("Transition journal initialized")
		}
	} else {
		logrus.Warn("Database host not provided, transition history disabled")
	}

	// Initialize Telegram bot
	var telegramBot *telegram.Bot
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramBot = telegram.NewBot(cfg.Telegram.BotToken)
		logrus.Info("Telegram bot initialized")
	} else {
		logrus.Warn("Telegram bot disabled, status notifications will be dropped")
	}

	var (
		guard         service.Guard
		redisQueue    *queue.RedisQueue
		taskPublisher service.TaskPublisher
	)

	if cfg.RedisEnabled() {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to connect to Redis: %v. Continuing with in-process guard and no queue...", err)
		} else {
			defer redisClient.Close()
			guard = service.NewRedisGuard(redisClient, cfg.Queue.Prefix, cfg.Workflow.InflightTTL)

			if cfg.Queue.Enabled {
				redisQueue, err = newQueue(redisClient, &cfg.Queue)
				if err != nil {
					logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
				} else {
					logrus.Info("Redis queue initialized")
					// Создаем адаптер для очереди
					taskPublisher = service.NewQueueAdapter(redisQueue)
				}
			}
		}
	}
	if guard == nil {
		guard = service.NewMemoryGuard(cfg.Workflow.InflightTTL)
	}

	// Initialize services
	workflow := service.NewWorkflow(bookingStore, service.WorkflowOptions{
		CancelledTerminal: cfg.Workflow.CancelledTerminal,
		EnforceOwner:      cfg.Workflow.EnforceOwner,
		Guard:             guard,
		Journal:           journal,
		Publisher:         taskPublisher,
		Properties:        bookingStore,
	})
	services := &service.Service{
		Workflow:        workflow,
		BookingQuery:    service.NewQueryService(bookingStore, bookingStore, workflow, cfg.Session.PageSize),
		BookingCommands: service.NewBookingService(bookingStore, bookingStore, taskPublisher),
		SessionService:  service.NewSessionService(bookingStore),
		HistoryService:  service.NewHistoryService(journal),
	}

	// Start queue consumer
	var taskQueue transport.TaskQueue
	if redisQueue != nil {
		defer redisQueue.Close()
		taskQueue = redisQueue

		var notifier worker.Notifier
		if telegramBot != nil {
			notifier = telegramBot
		}
		taskWorker := worker.NewTaskWorker(bookingStore, notifier, cfg.Telegram.ChatID)
		go func() {
			if err := taskWorker.Start(ctx, redisQueue); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
	}

	if cfg.IsProduction() || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := transport.NewHandler(services, cfg.Session.Lifetime, taskQueue)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handler, &cfg.Server)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("addr", cfg.GetServerAddress()).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

func openJournal(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := postgres.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newQueue(client *goredis.Client, cfg *config.QueueConfig) (*queue.RedisQueue, error) {
	queueConfig := queue.DefaultRedisQueueConfig()
	if cfg.Prefix != "" {
		queueConfig.Prefix = cfg.Prefix
	}
	queueConfig.MaxRetries = cfg.MaxRetries
	queueConfig.BaseDelay = cfg.BaseDelay

	retryManager := queue.NewRetryManager(cfg.MaxRetries, cfg.BaseDelay)
	dlqHandler := queue.NewDefaultDLQHandler(client, queueConfig.Prefix+":dlq", queueConfig.Prefix+":tasks")

	return queue.NewRedisQueue(client, queueConfig, retryManager, dlqHandler)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	commonmw "vexoj/internal/common/http/middleware"
	"vexoj/internal/common/mq"
	"vexoj/internal/pipeline/broadcast"
	"vexoj/internal/pipeline/controller"
	"vexoj/internal/pipeline/dispatch"
	"vexoj/internal/pipeline/events"
	"vexoj/internal/pipeline/model"
	"vexoj/internal/pipeline/policy"
	"vexoj/internal/pipeline/reminder"
	"vexoj/internal/pipeline/router"
	"vexoj/internal/pipeline/service"
	"vexoj/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/dispatch_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	amqpClient, err := mq.NewAMQPClient(appCfg.AMQP)
	if err != nil {
		logger.Error(context.Background(), "init amqp failed", zap.Error(err))
		return
	}
	defer func() {
		_ = amqpClient.Close()
	}()

	kafkaProducer, err := mq.NewKafkaProducer(appCfg.Kafka)
	if err != nil {
		logger.Error(context.Background(), "init kafka producer failed", zap.Error(err))
		return
	}
	defer func() {
		_ = kafkaProducer.Close()
	}()

	// Broadcast publishing uses its own client; subscribers open their own
	// connections elsewhere and never share this one.
	broadcastClient := redis.NewClient(&redis.Options{
		Addr:     appCfg.Broadcast.Addr,
		Password: appCfg.Broadcast.Password,
		DB:       appCfg.Broadcast.DB,
	})
	defer func() {
		_ = broadcastClient.Close()
	}()

	broadcaster, err := broadcast.NewPublisher(broadcastClient)
	if err != nil {
		logger.Error(context.Background(), "init broadcast publisher failed", zap.Error(err))
		return
	}

	scheduler := reminder.NewScheduler(asynq.RedisClientOpt{
		Addr:     appCfg.Reminder.Addr,
		Password: appCfg.Reminder.Password,
		DB:       appCfg.Reminder.DB,
	})
	defer func() {
		_ = scheduler.Close()
	}()

	dispatcher, err := dispatch.NewDispatcher(amqpClient)
	if err != nil {
		logger.Error(context.Background(), "init dispatcher failed", zap.Error(err))
		return
	}

	pipelineService, err := service.NewPipelineService(policy.NewValidator(), dispatcher, scheduler)
	if err != nil {
		logger.Error(context.Background(), "init pipeline service failed", zap.Error(err))
		return
	}

	statusEvents := events.NewKafkaStatusEventPublisher(kafkaProducer, appCfg.Events.StatusTopic)

	resultRouter, err := router.NewRouter(amqpClient)
	if err != nil {
		logger.Error(context.Background(), "init result router failed", zap.Error(err))
		return
	}
	resultRouter.OnTestRunResult(func(ctx context.Context, result model.ResultMessage, userTest bool) error {
		return broadcaster.Publish(ctx, result.TestcaseResult)
	})
	resultRouter.OnJudgeResult(func(ctx context.Context, result model.ResultMessage) error {
		if err := broadcaster.Publish(ctx, result.TestcaseResult); err != nil {
			return err
		}
		if !result.Final {
			return nil
		}
		return statusEvents.PublishFinalStatus(ctx, model.SubmissionStatus{
			SubmissionID: result.SubmissionID,
			Verdict:      result.Verdict,
			FinishedAt:   time.Now().Unix(),
		})
	})

	routerCtx, stopRouter := context.WithCancel(context.Background())
	defer stopRouter()
	if err := resultRouter.Run(routerCtx); err != nil {
		logger.Error(context.Background(), "start result router failed", zap.Error(err))
		return
	}

	httpServer := buildHTTPServer(appCfg.Server, pipelineService, amqpClient, broadcastClient)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "dispatch http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	stopRouter()
}

func buildHTTPServer(cfg ServerConfig, pipelineService *service.PipelineService, amqpClient *mq.AMQPClient, redisClient *redis.Client) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(commonmw.TraceContextMiddleware())
	engine.Use(requestLogger())

	ctl := controller.NewPipelineController(pipelineService)
	api := engine.Group("/internal/v1")
	api.POST("/submissions/dispatch", ctl.Dispatch)
	api.PUT("/contests/:id/start-reminder", ctl.UpsertReminder)
	api.DELETE("/contests/:id/start-reminder", ctl.DeleteReminder)

	engine.GET("/healthz", func(c *gin.Context) {
		if err := amqpClient.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "broker unavailable"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

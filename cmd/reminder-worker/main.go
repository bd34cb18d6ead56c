package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vexoj/internal/pipeline/reminder"
	"vexoj/pkg/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/reminder_worker.yaml"

// RedisConfig holds connection settings for the job store and notifier.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AppConfig holds reminder-worker configuration.
type AppConfig struct {
	Logger      logger.Config `yaml:"logger"`
	Redis       RedisConfig   `yaml:"redis"`
	Concurrency int           `yaml:"concurrency"`
}

func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	return &cfg, nil
}

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

	notifierClient := redis.NewClient(&redis.Options{
		Addr:     appCfg.Redis.Addr,
		Password: appCfg.Redis.Password,
		DB:       appCfg.Redis.DB,
	})
	defer func() {
		_ = notifierClient.Close()
	}()

	notifier, err := reminder.NewRedisNotifier(notifierClient)
	if err != nil {
		logger.Error(context.Background(), "init notifier failed", zap.Error(err))
		return
	}

	worker, err := reminder.NewWorker(asynq.RedisClientOpt{
		Addr:     appCfg.Redis.Addr,
		Password: appCfg.Redis.Password,
		DB:       appCfg.Redis.DB,
	}, notifier, appCfg.Concurrency)
	if err != nil {
		logger.Error(context.Background(), "init worker failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "reminder worker started",
			zap.String("redis", appCfg.Redis.Addr),
			zap.Int("concurrency", appCfg.Concurrency))
		errCh <- worker.Run()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(context.Background(), "reminder worker stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
		worker.Shutdown()
		// Give in-flight notifications a moment to finish logging.
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
		}
	}
}

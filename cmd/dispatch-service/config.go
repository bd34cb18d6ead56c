package main

import (
	"fmt"
	"os"
	"time"

	"vexoj/internal/common/mq"
	"vexoj/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8090"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// RedisConfig holds connection settings for one redis role.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EventsConfig holds the status event feed settings.
type EventsConfig struct {
	StatusTopic string `yaml:"statusTopic"`
}

// AppConfig holds dispatch-service configuration.
type AppConfig struct {
	Server    ServerConfig   `yaml:"server"`
	Logger    logger.Config  `yaml:"logger"`
	AMQP      mq.AMQPConfig  `yaml:"amqp"`
	Kafka     mq.KafkaConfig `yaml:"kafka"`
	Broadcast RedisConfig    `yaml:"broadcast"`
	Reminder  RedisConfig    `yaml:"reminder"`
	Events    EventsConfig   `yaml:"events"`
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

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}

	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = "vexoj.judge"
	}
	if cfg.AMQP.PublishKey == "" {
		cfg.AMQP.PublishKey = "judge.request"
	}
	if cfg.AMQP.ConsumeQueue == "" {
		cfg.AMQP.ConsumeQueue = "judge.result"
	}
	if cfg.AMQP.ConsumeKey == "" {
		cfg.AMQP.ConsumeKey = "judge.result"
	}
	if cfg.AMQP.ConsumerTag == "" {
		cfg.AMQP.ConsumerTag = "vexoj-dispatch-service"
	}
	cfg.AMQP.SetDefaults()

	if cfg.Events.StatusTopic == "" {
		cfg.Events.StatusTopic = "judge.status.final"
	}
	if cfg.Reminder.Addr == "" {
		cfg.Reminder.Addr = cfg.Broadcast.Addr
	}

	return &cfg, nil
}

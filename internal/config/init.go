package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/tracing"
)

type Config struct {
	AppConfig   *AppConfig
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
	Store       *StoreConfig
	Warmup      *WarmupConfig
	Credentials *CredentialsConfig
	TextGen     *TextGenConfig
	Events      *EventsConfig
	Cron        *CronConfig
}

func InitConfig() (*Config, error) {
	cfg := &Config{
		AppConfig:   &AppConfig{},
		Logger:      &logger.Config{},
		Tracing:     &tracing.JaegerConfig{},
		Store:       &StoreConfig{},
		Warmup:      &WarmupConfig{},
		Credentials: &CredentialsConfig{},
		TextGen:     &TextGenConfig{},
		Events:      &EventsConfig{},
		Cron:        &CronConfig{},
	}

	if err := godotenv.Load(); err != nil {
		log.Print("Unable to load .env file")
	}

	if err := env.Parse(cfg); err != nil {
		log.Fatalf("Error loading warmup config: %v", err)
	}

	return cfg, nil
}

package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/tracing"
)

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:     &AppConfig{},
		Logger:        &logger.Config{},
		Tracing:       &tracing.JaegerConfig{},
		GmailConfig:   &GmailConfig{},
		KeyringConfig: &KeyringConfig{},
		ImapConfig:    &ImapConfig{},
		CronConfig:    &CronConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, errors.Wrap(err, "loading fresh config")
	}

	if err := config.AppConfig.RetryPolicy().Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

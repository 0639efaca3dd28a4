package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"support-agent/internal/app"
	"support-agent/internal/config"
	"support-agent/internal/integrations/paramstore"
	"support-agent/internal/repository"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.Storage.DynamoTable == "" {
		logger.Error("required setting is not set", "key", "INTERACTIONS_TABLE")
		os.Exit(1)
	}

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		logger.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	if err := cfg.ResolveAPIKey(ctx, ssmClient); err != nil {
		logger.Error("failed to resolve API key", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	store, err := repository.NewDynamoStore(
		awsdynamodb.NewFromConfig(awsCfg),
		cfg.Storage.DynamoTable,
		repository.WithRetention(time.Duration(envInt("INTERACTION_RETENTION_DAYS", 0))*24*time.Hour),
	)
	if err != nil {
		logger.Error("failed to create interaction store", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	a, err := app.New(cfg, store, logger)
	if err != nil {
		logger.Error("failed to wire application", "err", err)
		os.Exit(1)
	}

	lambda.Start(a.Handler.Handle)
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

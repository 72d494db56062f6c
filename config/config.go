package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// DynamoConfig selects the DynamoDB account and the tables used by the
// dynamodb driver.
type DynamoConfig struct {
	Region             string
	Endpoint           string
	AccessKeyID        string
	SecretAccessKey    string
	TeamsTable         string
	TentativeTable     string
	TournamentsTable   string
	SubscriptionsTable string
}

// R2Config enables roster exports when AccountID and BucketName are set.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.BucketName != ""
}

type Config struct {
	ServerPort     int
	StoreDriver    string
	DatabaseURL    string
	Dynamo         DynamoConfig
	R2             R2Config
	AllowedOrigins []string
	LogLevel       string
}

// Load reads the configuration from the environment, loading a .env file
// first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		ServerPort:  port,
		StoreDriver: strings.ToLower(envOr("STORE_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Dynamo: DynamoConfig{
			Region:             envOr("DYNAMODB_REGION", "us-east-1"),
			Endpoint:           os.Getenv("DYNAMODB_ENDPOINT"),
			AccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			TeamsTable:         envOr("DYNAMODB_TEAMS_TABLE", "clash-registered-teams"),
			TentativeTable:     envOr("DYNAMODB_TENTATIVE_TABLE", "clash-tentative-queue"),
			TournamentsTable:   envOr("DYNAMODB_TOURNAMENTS_TABLE", "clash-tournaments"),
			SubscriptionsTable: envOr("DYNAMODB_SUBSCRIPTIONS_TABLE", "clash-registered-users"),
		},
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		AllowedOrigins: listEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case DriverDynamoDB:
		if (cfg.Dynamo.AccessKeyID == "") != (cfg.Dynamo.SecretAccessKey == "") {
			return nil, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverDynamoDB, cfg.StoreDriver)
	}

	if cfg.R2.Enabled() && (cfg.R2.AccessKeyID == "" || cfg.R2.SecretAccessKey == "" || cfg.R2.PublicBaseURL == "") {
		return nil, fmt.Errorf("R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_PUBLIC_BASE_URL are required when R2 export is enabled")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func listEnv(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// schema is idempotent. A NULL version marks a legacy team.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS clash_tournaments (
		tournament_name   TEXT NOT NULL,
		tournament_day    TEXT NOT NULL,
		start_time        TIMESTAMPTZ NOT NULL,
		registration_time TIMESTAMPTZ,
		PRIMARY KEY (tournament_name, tournament_day)
	)`,
	`CREATE TABLE IF NOT EXISTS clash_teams (
		team_key        TEXT PRIMARY KEY,
		team_name       TEXT NOT NULL,
		server_name     TEXT NOT NULL,
		tournament_name TEXT NOT NULL,
		tournament_day  TEXT NOT NULL,
		start_time      TIMESTAMPTZ,
		players         TEXT[] NOT NULL DEFAULT '{}',
		players_w_roles JSONB,
		version         SMALLINT
	)`,
	`CREATE INDEX IF NOT EXISTS clash_teams_server_idx ON clash_teams (server_name, version)`,
	`CREATE TABLE IF NOT EXISTS clash_tentative (
		tentative_key     TEXT PRIMARY KEY,
		server_name       TEXT NOT NULL,
		tournament_name   TEXT NOT NULL,
		tournament_day    TEXT NOT NULL,
		tentative_players TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS clash_tentative_server_idx ON clash_tentative (server_name)`,
	`CREATE TABLE IF NOT EXISTS clash_subscriptions (
		player_id           TEXT PRIMARY KEY,
		player_name         TEXT NOT NULL DEFAULT '',
		server_name         TEXT NOT NULL DEFAULT '',
		preferred_champions TEXT[] NOT NULL DEFAULT '{}'
	)`,
}

// EnsureSchema creates the tables the Postgres repositories expect.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

type DynamoOptions struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ConnectDynamo builds a DynamoDB client. Static credentials are used when
// given, otherwise the default AWS credential chain. Endpoint points the
// client at DynamoDB Local or another compatible service.
func ConnectDynamo(ctx context.Context, opts DynamoOptions) (*dynamodb.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

package repositories

import "database/sql"

// Store bundles the repositories of one storage backend.
type Store struct {
	Teams         TeamRepository
	Tentative     TentativeRepository
	Tournaments   TournamentRepository
	Subscriptions SubscriptionRepository
}

func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Teams:         NewPostgresTeamRepository(db),
		Tentative:     NewPostgresTentativeRepository(db),
		Tournaments:   NewPostgresTournamentRepository(db),
		Subscriptions: NewPostgresSubscriptionRepository(db),
	}
}

func NewDynamoStore(client DynamoAPI, tables DynamoTables) *Store {
	return &Store{
		Teams:         NewDynamoTeamRepository(client, tables.Teams),
		Tentative:     NewDynamoTentativeRepository(client, tables.Tentative),
		Tournaments:   NewDynamoTournamentRepository(client, tables.Tournaments),
		Subscriptions: NewDynamoSubscriptionRepository(client, tables.Subscriptions),
	}
}

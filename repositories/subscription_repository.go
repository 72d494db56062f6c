package repositories

import (
	"context"
	"database/sql"

	"github.com/Dosada05/clash-teams/models"
	"github.com/lib/pq"
)

type SubscriptionRepository interface {
	// GetByIDs returns the profiles that exist among ids.
	GetByIDs(ctx context.Context, ids []string) ([]models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
}

type postgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &postgresSubscriptionRepository{db: db}
}

func (r *postgresSubscriptionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Subscription, error) {
	subs := make([]models.Subscription, 0, len(ids))
	if len(ids) == 0 {
		return subs, nil
	}
	query := `
		SELECT player_id, player_name, server_name, preferred_champions
		FROM clash_subscriptions
		WHERE player_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s         models.Subscription
			champions pq.StringArray
		)
		if scanErr := rows.Scan(&s.PlayerID, &s.PlayerName, &s.ServerName, &champions); scanErr != nil {
			return nil, scanErr
		}
		s.PreferredChampions = nonNil(champions)
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *postgresSubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO clash_subscriptions (player_id, player_name, server_name, preferred_champions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			server_name = EXCLUDED.server_name,
			preferred_champions = EXCLUDED.preferred_champions`

	result, err := r.db.ExecContext(ctx, query,
		sub.PlayerID, sub.PlayerName, sub.ServerName, pq.Array(nonNil(sub.PreferredChampions)))
	if err != nil {
		return err
	}
	return checkAffectedRows(result, sql.ErrNoRows)
}

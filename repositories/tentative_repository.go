package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/clash-teams/models"
	"github.com/lib/pq"
)

var ErrTentativeNotFound = errors.New("tentative list not found")

type TentativeRepository interface {
	Get(ctx context.Context, key models.TentativeKey) (*models.TentativeList, error)
	// AddPlayer appends playerID in one conditional write, creating the list
	// if needed. It fails with ErrConditionFailed when the player is already
	// on the list.
	AddPlayer(ctx context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error)
	// RemovePlayer fails with ErrConditionFailed when the list is missing or
	// no longer contains playerID. An emptied list is kept.
	RemovePlayer(ctx context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error)
	ListByServer(ctx context.Context, serverName string) ([]*models.TentativeList, error)
}

type postgresTentativeRepository struct {
	db *sql.DB
}

func NewPostgresTentativeRepository(db *sql.DB) TentativeRepository {
	return &postgresTentativeRepository{db: db}
}

const tentativeColumns = `server_name, tournament_name, tournament_day, tentative_players`

func (r *postgresTentativeRepository) Get(ctx context.Context, key models.TentativeKey) (*models.TentativeList, error) {
	query := `SELECT ` + tentativeColumns + ` FROM clash_tentative WHERE tentative_key = $1`
	list, err := scanTentative(r.db.QueryRowContext(ctx, query, key.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTentativeNotFound
		}
		return nil, err
	}
	return list, nil
}

func (r *postgresTentativeRepository) AddPlayer(ctx context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error) {
	query := `
		INSERT INTO clash_tentative (tentative_key, server_name, tournament_name, tournament_day, tentative_players)
		VALUES ($1, $2, $3, $4, ARRAY[$5::text])
		ON CONFLICT (tentative_key) DO UPDATE
			SET tentative_players = array_append(clash_tentative.tentative_players, $5::text)
			WHERE NOT ($5::text = ANY(clash_tentative.tentative_players))
		RETURNING ` + tentativeColumns

	list, err := scanTentative(r.db.QueryRowContext(ctx, query,
		key.String(), key.ServerName, key.TournamentName, key.TournamentDay, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConditionFailed
		}
		return nil, err
	}
	return list, nil
}

func (r *postgresTentativeRepository) RemovePlayer(ctx context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error) {
	query := `
		UPDATE clash_tentative SET tentative_players = array_remove(tentative_players, $2::text)
		WHERE tentative_key = $1 AND $2::text = ANY(tentative_players)
		RETURNING ` + tentativeColumns

	list, err := scanTentative(r.db.QueryRowContext(ctx, query, key.String(), playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConditionFailed
		}
		return nil, err
	}
	return list, nil
}

func (r *postgresTentativeRepository) ListByServer(ctx context.Context, serverName string) ([]*models.TentativeList, error) {
	query := `SELECT ` + tentativeColumns + ` FROM clash_tentative WHERE server_name = $1 ORDER BY tournament_name, tournament_day`
	rows, err := r.db.QueryContext(ctx, query, serverName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]*models.TentativeList, 0)
	for rows.Next() {
		list, scanErr := scanTentative(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		lists = append(lists, list)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}

func scanTentative(row rowScanner) (*models.TentativeList, error) {
	var (
		l       models.TentativeList
		players pq.StringArray
	)
	if err := row.Scan(&l.ServerName, &l.TournamentDetails.Name, &l.TournamentDetails.Day, &players); err != nil {
		return nil, err
	}
	l.TentativePlayers = nonNil(players)
	return &l, nil
}

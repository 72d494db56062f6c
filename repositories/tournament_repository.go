package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/clash-teams/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	Get(ctx context.Context, name, day string) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO clash_tournaments (tournament_name, tournament_day, start_time, registration_time)
		VALUES ($1, $2, $3, $4)`

	_, err := r.getExecutor(nil).ExecContext(ctx, query, t.Name, t.Day, t.StartTime, t.RegistrationTime)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTournamentConflict
		}
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) Get(ctx context.Context, name, day string) (*models.Tournament, error) {
	query := `
		SELECT tournament_name, tournament_day, start_time, registration_time
		FROM clash_tournaments
		WHERE tournament_name = $1 AND tournament_day = $2`

	t := &models.Tournament{}
	err := r.getExecutor(nil).QueryRowContext(ctx, query, name, day).Scan(
		&t.Name, &t.Day, &t.StartTime, &t.RegistrationTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT tournament_name, tournament_day, start_time, registration_time
		FROM clash_tournaments
		ORDER BY start_time, tournament_name`

	rows, err := r.getExecutor(nil).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.Name, &t.Day, &t.StartTime, &t.RegistrationTime); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

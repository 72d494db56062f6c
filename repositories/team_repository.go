package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	// ErrConditionFailed is returned when a conditional write finds the stored
	// record changed or missing. Nothing in the intent was applied.
	ErrConditionFailed = errors.New("conditional write failed")
	ErrEmptyWrite      = errors.New("team write has nothing to apply")
)

// TeamWriteOp selects how a TeamWrite mutates its record.
type TeamWriteOp int

const (
	// OpCreate inserts a new record. It fails if the key is already taken.
	OpCreate TeamWriteOp = iota + 1
	// OpReplace overwrites the whole record if it still exists under the
	// expected team name.
	OpReplace
	// OpAddPlayer adds to the players set of a legacy record.
	OpAddPlayer
	// OpRemovePlayer deletes from the players set of a legacy record.
	OpRemovePlayer
	// OpSetRoles sets the role map and the players mirror derived from it.
	OpSetRoles
)

func (op TeamWriteOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpReplace:
		return "replace"
	case OpAddPlayer:
		return "add_player"
	case OpRemovePlayer:
		return "remove_player"
	case OpSetRoles:
		return "set_roles"
	default:
		return "unknown"
	}
}

// TeamWrite is one item of an atomic write intent. OpCreate is conditional on
// the key being free, every other op on the stored team name matching
// Key.TeamName.
type TeamWrite struct {
	Op       TeamWriteOp
	Key      models.TeamKey
	Team     *models.Team
	PlayerID string
	Roles    models.RoleAssignments
}

func CreateTeam(team *models.Team) TeamWrite {
	return TeamWrite{Op: OpCreate, Key: team.Key(), Team: team}
}

func ReplaceTeam(team *models.Team) TeamWrite {
	return TeamWrite{Op: OpReplace, Key: team.Key(), Team: team}
}

func AddPlayer(key models.TeamKey, playerID string) TeamWrite {
	return TeamWrite{Op: OpAddPlayer, Key: key, PlayerID: playerID}
}

func RemovePlayer(key models.TeamKey, playerID string) TeamWrite {
	return TeamWrite{Op: OpRemovePlayer, Key: key, PlayerID: playerID}
}

func SetRoles(key models.TeamKey, roles models.RoleAssignments) TeamWrite {
	return TeamWrite{Op: OpSetRoles, Key: key, Roles: roles}
}

func (w TeamWrite) validate() error {
	switch w.Op {
	case OpCreate, OpReplace:
		if w.Team == nil {
			return ErrEmptyWrite
		}
	case OpAddPlayer, OpRemovePlayer:
		if w.PlayerID == "" {
			return ErrEmptyWrite
		}
	case OpSetRoles:
	default:
		return ErrEmptyWrite
	}
	return nil
}

type TeamRepository interface {
	GetByKey(ctx context.Context, key models.TeamKey) (*models.Team, error)
	// BatchGet skips keys that do not exist.
	BatchGet(ctx context.Context, keys []models.TeamKey) ([]*models.Team, error)
	// ListByServer returns the teams of one shape only. Legacy records
	// written without a version are included in TeamVersionLegacy.
	ListByServer(ctx context.Context, serverName string, version models.TeamVersion) ([]*models.Team, error)
	// Apply commits all writes atomically and returns the resulting records
	// in write order. If any condition fails nothing is written and the
	// error wraps ErrConditionFailed.
	Apply(ctx context.Context, writes ...TeamWrite) ([]*models.Team, error)
}

const teamColumns = `team_name, server_name, tournament_name, tournament_day, start_time, players, players_w_roles, version`

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) GetByKey(ctx context.Context, key models.TeamKey) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM clash_teams WHERE team_key = $1`
	team, err := scanTeam(r.getExecutor(nil).QueryRowContext(ctx, query, key.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) BatchGet(ctx context.Context, keys []models.TeamKey) ([]*models.Team, error) {
	if len(keys) == 0 {
		return []*models.Team{}, nil
	}
	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = k.String()
	}
	query := `SELECT ` + teamColumns + ` FROM clash_teams WHERE team_key = ANY($1) ORDER BY team_key`
	return r.queryTeams(ctx, r.getExecutor(nil), query, pq.Array(raw))
}

func (r *postgresTeamRepository) ListByServer(ctx context.Context, serverName string, version models.TeamVersion) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM clash_teams WHERE server_name = $1`
	switch version {
	case models.TeamVersionLegacy:
		query += ` AND (version IS NULL OR version = 1)`
	case models.TeamVersionRoles:
		query += ` AND version = 2`
	default:
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownTeamVersion, version)
	}
	query += ` ORDER BY tournament_name, tournament_day, team_name`
	return r.queryTeams(ctx, r.getExecutor(nil), query, serverName)
}

func (r *postgresTeamRepository) Apply(ctx context.Context, writes ...TeamWrite) ([]*models.Team, error) {
	for _, w := range writes {
		if err := w.validate(); err != nil {
			return nil, fmt.Errorf("%s %s: %w", w.Op, w.Key, err)
		}
	}
	if len(writes) == 0 {
		return []*models.Team{}, nil
	}

	var results []*models.Team
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		results = make([]*models.Team, 0, len(writes))
		for _, w := range writes {
			team, err := r.applyOne(ctx, tx, w)
			if err != nil {
				return fmt.Errorf("%s %s: %w", w.Op, w.Key, err)
			}
			results = append(results, team)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresTeamRepository) applyOne(ctx context.Context, exec SQLExecutor, w TeamWrite) (*models.Team, error) {
	var row *sql.Row
	switch w.Op {
	case OpCreate:
		players, roles, version, err := encodeRoster(w.Team.Roster)
		if err != nil {
			return nil, err
		}
		query := `
			INSERT INTO clash_teams (
				team_key, team_name, server_name, tournament_name, tournament_day,
				start_time, players, players_w_roles, version
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (team_key) DO NOTHING
			RETURNING ` + teamColumns
		row = exec.QueryRowContext(ctx, query,
			w.Key.String(), w.Team.Name, w.Team.ServerName, w.Team.TournamentName, w.Team.TournamentDay,
			nullTime(w.Team.StartTime), pq.Array(players), roles, version,
		)
	case OpReplace:
		players, roles, version, err := encodeRoster(w.Team.Roster)
		if err != nil {
			return nil, err
		}
		query := `
			UPDATE clash_teams SET
				start_time = $3,
				players = $4,
				players_w_roles = $5,
				version = $6
			WHERE team_key = $1 AND team_name = $2
			RETURNING ` + teamColumns
		row = exec.QueryRowContext(ctx, query,
			w.Key.String(), w.Key.TeamName, nullTime(w.Team.StartTime), pq.Array(players), roles, version)
	case OpAddPlayer:
		query := `
			UPDATE clash_teams SET
				players = CASE WHEN $3::text = ANY(players) THEN players ELSE array_append(players, $3) END
			WHERE team_key = $1 AND team_name = $2
				AND (version IS NULL OR version = 1)
				AND ($3::text = ANY(players) OR cardinality(players) < $4)
			RETURNING ` + teamColumns
		row = exec.QueryRowContext(ctx, query, w.Key.String(), w.Key.TeamName, w.PlayerID, models.MaxTeamSize)
	case OpRemovePlayer:
		query := `
			UPDATE clash_teams SET players = array_remove(players, $3)
			WHERE team_key = $1 AND team_name = $2 AND (version IS NULL OR version = 1)
			RETURNING ` + teamColumns
		row = exec.QueryRowContext(ctx, query, w.Key.String(), w.Key.TeamName, w.PlayerID)
	case OpSetRoles:
		roles, err := json.Marshal(w.Roles)
		if err != nil {
			return nil, err
		}
		query := `
			UPDATE clash_teams SET
				players = $3,
				players_w_roles = $4,
				version = 2
			WHERE team_key = $1 AND team_name = $2
			RETURNING ` + teamColumns
		row = exec.QueryRowContext(ctx, query, w.Key.String(), w.Key.TeamName, pq.Array(w.Roles.Players()), string(roles))
	default:
		return nil, ErrEmptyWrite
	}

	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConditionFailed
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) queryTeams(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var (
		t         models.Team
		startTime sql.NullTime
		players   pq.StringArray
		rolesJSON []byte
		version   sql.NullInt64
	)
	if err := row.Scan(
		&t.Name, &t.ServerName, &t.TournamentName, &t.TournamentDay,
		&startTime, &players, &rolesJSON, &version,
	); err != nil {
		return nil, err
	}
	t.StartTime = startTime.Time

	var roles map[string]string
	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &roles); err != nil {
			return nil, fmt.Errorf("malformed players_w_roles for team %q: %w", t.Name, err)
		}
	}
	roster, err := models.BuildRoster(models.TeamVersion(version.Int64), nonNil(players), roles)
	if err != nil {
		return nil, fmt.Errorf("team %q: %w", t.Name, err)
	}
	t.Roster = roster
	return &t, nil
}

// encodeRoster returns the column values for a roster. Legacy rosters keep
// version and players_w_roles NULL.
func encodeRoster(roster models.Roster) (players []string, roles interface{}, version interface{}, err error) {
	switch r := roster.(type) {
	case nil:
		return []string{}, nil, nil, nil
	case models.LegacyRoster:
		return r.Players(), nil, nil, nil
	case models.RoleRoster:
		encoded, err := json.Marshal(r.Roles)
		if err != nil {
			return nil, nil, nil, err
		}
		return r.Players(), string(encoded), int64(models.TeamVersionRoles), nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %T", models.ErrUnknownTeamVersion, roster)
	}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

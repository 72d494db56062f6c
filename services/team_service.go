package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
	"golang.org/x/sync/errgroup"
)

// TeamNotifier receives every team written by a successful mutation.
// Implementations must not block.
type TeamNotifier interface {
	PublishTeams(server string, teams []*models.Team)
}

type noopNotifier struct{}

func (noopNotifier) PublishTeams(string, []*models.Team) {}

// ExistingTeam is a team the player already occupies, reported when a
// legacy registration is blocked.
type ExistingTeam struct {
	Team  *models.Team
	Exist bool
}

// MarshalJSON writes the team's own fields with "exist" alongside them.
func (e ExistingTeam) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if e.Team != nil {
		team, err := json.Marshal(e.Team)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(team, &fields); err != nil {
			return nil, err
		}
	}
	exist, err := json.Marshal(e.Exist)
	if err != nil {
		return nil, err
	}
	fields["exist"] = exist
	return json.Marshal(fields)
}

type RegistrationResult struct {
	// Team is the joined or created team. It is nil when the call was
	// blocked.
	Team    *models.Team
	Created bool
	// Removed holds the teams the player was evicted from, after the write.
	Removed []*models.Team
	// CurrentTeams is set when a legacy registration is blocked because the
	// player is the sole member of their team.
	CurrentTeams []ExistingTeam
}

func (r *RegistrationResult) Blocked() bool {
	return r.Team == nil && len(r.CurrentTeams) > 0
}

type TentativeResult struct {
	List        *models.TentativeList
	OnTentative bool
	RemovedFrom []*models.Team
}

type TeamService interface {
	RegisterPlayer(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) (*RegistrationResult, error)
	RegisterPlayerV2(ctx context.Context, playerID string, role models.Role, server string, tournaments []models.TournamentRef) (*RegistrationResult, error)
	RegisterWithSpecificTeam(ctx context.Context, playerID, server string, tournaments []models.TournamentRef, teamName string) (*RegistrationResult, error)
	RegisterWithSpecificTeamV2(ctx context.Context, playerID string, role models.Role, server string, tournament models.TournamentRef, teamName string) (*RegistrationResult, error)
	DeregisterPlayer(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error)
	DeregisterPlayerV2(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error)
	// ToggleTentative removes the player from tentative when present.
	// Otherwise it evicts them from their teams in that tournament and adds
	// them to tentative.
	ToggleTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (*TentativeResult, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	tentative      TentativeService
	notifier       TeamNotifier
	logger         *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	tentative TentativeService,
	notifier TeamNotifier,
	logger *slog.Logger,
) TeamService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		tentative:      tentative,
		notifier:       notifier,
		logger:         logger,
	}
}

// tournamentBucket groups the teams of one shape for one tournament from the
// point of view of the registering player.
type tournamentBucket struct {
	current   *models.Team
	available []*models.Team
	// unableToJoin is set when the player is the only member of current.
	unableToJoin bool
}

func bucketTeams(teams []*models.Team, playerID string) map[string]*tournamentBucket {
	buckets := make(map[string]*tournamentBucket)
	for _, team := range teams {
		key := team.Tournament().Key()
		b, ok := buckets[key]
		if !ok {
			b = &tournamentBucket{}
			buckets[key] = b
		}
		if team.Has(playerID) {
			b.current = team
			b.unableToJoin = team.Len() == 1
			continue
		}
		b.available = append(b.available, team)
	}
	return buckets
}

func (s *teamService) RegisterPlayer(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) (*RegistrationResult, error) {
	if len(tournaments) == 0 {
		return nil, ErrNoTournaments
	}
	all, err := s.loadServerTeams(ctx, server)
	if err != nil {
		return nil, err
	}
	buckets := bucketTeams(all.legacy, playerID)

	resolved := tournaments[0]
	var (
		candidates []*models.Team
		currentOn  []ExistingTeam
	)
	for _, t := range tournaments {
		b, ok := buckets[t.Key()]
		if !ok {
			continue
		}
		if b.current != nil {
			currentOn = append(currentOn, ExistingTeam{Team: b.current, Exist: true})
		}
		if b.unableToJoin {
			s.logger.InfoContext(ctx, "Registration blocked, player is alone on their team",
				slog.String("player_id", playerID),
				slog.String("server", server),
				slog.String("team", b.current.Name))
			return &RegistrationResult{CurrentTeams: currentOn}, nil
		}
		candidates = b.available
		resolved = t
		break
	}

	var target *models.Team
	for _, team := range candidates {
		if team.Len() == 0 {
			target = team
			break
		}
	}

	if target != nil {
		return s.seat(ctx, playerID, "", server, resolved, target, all)
	}
	return s.create(ctx, playerID, server, resolved, models.LegacyRoster{Members: []string{playerID}}, all)
}

func (s *teamService) RegisterPlayerV2(ctx context.Context, playerID string, role models.Role, server string, tournaments []models.TournamentRef) (*RegistrationResult, error) {
	if len(tournaments) == 0 {
		return nil, ErrNoTournaments
	}
	if !role.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"role": fmt.Sprintf("unknown role %q", role)}}
	}
	all, err := s.loadServerTeams(ctx, server)
	if err != nil {
		return nil, err
	}
	buckets := bucketTeams(all.roles, playerID)

	// The first offered tournament that already has teams, and in which the
	// player is not alone on one, wins. Without such a tournament the player
	// gets a new team in the first offered tournament that has none.
	var (
		resolved models.TournamentRef
		bucket   *tournamentBucket
		found    bool
	)
	for _, t := range tournaments {
		b := buckets[t.Key()]
		if b == nil || (b.current != nil && b.current.Len() == 1) {
			continue
		}
		resolved, bucket, found = t, b, true
		break
	}
	if !found {
		for _, t := range tournaments {
			if buckets[t.Key()] == nil {
				resolved, found = t, true
				break
			}
		}
	}
	if !found {
		s.logger.InfoContext(ctx, "Player holds a solo team in every offered tournament",
			slog.String("player_id", playerID),
			slog.String("server", server))
		return nil, ErrIneligibleToCreate
	}

	if bucket != nil {
		for _, team := range bucket.available {
			if team.Roster.CanSeat(playerID, role) {
				return s.seat(ctx, playerID, role, server, resolved, team, all)
			}
		}
	}

	roles, err := models.NewRoleAssignments().Assign(role, playerID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, playerID, server, resolved, models.RoleRoster{Roles: roles}, all)
}

func (s *teamService) RegisterWithSpecificTeam(ctx context.Context, playerID, server string, tournaments []models.TournamentRef, teamName string) (*RegistrationResult, error) {
	if len(tournaments) == 0 {
		return nil, ErrNoTournaments
	}
	all, err := s.loadServerTeams(ctx, server)
	if err != nil {
		return nil, err
	}

	for _, t := range tournaments {
		target := matchTeamName(teamsIn(all.legacy, t), teamName)
		if target == nil {
			continue
		}
		if target.Has(playerID) {
			return nil, ErrAlreadyOnTeam
		}
		if !target.Roster.CanSeat(playerID, "") {
			return nil, ErrTeamFull
		}
		return s.seat(ctx, playerID, "", server, t, target, all)
	}
	return nil, ErrTeamNotFound
}

func (s *teamService) RegisterWithSpecificTeamV2(ctx context.Context, playerID string, role models.Role, server string, tournament models.TournamentRef, teamName string) (*RegistrationResult, error) {
	if !role.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"role": fmt.Sprintf("unknown role %q", role)}}
	}
	all, err := s.loadServerTeams(ctx, server)
	if err != nil {
		return nil, err
	}

	target := matchTeamName(teamsIn(all.roles, tournament), teamName)
	if target == nil {
		return nil, ErrTeamNotFound
	}
	if target.Has(playerID) {
		return nil, ErrAlreadyOnTeam
	}
	if !target.Roster.CanSeat(playerID, role) {
		return nil, ErrRoleTaken
	}
	return s.seat(ctx, playerID, role, server, tournament, target, all)
}

func (s *teamService) DeregisterPlayer(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error) {
	return s.deregister(ctx, playerID, server, tournaments, models.TeamVersionLegacy)
}

func (s *teamService) DeregisterPlayerV2(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error) {
	return s.deregister(ctx, playerID, server, tournaments, models.TeamVersionRoles)
}

// deregister issues one conditional write per matching team. Every write is
// attempted and the first failure is returned.
func (s *teamService) deregister(ctx context.Context, playerID, server string, tournaments []models.TournamentRef, version models.TeamVersion) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByServer(ctx, server, version)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for %s: %w", server, err)
	}

	wanted := make(map[string]struct{}, len(tournaments))
	for _, t := range tournaments {
		wanted[t.Key()] = struct{}{}
	}
	var matching []*models.Team
	for _, team := range teams {
		if _, ok := wanted[team.Tournament().Key()]; ok && team.Has(playerID) {
			matching = append(matching, team)
		}
	}
	if len(matching) == 0 {
		return []*models.Team{}, nil
	}

	updated := make([]*models.Team, len(matching))
	var g errgroup.Group
	for i, team := range matching {
		g.Go(func() error {
			write, err := unseatWrite(team, playerID)
			if err != nil {
				return err
			}
			res, err := s.teamRepo.Apply(ctx, write)
			if err != nil {
				return fmt.Errorf("failed to remove %s from %s: %w", playerID, team.Name, err)
			}
			updated[i] = res[0]
			return nil
		})
	}
	waitErr := g.Wait()

	removed := make([]*models.Team, 0, len(updated))
	for _, team := range updated {
		if team != nil {
			removed = append(removed, team)
		}
	}
	if len(removed) > 0 {
		s.notifier.PublishTeams(server, removed)
	}
	if waitErr != nil {
		s.logger.ErrorContext(ctx, "Deregistration partially failed",
			slog.String("player_id", playerID),
			slog.String("server", server),
			slog.Int("removed", len(removed)),
			slog.Int("matched", len(matching)),
			slog.Any("error", waitErr))
		return nil, waitErr
	}

	s.logger.InfoContext(ctx, "Player deregistered",
		slog.String("player_id", playerID),
		slog.String("server", server),
		slog.Int("teams", len(removed)))
	return removed, nil
}

func (s *teamService) ToggleTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (*TentativeResult, error) {
	onTentative, list, err := s.tentative.IsTentative(ctx, playerID, server, tournament)
	if err != nil {
		return nil, err
	}
	if onTentative {
		list, err = s.tentative.RemoveFromTentative(ctx, playerID, list)
		if err != nil {
			return nil, err
		}
		return &TentativeResult{List: list, OnTentative: false, RemovedFrom: []*models.Team{}}, nil
	}

	var legacy, roles []*models.Team
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacy, err = s.DeregisterPlayer(gctx, playerID, server, []models.TournamentRef{tournament})
		return err
	})
	g.Go(func() error {
		var err error
		roles, err = s.DeregisterPlayerV2(gctx, playerID, server, []models.TournamentRef{tournament})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	list, err = s.tentative.AddToTentative(ctx, playerID, server, tournament, list)
	if err != nil {
		return nil, err
	}
	return &TentativeResult{
		List:        list,
		OnTentative: true,
		RemovedFrom: append(legacy, roles...),
	}, nil
}

// seat places the player on target and evicts them from any other team they
// hold in the same tournament, in one atomic write.
func (s *teamService) seat(ctx context.Context, playerID string, role models.Role, server string, tournament models.TournamentRef, target *models.Team, all serverTeams) (*RegistrationResult, error) {
	join, err := seatWrite(target, playerID, role)
	if err != nil {
		return nil, err
	}
	evictions, err := evictWrites(all.in(tournament), playerID, target.Key())
	if err != nil {
		return nil, err
	}
	res, err := s.apply(ctx, playerID, server, tournament, append(evictions, join))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Player joined team",
		slog.String("player_id", playerID),
		slog.String("server", server),
		slog.String("team", target.Name),
		slog.String("role", string(role)),
		slog.Int("evicted_from", len(res.Removed)))
	return res, nil
}

func (s *teamService) create(ctx context.Context, playerID, server string, tournament models.TournamentRef, roster models.Roster, all serverTeams) (*RegistrationResult, error) {
	inTournament := all.in(tournament)
	used := make(map[string]struct{}, len(inTournament))
	for _, team := range inTournament {
		used[strings.ToLower(team.Name)] = struct{}{}
	}
	team := &models.Team{
		Name:           generateTeamName(len(inTournament), used),
		ServerName:     server,
		TournamentName: tournament.Name,
		TournamentDay:  tournament.Day,
		StartTime:      s.startTime(ctx, tournament),
		Roster:         roster,
	}

	evictions, err := evictWrites(inTournament, playerID, team.Key())
	if err != nil {
		return nil, err
	}
	res, err := s.apply(ctx, playerID, server, tournament, append(evictions, repositories.CreateTeam(team)))
	if err != nil {
		return nil, err
	}
	res.Created = true
	s.logger.InfoContext(ctx, "Team created",
		slog.String("player_id", playerID),
		slog.String("server", server),
		slog.String("team", team.Name),
		slog.Int("version", int(roster.Version())))
	return res, nil
}

// apply clears the player's tentative entry for the tournament and commits
// the write intent. The last write is the joined or created team.
func (s *teamService) apply(ctx context.Context, playerID, server string, tournament models.TournamentRef, writes []repositories.TeamWrite) (*RegistrationResult, error) {
	onTentative, list, err := s.tentative.IsTentative(ctx, playerID, server, tournament)
	if err != nil {
		return nil, err
	}
	if onTentative {
		if _, err := s.tentative.RemoveFromTentative(ctx, playerID, list); err != nil {
			return nil, err
		}
	}

	teams, err := s.teamRepo.Apply(ctx, writes...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply registration for %s: %w", playerID, err)
	}
	s.notifier.PublishTeams(server, teams)

	last := len(teams) - 1
	return &RegistrationResult{Team: teams[last], Removed: teams[:last]}, nil
}

func (s *teamService) startTime(ctx context.Context, ref models.TournamentRef) time.Time {
	t, err := s.tournamentRepo.Get(ctx, ref.Name, ref.Day)
	if err != nil {
		s.logger.WarnContext(ctx, "Tournament start time unavailable",
			slog.String("tournament", ref.Name),
			slog.String("day", ref.Day),
			slog.Any("error", err))
		return time.Time{}
	}
	return t.StartTime
}

type serverTeams struct {
	legacy []*models.Team
	roles  []*models.Team
}

// in returns the teams of both shapes for one tournament.
func (st serverTeams) in(ref models.TournamentRef) []*models.Team {
	return append(teamsIn(st.legacy, ref), teamsIn(st.roles, ref)...)
}

func (s *teamService) loadServerTeams(ctx context.Context, server string) (serverTeams, error) {
	var st serverTeams
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st.legacy, err = s.teamRepo.ListByServer(gctx, server, models.TeamVersionLegacy)
		return err
	})
	g.Go(func() error {
		var err error
		st.roles, err = s.teamRepo.ListByServer(gctx, server, models.TeamVersionRoles)
		return err
	})
	if err := g.Wait(); err != nil {
		return serverTeams{}, fmt.Errorf("failed to list teams for %s: %w", server, err)
	}
	return st, nil
}

func teamsIn(teams []*models.Team, ref models.TournamentRef) []*models.Team {
	out := make([]*models.Team, 0)
	for _, team := range teams {
		if team.TournamentName == ref.Name && team.TournamentDay == ref.Day {
			out = append(out, team)
		}
	}
	return out
}

// matchTeamName prefers an exact, case-insensitive match with or without the
// "Team " prefix, then falls back to the first substring match.
func matchTeamName(teams []*models.Team, query string) *models.Team {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	for _, team := range teams {
		name := strings.ToLower(team.Name)
		if name == q || name == "team "+q {
			return team
		}
	}
	for _, team := range teams {
		if strings.Contains(strings.ToLower(team.Name), q) {
			return team
		}
	}
	return nil
}

func seatWrite(team *models.Team, playerID string, role models.Role) (repositories.TeamWrite, error) {
	switch r := team.Roster.(type) {
	case models.LegacyRoster:
		if r.Has(playerID) {
			return repositories.TeamWrite{}, ErrAlreadyOnTeam
		}
		if r.Len() >= models.MaxTeamSize {
			return repositories.TeamWrite{}, ErrTeamFull
		}
		return repositories.AddPlayer(team.Key(), playerID), nil
	case models.RoleRoster:
		roles, err := r.Roles.Assign(role, playerID)
		switch {
		case errors.Is(err, models.ErrRoleOccupied):
			return repositories.TeamWrite{}, ErrRoleTaken
		case errors.Is(err, models.ErrPlayerHasRole):
			return repositories.TeamWrite{}, ErrAlreadyOnTeam
		case err != nil:
			return repositories.TeamWrite{}, err
		}
		if r.Len() == 0 {
			adopted := *team
			adopted.Roster = models.RoleRoster{Roles: roles}
			return repositories.ReplaceTeam(&adopted), nil
		}
		return repositories.SetRoles(team.Key(), roles), nil
	default:
		return repositories.TeamWrite{}, fmt.Errorf("%w: %T", models.ErrUnknownTeamVersion, team.Roster)
	}
}

func unseatWrite(team *models.Team, playerID string) (repositories.TeamWrite, error) {
	switch r := team.Roster.(type) {
	case models.LegacyRoster:
		return repositories.RemovePlayer(team.Key(), playerID), nil
	case models.RoleRoster:
		return repositories.SetRoles(team.Key(), r.Roles.Release(playerID)), nil
	default:
		return repositories.TeamWrite{}, fmt.Errorf("%w: %T", models.ErrUnknownTeamVersion, team.Roster)
	}
}

func evictWrites(teams []*models.Team, playerID string, keep models.TeamKey) ([]repositories.TeamWrite, error) {
	writes := make([]repositories.TeamWrite, 0, 1)
	for _, team := range teams {
		if !team.Has(playerID) || team.Key() == keep {
			continue
		}
		w, err := unseatWrite(team, playerID)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}
	return writes, nil
}

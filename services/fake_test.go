package services

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
)

// memoryTeamRepo applies write intents with the same conditions as the
// store adapters: all or nothing, name must match, legacy adds respect the
// size cap.
type memoryTeamRepo struct {
	mu      sync.Mutex
	teams   map[string]*models.Team
	applied [][]repositories.TeamWrite
	failOn  func(w repositories.TeamWrite) error
}

func newMemoryTeamRepo(teams ...*models.Team) *memoryTeamRepo {
	r := &memoryTeamRepo{teams: make(map[string]*models.Team)}
	for _, t := range teams {
		r.teams[t.Key().String()] = cloneTeam(t)
	}
	return r
}

func cloneTeam(t *models.Team) *models.Team {
	c := *t
	switch r := t.Roster.(type) {
	case models.LegacyRoster:
		c.Roster = models.LegacyRoster{Members: r.Players()}
	case models.RoleRoster:
		c.Roster = models.RoleRoster{Roles: r.Roles.Release("")}
	}
	return &c
}

func (r *memoryTeamRepo) GetByKey(_ context.Context, key models.TeamKey) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[key.String()]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func (r *memoryTeamRepo) BatchGet(ctx context.Context, keys []models.TeamKey) ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(keys))
	for _, k := range keys {
		if t, err := r.GetByKey(ctx, k); err == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryTeamRepo) ListByServer(_ context.Context, server string, version models.TeamVersion) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0)
	for _, t := range r.teams {
		if t.ServerName == server && t.Version() == version {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })
	return out, nil
}

func (r *memoryTeamRepo) Apply(_ context.Context, writes ...repositories.TeamWrite) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[string]*models.Team)
	get := func(k string) (*models.Team, bool) {
		if t, ok := staged[k]; ok {
			return t, true
		}
		t, ok := r.teams[k]
		if !ok {
			return nil, false
		}
		return cloneTeam(t), true
	}

	results := make([]*models.Team, 0, len(writes))
	for _, w := range writes {
		if r.failOn != nil {
			if err := r.failOn(w); err != nil {
				return nil, err
			}
		}
		k := w.Key.String()
		var next *models.Team
		switch w.Op {
		case repositories.OpCreate:
			if _, ok := get(k); ok {
				return nil, repositories.ErrConditionFailed
			}
			next = cloneTeam(w.Team)
		case repositories.OpReplace:
			if _, ok := get(k); !ok {
				return nil, repositories.ErrConditionFailed
			}
			next = cloneTeam(w.Team)
		case repositories.OpAddPlayer, repositories.OpRemovePlayer:
			cur, ok := get(k)
			if !ok {
				return nil, repositories.ErrConditionFailed
			}
			legacy, isLegacy := cur.Roster.(models.LegacyRoster)
			if !isLegacy {
				return nil, repositories.ErrConditionFailed
			}
			if w.Op == repositories.OpAddPlayer {
				if !legacy.Has(w.PlayerID) && legacy.Len() >= models.MaxTeamSize {
					return nil, repositories.ErrConditionFailed
				}
				cur.Roster = legacy.With(w.PlayerID)
			} else {
				cur.Roster = legacy.Without(w.PlayerID)
			}
			next = cur
		case repositories.OpSetRoles:
			cur, ok := get(k)
			if !ok {
				return nil, repositories.ErrConditionFailed
			}
			cur.Roster = models.RoleRoster{Roles: w.Roles}
			next = cur
		default:
			return nil, repositories.ErrEmptyWrite
		}
		staged[k] = next
		results = append(results, cloneTeam(next))
	}

	for k, t := range staged {
		r.teams[k] = t
	}
	r.applied = append(r.applied, writes)
	return results, nil
}

func (r *memoryTeamRepo) get(key models.TeamKey) *models.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teams[key.String()]
}

func (r *memoryTeamRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.teams)
}

func (r *memoryTeamRepo) all() []*models.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	return out
}

// memoryTentativeRepo mirrors the conditions of the store adapters: adds fail
// for a present player, removes for an absent one.
type memoryTentativeRepo struct {
	mu     sync.Mutex
	lists  map[string]*models.TentativeList
	writes int
}

func newMemoryTentativeRepo(lists ...*models.TentativeList) *memoryTentativeRepo {
	r := &memoryTentativeRepo{lists: make(map[string]*models.TentativeList)}
	for _, l := range lists {
		r.lists[l.Key().String()] = models.NewTentativeList(l.ServerName, l.TournamentDetails, l.TentativePlayers...)
	}
	return r
}

func (r *memoryTentativeRepo) Get(_ context.Context, key models.TentativeKey) (*models.TentativeList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[key.String()]
	if !ok {
		return nil, repositories.ErrTentativeNotFound
	}
	return models.NewTentativeList(l.ServerName, l.TournamentDetails, l.TentativePlayers...), nil
}

func (r *memoryTentativeRepo) AddPlayer(_ context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[key.String()]
	if !ok {
		l = models.NewTentativeList(key.ServerName, models.TournamentRef{Name: key.TournamentName, Day: key.TournamentDay})
		r.lists[key.String()] = l
	}
	if l.Contains(playerID) {
		return nil, repositories.ErrConditionFailed
	}
	r.writes++
	l.TentativePlayers = append(l.TentativePlayers, playerID)
	return models.NewTentativeList(l.ServerName, l.TournamentDetails, l.TentativePlayers...), nil
}

func (r *memoryTentativeRepo) RemovePlayer(_ context.Context, key models.TentativeKey, playerID string) (*models.TentativeList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[key.String()]
	if !ok || !l.Contains(playerID) {
		return nil, repositories.ErrConditionFailed
	}
	r.writes++
	l.TentativePlayers = slices.DeleteFunc(l.TentativePlayers, func(p string) bool { return p == playerID })
	return models.NewTentativeList(l.ServerName, l.TournamentDetails, l.TentativePlayers...), nil
}

func (r *memoryTentativeRepo) ListByServer(_ context.Context, server string) ([]*models.TentativeList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.TentativeList, 0)
	for _, l := range r.lists {
		if l.ServerName == server {
			out = append(out, l)
		}
	}
	return out, nil
}

type memoryTournamentRepo struct {
	tournaments []models.Tournament
}

func (r *memoryTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.Ref() == t.Ref() {
			return repositories.ErrTournamentConflict
		}
	}
	r.tournaments = append(r.tournaments, *t)
	return nil
}

func (r *memoryTournamentRepo) Get(_ context.Context, name, day string) (*models.Tournament, error) {
	for _, t := range r.tournaments {
		if t.Name == name && t.Day == day {
			found := t
			return &found, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *memoryTournamentRepo) List(context.Context) ([]models.Tournament, error) {
	out := append([]models.Tournament{}, r.tournaments...)
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	published map[string][]*models.Team
}

func (n *recordingNotifier) PublishTeams(server string, teams []*models.Team) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.published == nil {
		n.published = make(map[string][]*models.Team)
	}
	n.published[server] = append(n.published[server], teams...)
}

var (
	t1         = models.TournamentRef{Name: "msi", Day: "1"}
	t2         = models.TournamentRef{Name: "msi", Day: "2"}
	t1Start    = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func legacyTeam(name string, ref models.TournamentRef, players ...string) *models.Team {
	return &models.Team{
		Name: name, ServerName: "Srv", TournamentName: ref.Name, TournamentDay: ref.Day,
		StartTime: t1Start, Roster: models.LegacyRoster{Members: players},
	}
}

func roleTeam(name string, ref models.TournamentRef, roles map[string]string) *models.Team {
	a, err := models.RoleAssignmentsFromMap(roles)
	if err != nil {
		panic(err)
	}
	return &models.Team{
		Name: name, ServerName: "Srv", TournamentName: ref.Name, TournamentDay: ref.Day,
		StartTime: t1Start, Roster: models.RoleRoster{Roles: a},
	}
}

type testEnv struct {
	teams     *memoryTeamRepo
	tentative *memoryTentativeRepo
	notifier  *recordingNotifier
	svc       TeamService
}

func setupTestService(teams ...*models.Team) *testEnv {
	env := &testEnv{
		teams:     newMemoryTeamRepo(teams...),
		tentative: newMemoryTentativeRepo(),
		notifier:  &recordingNotifier{},
	}
	tournaments := &memoryTournamentRepo{tournaments: []models.Tournament{
		{Name: t1.Name, Day: t1.Day, StartTime: t1Start},
		{Name: t2.Name, Day: t2.Day, StartTime: t1Start.Add(24 * time.Hour)},
	}}
	tentative := NewTentativeService(env.tentative, discardLog)
	env.svc = NewTeamService(env.teams, tournaments, tentative, env.notifier, discardLog)
	return env
}

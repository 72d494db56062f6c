package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/services"
)

type TeamHandler struct {
	teamService       services.TeamService
	queryService      services.TeamQueryService
	tournamentService services.TournamentService
	now               func() time.Time
}

func NewTeamHandler(ts services.TeamService, qs services.TeamQueryService, tours services.TournamentService) *TeamHandler {
	return &TeamHandler{
		teamService:       ts,
		queryService:      qs,
		tournamentService: tours,
		now:               time.Now,
	}
}

func writeRegistration(w http.ResponseWriter, r *http.Request, res *services.RegistrationResult) {
	if res.Blocked() {
		err := writeJSON(w, http.StatusOK, jsonResponse{
			"registered":   false,
			"currentTeams": res.CurrentTeams,
		}, nil)
		if err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	removed := res.Removed
	if removed == nil {
		removed = []*models.Team{}
	}
	err := writeJSON(w, status, jsonResponse{
		"registered":  true,
		"created":     res.Created,
		"team":        res.Team,
		"removedFrom": removed,
	}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Register godoc
// @Summary Register a player on a team
// @Tags teams
// @Description Places the player on the first empty team of the first offered tournament that has teams, or creates a new one. A player alone on their team is not moved and the current team is returned instead.
// @Accept json
// @Produce json
// @Param input body registerRequest true "Player, server and tournaments. Omit tournaments to use every open one."
// @Success 200 {object} map[string]interface{} "Joined an existing team, or blocked with currentTeams"
// @Success 201 {object} map[string]interface{} "Created a new team"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 422 {object} map[string]interface{} "Validation failed or registration closed"
// @Router /api/teams/register [post]
func (h *TeamHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if problems := requireFields(map[string]string{"playerId": input.PlayerID, "serverName": input.ServerName}); len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	tournaments, err := h.tournamentService.ResolveOpen(r.Context(), input.Tournaments, h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	res, err := h.teamService.RegisterPlayer(r.Context(), input.PlayerID, input.ServerName, tournaments)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeRegistration(w, r, res)
}

// Join godoc
// @Summary Join a named team
// @Tags teams
// @Accept json
// @Produce json
// @Param input body joinRequest true "Team name is matched case-insensitively, with or without the Team prefix"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Team not found"
// @Failure 409 {object} map[string]string "Team full or player already on it"
// @Failure 422 {object} map[string]interface{}
// @Router /api/teams/join [post]
func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	var input joinRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	problems := requireFields(map[string]string{
		"playerId":   input.PlayerID,
		"serverName": input.ServerName,
		"teamName":   input.TeamName,
	})
	if len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	tournaments, err := h.tournamentService.ResolveOpen(r.Context(), input.Tournaments, h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	res, err := h.teamService.RegisterWithSpecificTeam(r.Context(), input.PlayerID, input.ServerName, tournaments, input.TeamName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeRegistration(w, r, res)
}

// Unregister godoc
// @Summary Remove a player from their teams
// @Tags teams
// @Accept json
// @Produce json
// @Param input body registerRequest true "Omit tournaments to use every open one"
// @Success 200 {object} map[string]interface{} "The updated teams"
// @Failure 422 {object} map[string]interface{}
// @Router /api/teams/unregister [post]
func (h *TeamHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	h.unregister(w, r, h.teamService.DeregisterPlayer)
}

// RegisterV2 godoc
// @Summary Register a player for a role
// @Tags teams-v2
// @Description Places the player on the first team of the resolved tournament where the role is free, or creates a new one.
// @Accept json
// @Produce json
// @Param input body registerV2Request true "Role is one of Top, Jg, Mid, Bot, Supp"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Validation failed or player already holds a solo team everywhere"
// @Router /api/v2/teams/register [post]
func (h *TeamHandler) RegisterV2(w http.ResponseWriter, r *http.Request) {
	var input registerV2Request
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	problems := requireFields(map[string]string{"playerId": input.PlayerID, "serverName": input.ServerName})
	role := parseRole(problems, input.Role)
	if len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	tournaments, err := h.tournamentService.ResolveOpen(r.Context(), input.Tournaments, h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	res, err := h.teamService.RegisterPlayerV2(r.Context(), input.PlayerID, role, input.ServerName, tournaments)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeRegistration(w, r, res)
}

// JoinV2 godoc
// @Summary Join a named team for a role
// @Tags teams-v2
// @Accept json
// @Produce json
// @Param input body joinV2Request true "Join request"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Team not found"
// @Failure 409 {object} map[string]string "Role taken or player already on the team"
// @Failure 422 {object} map[string]interface{}
// @Router /api/v2/teams/join [post]
func (h *TeamHandler) JoinV2(w http.ResponseWriter, r *http.Request) {
	var input joinV2Request
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	problems := requireFields(map[string]string{
		"playerId":   input.PlayerID,
		"serverName": input.ServerName,
		"teamName":   input.TeamName,
	})
	validTournament(problems, "tournament", input.Tournament)
	role := parseRole(problems, input.Role)
	if len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	tournaments, err := h.tournamentService.ResolveOpen(r.Context(), []models.TournamentRef{input.Tournament}, h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	res, err := h.teamService.RegisterWithSpecificTeamV2(r.Context(), input.PlayerID, role, input.ServerName, tournaments[0], input.TeamName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeRegistration(w, r, res)
}

// UnregisterV2 godoc
// @Summary Remove a player from their role teams
// @Tags teams-v2
// @Accept json
// @Produce json
// @Param input body registerRequest true "Omit tournaments to use every open one"
// @Success 200 {object} map[string]interface{} "The updated teams"
// @Router /api/v2/teams/unregister [post]
func (h *TeamHandler) UnregisterV2(w http.ResponseWriter, r *http.Request) {
	h.unregister(w, r, h.teamService.DeregisterPlayerV2)
}

func (h *TeamHandler) unregister(w http.ResponseWriter, r *http.Request, deregister func(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error)) {
	var input registerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if problems := requireFields(map[string]string{"playerId": input.PlayerID, "serverName": input.ServerName}); len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	// Leaving is allowed after registration closes, so explicit tournaments
	// are used as given.
	tournaments := input.Tournaments
	if len(tournaments) == 0 {
		var err error
		tournaments, err = h.tournamentService.ResolveOpen(r.Context(), nil, h.now())
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	teams, err := deregister(r.Context(), input.PlayerID, input.ServerName, tournaments)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListServerTeams godoc
// @Summary Teams of a server
// @Tags teams
// @Description Teams of both shapes with player names, roles and preferred champions. Without a tournament filter only open tournaments are listed.
// @Produce json
// @Param server path string true "Discord server name"
// @Param tournamentName query string false "Tournament name"
// @Param tournamentDay query string false "Tournament day"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/servers/{server}/teams [get]
func (h *TeamHandler) ListServerTeams(w http.ResponseWriter, r *http.Request) {
	server, err := serverFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	ref, filtered, err := tournamentFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var views []services.TeamView
	if filtered {
		views, err = h.queryService.GetTournamentTeamViews(r.Context(), server, ref)
	} else {
		views, err = h.queryService.GetActiveTeamViews(r.Context(), server, h.now())
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

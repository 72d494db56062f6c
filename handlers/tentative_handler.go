package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/services"
)

type TentativeHandler struct {
	teamService       services.TeamService
	tentativeService  services.TentativeService
	tournamentService services.TournamentService
	now               func() time.Time
}

func NewTentativeHandler(ts services.TeamService, tent services.TentativeService, tours services.TournamentService) *TentativeHandler {
	return &TentativeHandler{
		teamService:       ts,
		tentativeService:  tent,
		tournamentService: tours,
		now:               time.Now,
	}
}

// Toggle godoc
// @Summary Toggle a player's tentative status
// @Tags tentative
// @Description Removes the player from the tentative list when present. Otherwise removes them from their teams in that tournament and adds them.
// @Accept json
// @Produce json
// @Param input body tentativeRequest true "Toggle request"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Tournament not found"
// @Failure 422 {object} map[string]interface{}
// @Router /api/tentative [post]
func (h *TentativeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var input tentativeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	problems := requireFields(map[string]string{"playerId": input.PlayerID, "serverName": input.ServerName})
	validTournament(problems, "tournament", input.Tournament)
	if len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	tournaments, err := h.tournamentService.ResolveOpen(r.Context(), []models.TournamentRef{input.Tournament}, h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	res, err := h.teamService.ToggleTentative(r.Context(), input.PlayerID, input.ServerName, tournaments[0])
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{
		"tentative":   res.List,
		"onTentative": res.OnTentative,
		"removedFrom": res.RemovedFrom,
	}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListForServer godoc
// @Summary Tentative lists of a server
// @Tags tentative
// @Produce json
// @Param server path string true "Discord server name"
// @Success 200 {object} map[string]interface{}
// @Router /api/servers/{server}/tentative [get]
func (h *TentativeHandler) ListForServer(w http.ResponseWriter, r *http.Request) {
	server, err := serverFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lists, err := h.tentativeService.ListForServer(r.Context(), server)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tentative": lists}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	now               func() time.Time
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		now:               time.Now,
	}
}

// List godoc
// @Summary List tournaments
// @Tags tournaments
// @Description Without filters returns the tournaments open for registration. name and day filter every known tournament by substring.
// @Produce json
// @Param name query string false "Tournament name substring"
// @Param day query string false "Tournament day substring"
// @Success 200 {object} map[string]interface{}
// @Router /api/tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := strings.TrimSpace(query.Get("name"))
	day := strings.TrimSpace(query.Get("day"))

	var (
		tournaments []models.Tournament
		err         error
	)
	if name == "" && day == "" {
		tournaments, err = h.tournamentService.ListOpen(r.Context(), h.now())
	} else {
		tournaments, err = h.tournamentService.Find(r.Context(), name, day)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Add a tournament to the catalog
// @Tags tournaments
// @Accept json
// @Produce json
// @Param input body models.Tournament true "Tournament"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Tournament already exists"
// @Failure 422 {object} map[string]interface{}
// @Router /api/tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.Tournament
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Create(r.Context(), &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": input}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

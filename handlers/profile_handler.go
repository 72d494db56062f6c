package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/services"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(ps services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: ps}
}

// Upsert godoc
// @Summary Create or update a player profile
// @Tags players
// @Accept json
// @Produce json
// @Param playerID path string true "Discord player id"
// @Param input body profileRequest true "Profile"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/players/{playerID} [put]
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	playerID := strings.TrimSpace(chi.URLParam(r, "playerID"))
	if playerID == "" {
		badRequestResponse(w, r, errors.New("missing playerID in URL"))
		return
	}

	var input profileRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	champions := input.PreferredChampions
	if champions == nil {
		champions = []string{}
	}
	sub := &models.Subscription{
		PlayerID:           playerID,
		PlayerName:         strings.TrimSpace(input.PlayerName),
		ServerName:         strings.TrimSpace(input.ServerName),
		PreferredChampions: champions,
	}
	if err := h.profileService.Upsert(r.Context(), sub); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": sub}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

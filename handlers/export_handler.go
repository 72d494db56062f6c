package handlers

import (
	"net/http"

	"github.com/Dosada05/clash-teams/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(es services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

// ExportRoster godoc
// @Summary Export a tournament roster
// @Tags exports
// @Description Writes the server's teams for one tournament to object storage as JSON.
// @Accept json
// @Produce json
// @Param server path string true "Discord server name"
// @Param input body exportRequest true "Tournament to export"
// @Success 201 {object} services.ExportResult
// @Failure 422 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Export storage not configured"
// @Router /api/servers/{server}/exports [post]
func (h *ExportHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	server, err := serverFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input exportRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	problems := map[string]string{}
	validTournament(problems, "tournament", input.Tournament)
	if len(problems) > 0 {
		failedValidationResponse(w, r, problems)
		return
	}

	res, err := h.exportService.ExportRoster(r.Context(), server, input.Tournament)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": res}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

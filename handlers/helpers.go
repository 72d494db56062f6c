package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
	"github.com/Dosada05/clash-teams/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

// Stable error codes returned next to the human readable message.
const (
	codeTeamNotFound       = "TEAM_NOT_FOUND"
	codeTournamentNotFound = "TOURNAMENT_NOT_FOUND"
	codeRoleTaken          = "ROLE_TAKEN"
	codeTeamFull           = "TEAM_FULL"
	codeAlreadyOnTeam      = "ALREADY_ON_TEAM"
	codeIneligibleToCreate = "INELIGIBLE_TO_CREATE"
	codeIneligible         = "INELIGIBLE"
	codeRegistrationClosed = "REGISTRATION_CLOSED"
	codeNoTournaments      = "NO_TOURNAMENTS"
	codeTournamentExists   = "TOURNAMENT_EXISTS"
	codeConcurrentUpdate   = "CONCURRENT_UPDATE"
	codeExportDisabled     = "EXPORT_DISABLED"
	codeValidation         = "VALIDATION_FAILED"
	codeBadRequest         = "BAD_REQUEST"
	codeNotFound           = "NOT_FOUND"
	codeInternal           = "INTERNAL"
)

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message interface{}) {
	env := jsonResponse{"error": message, "code": code}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write error response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, codeInternal, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, codeValidation, errors)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, code string, message string) {
	errorResponse(w, r, http.StatusNotFound, code, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, code string, message string) {
	errorResponse(w, r, http.StatusConflict, code, message)
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, code string, message string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, code, message)
}

// mapServiceErrorToHTTP renders soft registration failures as 4xx with a
// stable code. Anything unrecognised is a 500.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		failedValidationResponse(w, r, validationErr.Fields)
	case errors.Is(err, services.ErrValidationFailed):
		unprocessableResponse(w, r, codeValidation, err.Error())

	case errors.Is(err, services.ErrTeamNotFound):
		notFoundResponse(w, r, codeTeamNotFound, err.Error())
	case errors.Is(err, services.ErrTournamentNotFound):
		notFoundResponse(w, r, codeTournamentNotFound, err.Error())

	case errors.Is(err, services.ErrRoleTaken):
		conflictResponse(w, r, codeRoleTaken, err.Error())
	case errors.Is(err, services.ErrTeamFull):
		conflictResponse(w, r, codeTeamFull, err.Error())
	case errors.Is(err, services.ErrAlreadyOnTeam):
		conflictResponse(w, r, codeAlreadyOnTeam, err.Error())
	case errors.Is(err, services.ErrTournamentConflict):
		conflictResponse(w, r, codeTournamentExists, err.Error())
	case errors.Is(err, repositories.ErrConditionFailed):
		conflictResponse(w, r, codeConcurrentUpdate, "the team changed while the request was processed, try again")

	case errors.Is(err, services.ErrIneligibleToCreate):
		unprocessableResponse(w, r, codeIneligibleToCreate, err.Error())
	case errors.Is(err, services.ErrIneligible):
		unprocessableResponse(w, r, codeIneligible, err.Error())
	case errors.Is(err, services.ErrRegistrationClosed):
		unprocessableResponse(w, r, codeRegistrationClosed, err.Error())
	case errors.Is(err, services.ErrNoTournaments):
		unprocessableResponse(w, r, codeNoTournaments, err.Error())

	case errors.Is(err, services.ErrStorageDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, codeExportDisabled, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func serverFromURL(r *http.Request) (string, error) {
	server := strings.TrimSpace(chi.URLParam(r, "server"))
	if server == "" {
		return "", errors.New("missing server in URL")
	}
	return server, nil
}

// tournamentFromQuery reads tournamentName and tournamentDay. ok is false
// when neither is set.
func tournamentFromQuery(r *http.Request) (ref models.TournamentRef, ok bool, err error) {
	q := r.URL.Query()
	ref = models.TournamentRef{
		Name: strings.TrimSpace(q.Get("tournamentName")),
		Day:  strings.TrimSpace(q.Get("tournamentDay")),
	}
	switch {
	case ref.Name == "" && ref.Day == "":
		return ref, false, nil
	case ref.Name == "" || ref.Day == "":
		return ref, false, errors.New("tournamentName and tournamentDay must be given together")
	}
	return ref, true, nil
}

// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/matchadmin"
	"github.com/pachanga/matchday/internal/result"
	"github.com/pachanga/matchday/internal/roster"
	"github.com/pachanga/matchday/internal/teams"
)

// JSONError is the standard error body.
type JSONError struct {
	Message string `json:"message"`
	// Set when the command needs an explicit confirmation; the client
	// resubmits with this token to proceed.
	ConfirmToken string `json:"confirmToken,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError maps engine errors onto HTTP statuses and the standard error
// body. Confirmation-required results become 409 with the token the client
// must echo back.
func WriteError(w http.ResponseWriter, err error) {
	var confirm *matchadmin.ConfirmationRequiredError
	if errors.As(err, &confirm) {
		WriteJSON(w, http.StatusConflict, JSONError{
			Message:      confirm.Error(),
			ConfirmToken: string(confirm.Token),
			Prompt:       confirm.Prompt,
		})
		return
	}

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, matchadmin.ErrNotManager):
		status = http.StatusForbidden
	case errors.Is(err, roster.ErrUnknownPlayer),
		errors.Is(err, teams.ErrTeamNotFound),
		errors.Is(err, teams.ErrMemberNotFound):
		status = http.StatusNotFound
	case errors.Is(err, matchadmin.ErrPlayerNotAttending),
		errors.Is(err, matchadmin.ErrUnknownContainer),
		errors.Is(err, matchadmin.ErrInvalidMove),
		errors.Is(err, teams.ErrTeamCountRange),
		errors.Is(err, roster.ErrUnknownStatus):
		status = http.StatusBadRequest
	case errors.Is(err, matchadmin.ErrNoTeams),
		errors.Is(err, matchadmin.ErrUnassignedPlayers),
		errors.Is(err, matchadmin.ErrMissingPositions),
		errors.Is(err, matchadmin.ErrResultNotFinished),
		errors.Is(err, matchadmin.ErrSavePending),
		errors.Is(err, result.ErrResultLocked):
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, JSONError{Message: err.Error()})
}

// internal/api/matchadmin/handlers.go
// HTTP surface for the match admin engine. Identity is established upstream;
// handlers trust the X-User-ID header for the acting admin. The manager
// capability itself is still decided by the engine at session load.
package matchadmin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/api"
	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/journal"
	"github.com/pachanga/matchday/internal/matchadmin"
)

var (
	sessions *matchadmin.Manager
	auditLog *journal.Journal
)

// InitHandlers wires the package to the session manager. The journal may be
// nil when auditing is disabled.
func InitHandlers(manager *matchadmin.Manager, jnl *journal.Journal) {
	sessions = manager
	auditLog = jnl
}

func actorID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func loadSession(w http.ResponseWriter, r *http.Request) (*matchadmin.Session, bool) {
	matchID := mux.Vars(r)["matchId"]
	session, err := sessions.Session(r.Context(), matchID, actorID(r))
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("match_id", matchID).Msg("Failed to load admin session")
		api.WriteError(w, err)
		return nil, false
	}
	return session, true
}

// HandleState renders the full admin screen state, derived fields included.
func HandleState(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleToasts drains pending toast notifications.
func HandleToasts(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, session.Toasts())
}

// HandleSetAttendance moves a player between attendance partitions.
func HandleSetAttendance(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status    clubapi.AttendanceStatus `json:"status"`
		DestIndex int                      `json:"destIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := mux.Vars(r)["userId"]
	if err := session.SetAttendance(r.Context(), userID, payload.Status, payload.DestIndex); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleMove is the generic container-move entrypoint behind drag gestures.
func HandleMove(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		SourceContainer string `json:"sourceContainer"`
		DestContainer   string `json:"destContainer"`
		ItemIndex       int    `json:"itemIndex"`
		DestIndex       int    `json:"destIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := session.MoveItem(r.Context(), payload.SourceContainer, payload.DestContainer, payload.ItemIndex, payload.DestIndex)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleGenerateTeams bulk-creates teams.
func HandleGenerateTeams(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := session.GenerateTeams(r.Context(), payload.Count); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleUpdateTeam renames or recolors a team.
func HandleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	teamID := mux.Vars(r)["teamId"]
	if err := session.RenameTeam(r.Context(), teamID, payload.Name, payload.Color); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleDeleteTeam deletes a team; requires the confirm token query param.
func HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	confirm := matchadmin.ConfirmToken(r.URL.Query().Get("confirm"))
	teamID := mux.Vars(r)["teamId"]
	if err := session.DeleteTeam(r.Context(), teamID, confirm); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleAssignPlayer assigns a player to a team, or updates the position of
// an already-assigned player.
func HandleAssignPlayer(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Position  clubapi.Position `json:"position"`
		DestIndex int              `json:"destIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	if err := session.Assign(r.Context(), vars["userId"], vars["teamId"], payload.Position, payload.DestIndex); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleSetPosition updates one assigned player's position.
func HandleSetPosition(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Position clubapi.Position `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	if err := session.SetPosition(r.Context(), vars["teamId"], vars["userId"], payload.Position); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleRemovePlayer returns a player to the unassigned pool.
func HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := session.Unassign(r.Context(), vars["userId"], vars["teamId"]); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleSetEntry edits one player's goal line locally.
func HandleSetEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Goals    int `json:"goals"`
		OwnGoals int `json:"ownGoals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := mux.Vars(r)["userId"]
	if err := session.SetGoals(userID, payload.Goals); err != nil {
		api.WriteError(w, err)
		return
	}
	if err := session.SetOwnGoals(userID, payload.OwnGoals); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleSaveResult persists the ledger; confirmation-gated when finishing or
// overwriting a finished result.
func HandleSaveResult(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Finished bool   `json:"finished"`
		Confirm  string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := session.SaveResult(r.Context(), payload.Finished, matchadmin.ConfirmToken(payload.Confirm)); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleUnlockResult clears the result lock after confirmation.
func HandleUnlockResult(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := session.UnlockResult(r.Context(), matchadmin.ConfirmToken(payload.Confirm)); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, session.State())
}

// HandleFinalize runs the finalize gate and notifies the players.
func HandleFinalize(w http.ResponseWriter, r *http.Request) {
	session, ok := loadSession(w, r)
	if !ok {
		return
	}

	if err := session.FinishAndNotify(r.Context()); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"notified": true})
}

// HandleJournal lists recent audit entries for the match.
func HandleJournal(w http.ResponseWriter, r *http.Request) {
	if auditLog == nil {
		api.WriteJSON(w, http.StatusOK, []journal.Entry{})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	matchID := mux.Vars(r)["matchId"]
	entries, err := auditLog.ListRecent(r.Context(), matchID, limit)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("match_id", matchID).Msg("Failed to list journal entries")
		api.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	api.WriteJSON(w, http.StatusOK, entries)
}

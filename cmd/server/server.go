// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pachanga/matchday/internal/api"
	apimatchadmin "github.com/pachanga/matchday/internal/api/matchadmin"
	"github.com/pachanga/matchday/internal/config"
	"github.com/pachanga/matchday/internal/journal"
	"github.com/pachanga/matchday/internal/matchadmin"
)

func newServer(cfg *config.Config, manager *matchadmin.Manager, jnl *journal.Journal) *http.Server {
	router := mux.NewRouter()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	apimatchadmin.InitHandlers(manager, jnl)
	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(router *mux.Router) {
	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	admin := router.PathPrefix("/api/v1/matches/{matchId}/admin").Subrouter()

	admin.HandleFunc("", apimatchadmin.HandleState).Methods(http.MethodGet)
	admin.HandleFunc("/toasts", apimatchadmin.HandleToasts).Methods(http.MethodGet)
	admin.HandleFunc("/journal", apimatchadmin.HandleJournal).Methods(http.MethodGet)

	admin.HandleFunc("/attendance/{userId}", apimatchadmin.HandleSetAttendance).Methods(http.MethodPut)
	admin.HandleFunc("/move", apimatchadmin.HandleMove).Methods(http.MethodPost)

	admin.HandleFunc("/teams/generate", apimatchadmin.HandleGenerateTeams).Methods(http.MethodPost)
	admin.HandleFunc("/teams/{teamId}", apimatchadmin.HandleUpdateTeam).Methods(http.MethodPut)
	admin.HandleFunc("/teams/{teamId}", apimatchadmin.HandleDeleteTeam).Methods(http.MethodDelete)
	admin.HandleFunc("/teams/{teamId}/players/{userId}", apimatchadmin.HandleAssignPlayer).Methods(http.MethodPut)
	admin.HandleFunc("/teams/{teamId}/players/{userId}/position", apimatchadmin.HandleSetPosition).Methods(http.MethodPut)
	admin.HandleFunc("/teams/{teamId}/players/{userId}", apimatchadmin.HandleRemovePlayer).Methods(http.MethodDelete)

	admin.HandleFunc("/entries/{userId}", apimatchadmin.HandleSetEntry).Methods(http.MethodPut)
	admin.HandleFunc("/result", apimatchadmin.HandleSaveResult).Methods(http.MethodPut)
	admin.HandleFunc("/result/unlock", apimatchadmin.HandleUnlockResult).Methods(http.MethodPost)
	admin.HandleFunc("/finalize", apimatchadmin.HandleFinalize).Methods(http.MethodPost)
}

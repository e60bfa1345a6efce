// internal/matchadmin/session.go
// Package matchadmin is the admin screen engine for one scheduled match: it
// owns the in-memory roster partition, team registry and result ledger for
// the lifetime of the session, wraps every mutation in an apply-locally,
// confirm-remotely, reconcile-or-rollback cycle against the club API, and
// gates the finalize-and-notify action behind multi-part validation.
package matchadmin

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/journal"
	"github.com/pachanga/matchday/internal/result"
	"github.com/pachanga/matchday/internal/roster"
	"github.com/pachanga/matchday/internal/teams"
	"github.com/pachanga/matchday/internal/toast"
)

// Session is one admin's view of one match. The mutex guards the in-memory
// state only; it is never held across a network call, so overlapping
// mutations on the same resource race and the later confirmation wins at the
// merge step.
type Session struct {
	matchID string
	actorID string
	api     clubapi.API
	journal *journal.Journal // optional; nil disables auditing

	mu         sync.Mutex
	match      *clubapi.Match
	roster     *roster.Directory
	teams      *teams.Registry
	ledger     *result.Ledger
	toasts     *toast.Center
	isManager  bool
	saving     bool
	lastActive time.Time
	panelErrs  map[string]string
}

// NewSession creates an unloaded session. Call Load before use.
func NewSession(matchID, actorID string, api clubapi.API, jnl *journal.Journal) *Session {
	return &Session{
		matchID:    matchID,
		actorID:    actorID,
		api:        api,
		journal:    jnl,
		roster:     roster.NewDirectory(),
		teams:      teams.NewRegistry(),
		ledger:     result.NewLedger(),
		toasts:     toast.NewCenter(),
		lastActive: time.Now(),
		panelErrs:  make(map[string]string),
	}
}

// Load performs the screen-entry fan-out: match summary, attendance
// partition, team list and result are fetched concurrently and each failure
// degrades its own panel instead of aborting the whole load. The manager
// capability check happens here, once; it is not repeated per call.
func (s *Session) Load(ctx context.Context) error {
	logger := log.Ctx(ctx).With().
		Str("component", "matchadmin").
		Str("match_id", s.matchID).
		Logger()
	logger.Info().Msg("Loading match admin session")

	var (
		match    *clubapi.Match
		summary  *clubapi.AttendanceSummary
		teamList []clubapi.Team
		res      *clubapi.MatchResult
	)
	panelErrs := make(map[string]string)
	var panelMu sync.Mutex
	degrade := func(panel string, err error) {
		logger.Warn().Err(err).Str("panel", panel).Msg("Panel load failed; degrading")
		panelMu.Lock()
		panelErrs[panel] = err.Error()
		panelMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.api.GetMatch(gctx, s.matchID)
		if err != nil {
			degrade("match", err)
			return nil
		}
		match = m
		return nil
	})
	g.Go(func() error {
		sm, err := s.api.GetAttendance(gctx, s.matchID)
		if err != nil {
			degrade("attendance", err)
			return nil
		}
		summary = sm
		return nil
	})
	g.Go(func() error {
		tl, err := s.api.ListTeams(gctx, s.matchID)
		if err != nil {
			degrade("teams", err)
			return nil
		}
		teamList = tl
		return nil
	})
	g.Go(func() error {
		r, err := s.api.GetResult(gctx, s.matchID)
		if err != nil {
			degrade("result", err)
			return nil
		}
		res = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelErrs = panelErrs
	if match != nil {
		s.match = match
		s.isManager = match.ManagerUserID == s.actorID
	}
	if summary != nil {
		s.roster.Replace(summary)
	}
	if teamList != nil {
		s.teams.Replace(teamList)
	}
	if res != nil {
		s.ledger.Replace(res)
	}
	s.ledger.Reconcile(s.teams.Teams())
	s.lastActive = time.Now()

	logger.Info().
		Bool("is_manager", s.isManager).
		Int("invitees", s.roster.Len()).
		Int("teams", s.teams.Count()).
		Msg("Match admin session loaded")
	return nil
}

// State is the renderable snapshot of a session, with every derived field
// (unassigned pool, scoreboard) recomputed from canonical state on read.
type State struct {
	Match        *clubapi.Match          `json:"match,omitempty"`
	IsManager    bool                    `json:"isManager"`
	Attending    []roster.Player         `json:"attending"`
	Pending      []roster.Player         `json:"pending"`
	NotAttending []roster.Player         `json:"notAttending"`
	Unassigned   []roster.Player         `json:"unassigned"`
	Teams        []teams.Team            `json:"teams"`
	Scoreboard   []result.TeamScore      `json:"scoreboard"`
	Entries      map[string]result.Entry `json:"entries"`
	Finished     bool                    `json:"finished"`
	Locked       bool                    `json:"locked"`
	PanelErrors  map[string]string       `json:"panelErrors,omitempty"`
}

// State snapshots the session for rendering.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentTeams := s.teams.Teams()
	return State{
		Match:        s.match,
		IsManager:    s.isManager,
		Attending:    s.roster.Attending(),
		Pending:      s.roster.Partition(clubapi.StatusPending),
		NotAttending: s.roster.Partition(clubapi.StatusNotAttending),
		Unassigned:   s.teams.UnassignedPool(s.roster.Attending()),
		Teams:        currentTeams,
		Scoreboard:   s.ledger.Scoreboard(currentTeams),
		Entries:      s.ledger.Entries(),
		Finished:     s.ledger.Finished(),
		Locked:       s.ledger.Locked(),
		PanelErrors:  s.panelErrs,
	}
}

// Toasts drains the pending toast notifications.
func (s *Session) Toasts() []toast.Toast {
	return s.toasts.Drain()
}

// IsManager reports the capability determined at load time.
func (s *Session) IsManager() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isManager
}

// LastActive reports when the session last served a command.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close tears the session down. Only the toast auto-dismiss timer is
// cleared; in-flight requests are never cancelled.
func (s *Session) Close() {
	s.toasts.Close()
}

func (s *Session) requireManager() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	if !s.isManager {
		return ErrNotManager
	}
	return nil
}

// refreshTeams re-fetches the authoritative team list after a failed or
// partially applied mutation, restoring ground truth even when the local
// rollback was imprecise.
func (s *Session) refreshTeams(ctx context.Context) {
	fresh, err := s.api.ListTeams(ctx, s.matchID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("match_id", s.matchID).
			Msg("Team refresh after failed mutation also failed")
		return
	}
	s.mu.Lock()
	s.teams.Replace(fresh)
	s.ledger.Reconcile(s.teams.Teams())
	s.mu.Unlock()
}

// record writes an audit row; journal failures are logged, never surfaced.
func (s *Session) record(ctx context.Context, action, outcome string, before, after map[string]any, detail string) {
	if s.journal == nil {
		return
	}
	err := s.journal.Record(ctx, journal.Entry{
		MatchID: s.matchID,
		Action:  action,
		Actor:   s.actorID,
		Before:  before,
		After:   after,
		Outcome: outcome,
		Detail:  detail,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("action", action).
			Str("match_id", s.matchID).
			Msg("Failed to journal mutation")
	}
}

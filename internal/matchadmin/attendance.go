// internal/matchadmin/attendance.go
package matchadmin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/clubapi"
)

// SetAttendance moves a player between attendance partitions using the
// optimistic protocol: the partition move is applied locally first, the
// remote confirmation runs after, and on success the server's fresh summary
// replaces the optimistic guess. When a team-assigned player leaves
// ATTENDING, the team unassignment is chained as a dependent call after the
// attendance confirmation succeeds.
func (s *Session) SetAttendance(ctx context.Context, userID string, status clubapi.AttendanceStatus, destIndex int) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	logger := log.Ctx(ctx).With().
		Str("component", "matchadmin").
		Str("match_id", s.matchID).
		Str("user_id", userID).
		Str("status", string(status)).
		Logger()

	s.mu.Lock()
	move, err := s.roster.Move(userID, status, destIndex)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	assignedTeamID, _, _, wasAssigned := s.teams.FindMember(userID)
	s.mu.Unlock()

	before := map[string]any{"status": string(move.From), "team_id": assignedTeamID}
	after := map[string]any{"status": string(status)}

	summary, err := s.api.SetAttendance(ctx, s.matchID, userID, status)
	if err != nil {
		logger.Warn().Err(err).Str("decision", "rolled_back").Msg("Attendance change rejected by backend")
		s.mu.Lock()
		if revertErr := s.roster.Revert(move); revertErr != nil {
			logger.Error().Err(revertErr).Msg("Attendance rollback failed; state restored on next refresh")
		}
		s.mu.Unlock()
		s.toasts.Error("Could not update attendance")
		s.record(ctx, "attendance.set", "rolled_back", before, after, err.Error())
		return fmt.Errorf("set attendance for %s: %w", userID, err)
	}

	s.mu.Lock()
	s.roster.Replace(summary)
	s.mu.Unlock()

	// Dependent unassignment: a player who is no longer attending cannot
	// keep a team slot.
	if wasAssigned && status != clubapi.StatusAttending {
		s.mu.Lock()
		_, removeErr := s.teams.Remove(userID)
		s.ledger.Reconcile(s.teams.Teams())
		s.mu.Unlock()
		if removeErr == nil {
			if err := s.api.RemovePlayer(ctx, s.matchID, assignedTeamID, userID); err != nil {
				// The local unassignment may now be ahead of the backend;
				// refresh the team view so nothing dangles locally.
				logger.Warn().Err(err).Msg("Chained unassignment failed; refreshing teams")
				s.refreshTeams(ctx)
				s.toasts.Error("Attendance updated, but the player could not be removed from their team")
				s.record(ctx, "attendance.set", "confirmed", before, after, "chained unassign failed: "+err.Error())
				return nil
			}
		}
	}

	logger.Info().Bool("unassigned", wasAssigned && status != clubapi.StatusAttending).Msg("Attendance updated")
	s.toasts.Success("Attendance updated")
	s.record(ctx, "attendance.set", "confirmed", before, after, "")
	return nil
}

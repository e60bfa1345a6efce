// internal/matchadmin/teamops.go
package matchadmin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/teams"
)

// GenerateTeams bulk-creates count teams with generated names and colors.
// The backend creates them in one call, so nothing is applied locally until
// the authoritative list comes back; a transport failure applies nothing.
func (s *Session) GenerateTeams(ctx context.Context, count int) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	plans, err := teams.GeneratePlans(count)
	if err != nil {
		return err
	}

	created, err := s.api.CreateTeams(ctx, s.matchID, plans)
	if err != nil {
		s.toasts.Error("Could not create teams")
		s.record(ctx, "team.generate", "rolled_back", nil, map[string]any{"count": count}, err.Error())
		return fmt.Errorf("generate %d teams: %w", count, err)
	}

	s.mu.Lock()
	s.teams.Replace(created)
	s.ledger.Reconcile(s.teams.Teams())
	s.mu.Unlock()

	log.Ctx(ctx).Info().
		Str("component", "matchadmin").
		Str("match_id", s.matchID).
		Int("count", len(created)).
		Msg("Teams generated")
	s.toasts.Success(fmt.Sprintf("%d teams created", len(created)))
	s.record(ctx, "team.generate", "confirmed", nil, map[string]any{"count": len(created)}, "")
	return nil
}

// Assign places an attending player on a team at destIndex. A player already
// assigned elsewhere is re-parented, never duplicated. Drag placement passes
// PositionMidfielder as the default; the position-selector path may pass an
// empty position to leave it unset.
func (s *Session) Assign(ctx context.Context, userID, teamID string, position clubapi.Position, destIndex int) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	s.mu.Lock()
	player, _, err := s.roster.Find(userID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if player.Status != clubapi.StatusAttending {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPlayerNotAttending, userID)
	}
	member := teams.Member{
		UserID:      player.UserID,
		Email:       player.Email,
		DisplayName: player.DisplayName,
		Position:    position,
	}
	record, err := s.teams.Assign(member, teamID, destIndex)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.ledger.Reconcile(s.teams.Teams())
	s.mu.Unlock()

	before := map[string]any{"team_id": record.PrevTeamID}
	after := map[string]any{"team_id": teamID, "position": string(position)}

	if err := s.api.AssignPlayer(ctx, s.matchID, teamID, userID, position); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("component", "matchadmin").
			Str("match_id", s.matchID).
			Str("user_id", userID).
			Str("decision", "rolled_back").
			Msg("Assignment rejected by backend")
		s.mu.Lock()
		s.teams.Revert(record)
		s.mu.Unlock()
		s.toasts.Error("Could not assign player to team")
		s.refreshTeams(ctx)
		s.record(ctx, "team.assign", "rolled_back", before, after, err.Error())
		return fmt.Errorf("assign %s to team %s: %w", userID, teamID, err)
	}

	s.toasts.Success("Player assigned")
	s.record(ctx, "team.assign", "confirmed", before, after, "")
	return nil
}

// Unassign returns a player to the unassigned attending pool. The origin
// team id comes from the source container identity at the moment of the
// move, so the correct remote removal call is issued even mid-churn.
func (s *Session) Unassign(ctx context.Context, userID, originTeamID string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	s.mu.Lock()
	record, err := s.teams.Remove(userID)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	before := map[string]any{"team_id": record.PrevTeamID}

	if err := s.api.RemovePlayer(ctx, s.matchID, originTeamID, userID); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("component", "matchadmin").
			Str("match_id", s.matchID).
			Str("user_id", userID).
			Str("decision", "rolled_back").
			Msg("Unassignment rejected by backend")
		s.mu.Lock()
		s.teams.Revert(record)
		s.mu.Unlock()
		s.toasts.Error("Could not remove player from team")
		s.refreshTeams(ctx)
		s.record(ctx, "team.remove", "rolled_back", before, nil, err.Error())
		return fmt.Errorf("remove %s from team %s: %w", userID, originTeamID, err)
	}

	s.toasts.Success("Player moved to unassigned")
	s.record(ctx, "team.remove", "confirmed", before, nil, "")
	return nil
}

// SetPosition updates one assigned player's position. An empty position is
// legal and leaves it unset until explicitly chosen.
func (s *Session) SetPosition(ctx context.Context, teamID, userID string, position clubapi.Position) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	s.mu.Lock()
	_, _, prev, _ := s.teams.FindMember(userID)
	err := s.teams.SetPosition(teamID, userID, position)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	before := map[string]any{"position": string(prev.Position)}
	after := map[string]any{"position": string(position)}

	if err := s.api.AssignPlayer(ctx, s.matchID, teamID, userID, position); err != nil {
		s.mu.Lock()
		revertErr := s.teams.SetPosition(teamID, userID, prev.Position)
		s.mu.Unlock()
		if revertErr != nil {
			s.refreshTeams(ctx)
		}
		s.toasts.Error("Could not update position")
		s.record(ctx, "team.position", "rolled_back", before, after, err.Error())
		return fmt.Errorf("set position for %s: %w", userID, err)
	}

	s.record(ctx, "team.position", "confirmed", before, after, "")
	return nil
}

// RenameTeam updates a team's name and color through a single explicit
// command; there is no other mutation path to those fields.
func (s *Session) RenameTeam(ctx context.Context, teamID, name, color string) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	s.mu.Lock()
	prev, err := s.teams.Team(teamID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.teams.Rename(teamID, name, color); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	before := map[string]any{"name": prev.Name, "color": prev.Color}
	after := map[string]any{"name": name, "color": color}

	if err := s.api.UpdateTeam(ctx, s.matchID, teamID, name, color); err != nil {
		s.mu.Lock()
		_ = s.teams.Rename(teamID, prev.Name, prev.Color)
		s.mu.Unlock()
		s.toasts.Error("Could not update team")
		s.record(ctx, "team.update", "rolled_back", before, after, err.Error())
		return fmt.Errorf("update team %s: %w", teamID, err)
	}

	s.toasts.Success("Team updated")
	s.record(ctx, "team.update", "confirmed", before, after, "")
	return nil
}

// DeleteTeam removes a team after explicit confirmation. The local delete
// cascades the team's players back to the unassigned pool, and the whole
// team list is refreshed from the server afterwards either way.
func (s *Session) DeleteTeam(ctx context.Context, teamID string, confirm ConfirmToken) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if err := needsConfirmation(confirm, ConfirmDeleteTeam, "Deleting the team returns its players to the unassigned pool."); err != nil {
		return err
	}

	s.mu.Lock()
	prev, err := s.teams.Team(teamID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	_ = s.teams.Delete(teamID)
	s.mu.Unlock()

	before := map[string]any{"name": prev.Name, "players": len(prev.Roster)}

	if err := s.api.DeleteTeam(ctx, s.matchID, teamID); err != nil {
		s.toasts.Error("Could not delete team")
		s.refreshTeams(ctx)
		s.record(ctx, "team.delete", "rolled_back", before, nil, err.Error())
		return fmt.Errorf("delete team %s: %w", teamID, err)
	}

	s.refreshTeams(ctx)
	s.toasts.Success("Team deleted")
	s.record(ctx, "team.delete", "confirmed", before, nil, "")
	return nil
}

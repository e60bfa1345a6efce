// internal/matchadmin/resultops.go
package matchadmin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pachanga/matchday/internal/result"
)

// SetGoals edits one ledger line locally. Nothing is persisted until
// SaveResult; edits are rejected while the result is locked.
func (s *Session) SetGoals(userID string, goals int) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.emailForLocked(userID)
	if err != nil {
		return err
	}
	return s.ledger.SetGoals(email, goals)
}

// SetOwnGoals edits one ledger line's own goals locally.
func (s *Session) SetOwnGoals(userID string, ownGoals int) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.emailForLocked(userID)
	if err != nil {
		return err
	}
	return s.ledger.SetOwnGoals(email, ownGoals)
}

// emailForLocked maps a user id to its ledger key. Callers hold s.mu.
func (s *Session) emailForLocked(userID string) (string, error) {
	player, _, err := s.roster.Find(userID)
	if err != nil {
		return "", err
	}
	return player.Email, nil
}

// SaveResult persists the ledger for every currently assigned player. Saving
// is disabled while the result is locked, and the button-level pending flag
// rejects a duplicate submission of this action while one is in flight —
// everything else stays usable. Marking finished for the first time and
// updating an already-finished result each require their own confirmation.
func (s *Session) SaveResult(ctx context.Context, finished bool, confirm ConfirmToken) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSavePending
	}
	if s.ledger.Locked() {
		s.mu.Unlock()
		return fmt.Errorf("save result: %w", result.ErrResultLocked)
	}
	wasFinished := s.ledger.Finished()
	s.mu.Unlock()

	switch {
	case wasFinished:
		if err := needsConfirmation(confirm, ConfirmUpdateFinished, "This result is already finished. Overwrite it?"); err != nil {
			return err
		}
	case finished:
		if err := needsConfirmation(confirm, ConfirmFinishResult, "Mark the result as finished? It will be locked after saving."); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.saving = true
	payload := s.ledger.Payload(s.teams.Teams(), finished)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	before := map[string]any{"finished": wasFinished}
	after := map[string]any{"finished": finished, "players": len(payload.Players)}

	saved, err := s.api.PutResult(ctx, s.matchID, payload)
	if err != nil {
		s.toasts.Error("Could not save the result")
		s.record(ctx, "result.save", "rolled_back", before, after, err.Error())
		return fmt.Errorf("save result: %w", err)
	}

	s.mu.Lock()
	s.ledger.Replace(saved)
	s.ledger.Reconcile(s.teams.Teams())
	s.mu.Unlock()

	log.Ctx(ctx).Info().
		Str("component", "matchadmin").
		Str("match_id", s.matchID).
		Bool("finished", saved.Finished).
		Int("players", len(payload.Players)).
		Msg("Result saved")
	s.toasts.Success("Result saved")
	s.record(ctx, "result.save", "confirmed", before, after, "")
	return nil
}

// UnlockResult clears the lock on a finished result after explicit
// confirmation. Entered values are kept; the result stays finished until the
// next save says otherwise.
func (s *Session) UnlockResult(ctx context.Context, confirm ConfirmToken) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if err := needsConfirmation(confirm, ConfirmUnlockResult, "Unlock the finished result for editing?"); err != nil {
		return err
	}

	s.mu.Lock()
	s.ledger.Unlock()
	s.mu.Unlock()

	s.toasts.Info("Result unlocked for editing")
	s.record(ctx, "result.unlock", "confirmed", nil, nil, "")
	return nil
}

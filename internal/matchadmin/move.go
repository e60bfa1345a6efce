// internal/matchadmin/move.go
package matchadmin

import (
	"context"
	"fmt"
	"strings"

	"github.com/pachanga/matchday/internal/clubapi"
)

// Container ids for the generic move interface. Any drag toolkit adapts its
// drop events to MoveItem with these names; the engine stays library
// agnostic.
const (
	ContainerAttending    = "attending"
	ContainerPending      = "pending"
	ContainerNotAttending = "not_attending"
	ContainerUnassigned   = "unassigned"
	teamContainerPrefix   = "team:"
)

// TeamContainer builds the container id for a team's roster.
func TeamContainer(teamID string) string {
	return teamContainerPrefix + teamID
}

func containerStatus(containerID string) (clubapi.AttendanceStatus, bool) {
	switch containerID {
	case ContainerAttending:
		return clubapi.StatusAttending, true
	case ContainerPending:
		return clubapi.StatusPending, true
	case ContainerNotAttending:
		return clubapi.StatusNotAttending, true
	}
	return "", false
}

// resolveItem identifies the moved entity from its source container and
// index before anything is mutated. The unassigned pool is resolved against
// its derived contents at this moment.
func (s *Session) resolveItem(containerID string, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := containerStatus(containerID); ok {
		partition := s.roster.Partition(status)
		if index < 0 || index >= len(partition) {
			return "", fmt.Errorf("no item at index %d in %q", index, containerID)
		}
		return partition[index].UserID, nil
	}
	if containerID == ContainerUnassigned {
		pool := s.teams.UnassignedPool(s.roster.Attending())
		if index < 0 || index >= len(pool) {
			return "", fmt.Errorf("no item at index %d in %q", index, containerID)
		}
		return pool[index].UserID, nil
	}
	if teamID, ok := strings.CutPrefix(containerID, teamContainerPrefix); ok {
		team, err := s.teams.Team(teamID)
		if err != nil {
			return "", err
		}
		if index < 0 || index >= len(team.Roster) {
			return "", fmt.Errorf("no item at index %d in %q", index, containerID)
		}
		return team.Roster[index].UserID, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContainer, containerID)
}

// MoveItem is the generic "move item between named ordered containers"
// entrypoint behind every drag gesture. It identifies the moved player, then
// dispatches to the attendance or team protocol:
//
//   - drop on an attendance partition: attendance change
//   - drop on a team from anywhere: assignment (default MIDFIELDER position)
//   - drop on the unassigned pool from a team: unassignment, with the origin
//     team recovered from the source container identity
func (s *Session) MoveItem(ctx context.Context, sourceContainerID, destContainerID string, itemIndex, destIndex int) error {
	if err := s.requireManager(); err != nil {
		return err
	}

	userID, err := s.resolveItem(sourceContainerID, itemIndex)
	if err != nil {
		return err
	}

	if status, ok := containerStatus(destContainerID); ok {
		return s.SetAttendance(ctx, userID, status, destIndex)
	}

	if teamID, ok := strings.CutPrefix(destContainerID, teamContainerPrefix); ok {
		return s.Assign(ctx, userID, teamID, clubapi.PositionMidfielder, destIndex)
	}

	if destContainerID == ContainerUnassigned {
		originTeamID, ok := strings.CutPrefix(sourceContainerID, teamContainerPrefix)
		if !ok {
			return fmt.Errorf("%w: %q -> %q", ErrInvalidMove, sourceContainerID, destContainerID)
		}
		return s.Unassign(ctx, userID, originTeamID)
	}

	return fmt.Errorf("%w: %q", ErrUnknownContainer, destContainerID)
}

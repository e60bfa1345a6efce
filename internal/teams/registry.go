// internal/teams/registry.go
// Package teams is the mutable registry of ad-hoc match teams and their
// rosters. The "unassigned attending" pool is never stored here; it is always
// derived from the attendance partition minus every team roster, so it cannot
// drift under interleaved optimistic updates.
package teams

import (
	"fmt"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/roster"
)

type terr string

func (e terr) Error() string { return string(e) }

var (
	ErrTeamNotFound   = terr("team not found")
	ErrMemberNotFound = terr("player not found on any team")
	ErrTeamCountRange = terr("team count must be between 2 and 6")
)

// Member is a player on a team roster. An empty Position means the position
// has not been chosen yet.
type Member struct {
	UserID      string
	Email       string
	DisplayName string
	Position    clubapi.Position
}

// Team mirrors one backend match team plus its ordered roster.
type Team struct {
	ID     string
	Name   string
	Color  string
	Roster []Member
}

// Assignment records a roster mutation so a failed remote confirmation can
// revert it.
type Assignment struct {
	UserID      string
	TeamID      string
	Index       int
	HadPrevious bool
	PrevTeamID  string
	PrevIndex   int
	PrevMember  Member
}

// Registry owns the in-memory team list for one admin session.
type Registry struct {
	teams []Team
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Replace resets the registry from an authoritative team list.
func (r *Registry) Replace(fresh []clubapi.Team) {
	r.teams = make([]Team, 0, len(fresh))
	for _, t := range fresh {
		members := make([]Member, 0, len(t.Players))
		for _, p := range t.Players {
			members = append(members, Member{
				UserID:      p.UserID,
				Email:       p.Email,
				DisplayName: p.DisplayName,
				Position:    p.Position,
			})
		}
		r.teams = append(r.teams, Team{ID: t.ID, Name: t.Name, Color: t.Color, Roster: members})
	}
}

// Teams returns a deep copy of the current team list.
func (r *Registry) Teams() []Team {
	out := make([]Team, len(r.teams))
	for i, t := range r.teams {
		out[i] = t
		out[i].Roster = make([]Member, len(t.Roster))
		copy(out[i].Roster, t.Roster)
	}
	return out
}

// Count is the number of teams.
func (r *Registry) Count() int {
	return len(r.teams)
}

// Team returns a copy of the team with the given id.
func (r *Registry) Team(teamID string) (Team, error) {
	for _, t := range r.teams {
		if t.ID == teamID {
			team := t
			team.Roster = make([]Member, len(t.Roster))
			copy(team.Roster, t.Roster)
			return team, nil
		}
	}
	return Team{}, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
}

func (r *Registry) teamIndex(teamID string) int {
	for i := range r.teams {
		if r.teams[i].ID == teamID {
			return i
		}
	}
	return -1
}

// FindMember locates a player on whichever team currently holds it.
func (r *Registry) FindMember(userID string) (teamID string, index int, member Member, ok bool) {
	for _, t := range r.teams {
		for i, m := range t.Roster {
			if m.UserID == userID {
				return t.ID, i, m, true
			}
		}
	}
	return "", 0, Member{}, false
}

// Assign places a player on a team at destIndex (clamped). If the player is
// already on another team the move is a re-parent: removed there, added here.
// Dual membership is never representable.
func (r *Registry) Assign(member Member, teamID string, destIndex int) (Assignment, error) {
	ti := r.teamIndex(teamID)
	if ti < 0 {
		return Assignment{}, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}

	record := Assignment{UserID: member.UserID, TeamID: teamID}
	if prevTeamID, prevIndex, prevMember, ok := r.FindMember(member.UserID); ok {
		record.HadPrevious = true
		record.PrevTeamID = prevTeamID
		record.PrevIndex = prevIndex
		record.PrevMember = prevMember
		pi := r.teamIndex(prevTeamID)
		r.teams[pi].Roster = removeMemberAt(r.teams[pi].Roster, prevIndex)
	}

	destIndex = clampIndex(destIndex, len(r.teams[ti].Roster))
	r.teams[ti].Roster = insertMemberAt(r.teams[ti].Roster, destIndex, member)
	record.Index = destIndex
	return record, nil
}

// Remove takes a player off the team that holds it and returns a revert
// record.
func (r *Registry) Remove(userID string) (Assignment, error) {
	teamID, index, member, ok := r.FindMember(userID)
	if !ok {
		return Assignment{}, fmt.Errorf("%w: %s", ErrMemberNotFound, userID)
	}
	ti := r.teamIndex(teamID)
	r.teams[ti].Roster = removeMemberAt(r.teams[ti].Roster, index)
	return Assignment{
		UserID:      userID,
		HadPrevious: true,
		PrevTeamID:  teamID,
		PrevIndex:   index,
		PrevMember:  member,
	}, nil
}

// Revert undoes an Assign or Remove. Index restoration is best-effort.
func (r *Registry) Revert(record Assignment) {
	if record.TeamID != "" {
		if ti := r.teamIndex(record.TeamID); ti >= 0 {
			for i, m := range r.teams[ti].Roster {
				if m.UserID == record.UserID {
					r.teams[ti].Roster = removeMemberAt(r.teams[ti].Roster, i)
					break
				}
			}
		}
	}
	if record.HadPrevious {
		if pi := r.teamIndex(record.PrevTeamID); pi >= 0 {
			index := clampIndex(record.PrevIndex, len(r.teams[pi].Roster))
			r.teams[pi].Roster = insertMemberAt(r.teams[pi].Roster, index, record.PrevMember)
		}
	}
}

// SetPosition updates one member's position in place.
func (r *Registry) SetPosition(teamID, userID string, position clubapi.Position) error {
	ti := r.teamIndex(teamID)
	if ti < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	for i := range r.teams[ti].Roster {
		if r.teams[ti].Roster[i].UserID == userID {
			r.teams[ti].Roster[i].Position = position
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMemberNotFound, userID)
}

// Rename updates a team's name and color.
func (r *Registry) Rename(teamID, name, color string) error {
	ti := r.teamIndex(teamID)
	if ti < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	r.teams[ti].Name = name
	r.teams[ti].Color = color
	return nil
}

// Delete removes a team. Its players implicitly return to the unassigned
// pool because the pool is derived, not stored.
func (r *Registry) Delete(teamID string) error {
	ti := r.teamIndex(teamID)
	if ti < 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	}
	r.teams = append(r.teams[:ti], r.teams[ti+1:]...)
	return nil
}

// UnassignedPool derives attending players without a team:
// attending − ⋃ team.Roster.
func (r *Registry) UnassignedPool(attending []roster.Player) []roster.Player {
	assigned := make(map[string]struct{})
	for _, t := range r.teams {
		for _, m := range t.Roster {
			assigned[m.UserID] = struct{}{}
		}
	}
	pool := make([]roster.Player, 0, len(attending))
	for _, p := range attending {
		if _, ok := assigned[p.UserID]; !ok {
			pool = append(pool, p)
		}
	}
	return pool
}

// MissingPositions lists assigned players whose position is still unset.
func (r *Registry) MissingPositions() []Member {
	var missing []Member
	for _, t := range r.teams {
		for _, m := range t.Roster {
			if m.Position == "" {
				missing = append(missing, m)
			}
		}
	}
	return missing
}

func removeMemberAt(members []Member, i int) []Member {
	return append(members[:i], members[i+1:]...)
}

func insertMemberAt(members []Member, i int, m Member) []Member {
	members = append(members, Member{})
	copy(members[i+1:], members[i:])
	members[i] = m
	return members
}

func clampIndex(i, length int) int {
	if i < 0 || i > length {
		return length
	}
	return i
}

// internal/testutil/fakeclub.go
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pachanga/matchday/internal/clubapi"
)

// ErrBackend is the failure every FakeClub Fail* switch produces.
var ErrBackend = errors.New("club api failure (test)")

// FakeClub is an in-memory stand-in for the club API with real partition and
// roster semantics, so engine tests exercise the authoritative-merge path
// the way the backend would drive it. Fail* switches make individual
// operations fail to exercise rollback.
type FakeClub struct {
	mu sync.Mutex

	Match   clubapi.Match
	Summary clubapi.AttendanceSummary
	Teams   []clubapi.Team
	Result  clubapi.MatchResult

	FailGetMatch      bool
	FailGetAttendance bool
	FailSetAttendance bool
	FailListTeams     bool
	FailCreateTeams   bool
	FailUpdateTeam    bool
	FailDeleteTeam    bool
	FailAssign        bool
	FailRemove        bool
	FailGetResult     bool
	FailPutResult     bool
	FailNotify        bool

	NotifyCalls    int
	RemoveCalls    []string
	ListTeamsCalls int

	nextTeamID int
}

var _ clubapi.API = (*FakeClub)(nil)

func (f *FakeClub) GetMatch(ctx context.Context, matchID string) (*clubapi.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGetMatch {
		return nil, ErrBackend
	}
	match := f.Match
	return &match, nil
}

func (f *FakeClub) GetAttendance(ctx context.Context, matchID string) (*clubapi.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGetAttendance {
		return nil, ErrBackend
	}
	summary := copySummary(f.Summary)
	return &summary, nil
}

func (f *FakeClub) SetAttendance(ctx context.Context, matchID, userID string, status clubapi.AttendanceStatus) (*clubapi.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSetAttendance {
		return nil, ErrBackend
	}

	var player clubapi.PlayerRef
	found := false
	for _, list := range []*[]clubapi.PlayerRef{&f.Summary.Attending, &f.Summary.Pending, &f.Summary.NotAttending} {
		for i, p := range *list {
			if p.UserID == userID {
				player = p
				*list = append((*list)[:i], (*list)[i+1:]...)
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown player %s", userID)
	}

	switch status {
	case clubapi.StatusAttending:
		f.Summary.Attending = append(f.Summary.Attending, player)
	case clubapi.StatusPending:
		f.Summary.Pending = append(f.Summary.Pending, player)
	case clubapi.StatusNotAttending:
		f.Summary.NotAttending = append(f.Summary.NotAttending, player)
	default:
		return nil, fmt.Errorf("unknown status %q", status)
	}

	summary := copySummary(f.Summary)
	return &summary, nil
}

func (f *FakeClub) ListTeams(ctx context.Context, matchID string) ([]clubapi.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListTeamsCalls++
	if f.FailListTeams {
		return nil, ErrBackend
	}
	return copyTeams(f.Teams), nil
}

func (f *FakeClub) CreateTeams(ctx context.Context, matchID string, teams []clubapi.NewTeam) ([]clubapi.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateTeams {
		return nil, ErrBackend
	}
	for _, plan := range teams {
		f.nextTeamID++
		f.Teams = append(f.Teams, clubapi.Team{
			ID:    fmt.Sprintf("team-%d", f.nextTeamID),
			Name:  plan.Name,
			Color: plan.Color,
		})
	}
	return copyTeams(f.Teams), nil
}

func (f *FakeClub) UpdateTeam(ctx context.Context, matchID, teamID, name, color string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailUpdateTeam {
		return ErrBackend
	}
	for i := range f.Teams {
		if f.Teams[i].ID == teamID {
			f.Teams[i].Name = name
			f.Teams[i].Color = color
			return nil
		}
	}
	return fmt.Errorf("unknown team %s", teamID)
}

func (f *FakeClub) DeleteTeam(ctx context.Context, matchID, teamID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDeleteTeam {
		return ErrBackend
	}
	for i := range f.Teams {
		if f.Teams[i].ID == teamID {
			f.Teams = append(f.Teams[:i], f.Teams[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("unknown team %s", teamID)
}

func (f *FakeClub) AssignPlayer(ctx context.Context, matchID, teamID, userID string, position clubapi.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAssign {
		return ErrBackend
	}

	var ref clubapi.PlayerRef
	found := false
	for _, p := range f.Summary.Attending {
		if p.UserID == userID {
			ref = p
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("player %s is not attending", userID)
	}

	// Re-parent: a player lives on at most one roster.
	for i := range f.Teams {
		for j, m := range f.Teams[i].Players {
			if m.UserID == userID {
				f.Teams[i].Players = append(f.Teams[i].Players[:j], f.Teams[i].Players[j+1:]...)
			}
		}
	}
	for i := range f.Teams {
		if f.Teams[i].ID == teamID {
			f.Teams[i].Players = append(f.Teams[i].Players, clubapi.TeamPlayer{
				UserID:      ref.UserID,
				Email:       ref.Email,
				DisplayName: ref.DisplayName,
				Position:    position,
			})
			return nil
		}
	}
	return fmt.Errorf("unknown team %s", teamID)
}

func (f *FakeClub) RemovePlayer(ctx context.Context, matchID, teamID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveCalls = append(f.RemoveCalls, teamID+"/"+userID)
	if f.FailRemove {
		return ErrBackend
	}
	for i := range f.Teams {
		if f.Teams[i].ID != teamID {
			continue
		}
		for j, m := range f.Teams[i].Players {
			if m.UserID == userID {
				f.Teams[i].Players = append(f.Teams[i].Players[:j], f.Teams[i].Players[j+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("player %s not on team %s", userID, teamID)
}

func (f *FakeClub) GetResult(ctx context.Context, matchID string) (*clubapi.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGetResult {
		return nil, ErrBackend
	}
	res := f.Result
	res.Players = append([]clubapi.PlayerResult(nil), f.Result.Players...)
	return &res, nil
}

func (f *FakeClub) PutResult(ctx context.Context, matchID string, result clubapi.MatchResult) (*clubapi.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPutResult {
		return nil, ErrBackend
	}
	now := time.Now()
	result.LastUpdatedAt = &now
	if result.Finished && f.Result.FinishedAt == nil {
		result.FinishedAt = &now
	} else {
		result.FinishedAt = f.Result.FinishedAt
	}
	f.Result = result
	saved := result
	saved.Players = append([]clubapi.PlayerResult(nil), result.Players...)
	return &saved, nil
}

func (f *FakeClub) Notify(ctx context.Context, matchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NotifyCalls++
	if f.FailNotify {
		return ErrBackend
	}
	return nil
}

func copySummary(s clubapi.AttendanceSummary) clubapi.AttendanceSummary {
	return clubapi.AttendanceSummary{
		Attending:    append([]clubapi.PlayerRef(nil), s.Attending...),
		Pending:      append([]clubapi.PlayerRef(nil), s.Pending...),
		NotAttending: append([]clubapi.PlayerRef(nil), s.NotAttending...),
	}
}

func copyTeams(teams []clubapi.Team) []clubapi.Team {
	out := make([]clubapi.Team, len(teams))
	for i, t := range teams {
		out[i] = t
		out[i].Players = append([]clubapi.TeamPlayer(nil), t.Players...)
	}
	return out
}

// internal/clubapi/clubapi.go
// Package clubapi is the transport boundary to the remote club API, the
// system of record for matches, attendance, teams and results.
package clubapi

import (
	"context"
	"time"
)

// AttendanceStatus mirrors the backend's three-way invitee partition.
type AttendanceStatus string

const (
	StatusAttending    AttendanceStatus = "ATTENDING"
	StatusPending      AttendanceStatus = "PENDING"
	StatusNotAttending AttendanceStatus = "NOT_ATTENDING"
)

// Position is an on-field position for an assigned player.
type Position string

const (
	PositionGoalkeeper Position = "GOALKEEPER"
	PositionDefender   Position = "DEFENDER"
	PositionMidfielder Position = "MIDFIELDER"
	PositionForward    Position = "FORWARD"
)

// PlayerRef identifies an invitee in an attendance partition.
type PlayerRef struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// AttendanceSummary is the authoritative three-way partition returned by the
// backend; it is the merge source after every attendance mutation.
type AttendanceSummary struct {
	Attending    []PlayerRef `json:"attending"`
	Pending      []PlayerRef `json:"pending"`
	NotAttending []PlayerRef `json:"notAttending"`
}

// Match is the screen-entry summary for a scheduled match.
type Match struct {
	ID            string    `json:"id"`
	GroupName     string    `json:"groupName"`
	Location      string    `json:"location"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	ManagerUserID string    `json:"managerUserId"`
}

// TeamPlayer is a player on a match team's roster.
type TeamPlayer struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Position    Position `json:"position,omitempty"`
}

// Team is an ad-hoc squad formed for one match.
type Team struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Color   string       `json:"color"`
	Players []TeamPlayer `json:"players"`
}

// NewTeam is the bulk-creation payload for one team.
type NewTeam struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PlayerResult is one ledger entry, keyed by email so it survives roster churn.
type PlayerResult struct {
	UserEmail string `json:"userEmail"`
	Goals     int    `json:"goals"`
	OwnGoals  int    `json:"ownGoals"`
}

// MatchResult is the persisted result for a match.
type MatchResult struct {
	Finished      bool           `json:"finished"`
	FinishedAt    *time.Time     `json:"finishedAt,omitempty"`
	LastUpdatedAt *time.Time     `json:"lastUpdatedAt,omitempty"`
	Players       []PlayerResult `json:"players"`
}

// API is the set of backend operations the admin engine consumes. The HTTP
// implementation lives in this package; tests substitute an in-memory fake.
type API interface {
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	GetAttendance(ctx context.Context, matchID string) (*AttendanceSummary, error)
	SetAttendance(ctx context.Context, matchID, userID string, status AttendanceStatus) (*AttendanceSummary, error)

	ListTeams(ctx context.Context, matchID string) ([]Team, error)
	CreateTeams(ctx context.Context, matchID string, teams []NewTeam) ([]Team, error)
	UpdateTeam(ctx context.Context, matchID, teamID, name, color string) error
	DeleteTeam(ctx context.Context, matchID, teamID string) error
	AssignPlayer(ctx context.Context, matchID, teamID, userID string, position Position) error
	RemovePlayer(ctx context.Context, matchID, teamID, userID string) error

	GetResult(ctx context.Context, matchID string) (*MatchResult, error)
	PutResult(ctx context.Context, matchID string, result MatchResult) (*MatchResult, error)

	Notify(ctx context.Context, matchID string) error
}

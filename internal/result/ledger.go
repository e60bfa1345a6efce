// internal/result/ledger.go
// Package result holds the per-player goal ledger for a match and derives
// the scoreboard from it. Entries are keyed by player email so they survive
// roster churn: a player removed from a team keeps its historical entry and
// simply stops contributing to any score.
package result

import (
	"time"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/teams"
)

type lerr string

func (e lerr) Error() string { return string(e) }

// ErrResultLocked is returned for any entry mutation while the result is
// finished and locked.
var ErrResultLocked = lerr("result is finished and locked")

// Entry is one player's goal line.
type Entry struct {
	Goals    int
	OwnGoals int
}

// Ledger is the locally-editable match result.
type Ledger struct {
	entries       map[string]Entry
	finished      bool
	locked        bool
	finishedAt    *time.Time
	lastUpdatedAt *time.Time
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]Entry)}
}

// Replace resets the ledger from an authoritative backend result and
// re-derives the lock from its finished flag.
func (l *Ledger) Replace(res *clubapi.MatchResult) {
	l.entries = make(map[string]Entry, len(res.Players))
	for _, p := range res.Players {
		l.entries[p.UserEmail] = Entry{Goals: floorZero(p.Goals), OwnGoals: floorZero(p.OwnGoals)}
	}
	l.finished = res.Finished
	l.locked = res.Finished
	l.finishedAt = res.FinishedAt
	l.lastUpdatedAt = res.LastUpdatedAt
}

// Reconcile lazily creates a zero entry for every player currently assigned
// to a team. It never deletes: entries for players no longer assigned keep
// their values in case the player comes back.
func (l *Ledger) Reconcile(current []teams.Team) {
	for _, t := range current {
		for _, m := range t.Roster {
			if _, ok := l.entries[m.Email]; !ok {
				l.entries[m.Email] = Entry{}
			}
		}
	}
}

// Entry returns the ledger line for an email, if present.
func (l *Ledger) Entry(email string) (Entry, bool) {
	e, ok := l.entries[email]
	return e, ok
}

// Entries returns a copy of all ledger lines.
func (l *Ledger) Entries() map[string]Entry {
	out := make(map[string]Entry, len(l.entries))
	for email, e := range l.entries {
		out[email] = e
	}
	return out
}

// SetGoals records a player's goals, floored at zero. Rejected while locked.
func (l *Ledger) SetGoals(email string, goals int) error {
	if l.locked {
		return ErrResultLocked
	}
	e := l.entries[email]
	e.Goals = floorZero(goals)
	l.entries[email] = e
	return nil
}

// SetOwnGoals records a player's own goals, floored at zero. Rejected while
// locked.
func (l *Ledger) SetOwnGoals(email string, ownGoals int) error {
	if l.locked {
		return ErrResultLocked
	}
	e := l.entries[email]
	e.OwnGoals = floorZero(ownGoals)
	l.entries[email] = e
	return nil
}

func (l *Ledger) Finished() bool { return l.finished }
func (l *Ledger) Locked() bool   { return l.locked }

func (l *Ledger) FinishedAt() *time.Time    { return l.finishedAt }
func (l *Ledger) LastUpdatedAt() *time.Time { return l.lastUpdatedAt }

// Unlock clears the lock so entries can be edited until the next save. It
// does not clear prior entries or the finished flag.
func (l *Ledger) Unlock() {
	l.locked = false
}

// Payload builds the save payload: one tuple per currently assigned player,
// values floored at zero. Unassigned players are excluded from the save even
// though their entries are retained locally.
func (l *Ledger) Payload(current []teams.Team, finished bool) clubapi.MatchResult {
	res := clubapi.MatchResult{Finished: finished}
	for _, t := range current {
		for _, m := range t.Roster {
			e := l.entries[m.Email]
			res.Players = append(res.Players, clubapi.PlayerResult{
				UserEmail: m.Email,
				Goals:     floorZero(e.Goals),
				OwnGoals:  floorZero(e.OwnGoals),
			})
		}
	}
	return res
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

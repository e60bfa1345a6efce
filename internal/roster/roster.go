// internal/roster/roster.go
// Package roster holds the three-way attendance partition of a match's
// invitees. The partitions are ordered because the admin screen is a set of
// drag targets; order is presentation state the backend does not care about.
package roster

import (
	"fmt"

	"github.com/pachanga/matchday/internal/clubapi"
)

type rerr string

func (e rerr) Error() string { return string(e) }

var (
	ErrUnknownPlayer = rerr("player not found in roster")
	ErrUnknownStatus = rerr("unknown attendance status")
)

// Player is one invitee as tracked by the admin screen.
type Player struct {
	UserID      string
	Email       string
	DisplayName string
	Status      clubapi.AttendanceStatus
}

// Move records one partition move so a failed remote confirmation can revert
// it. Index restoration on revert is best-effort: the player goes back to its
// recorded source index clamped to the current partition length.
type Move struct {
	UserID    string
	From      clubapi.AttendanceStatus
	To        clubapi.AttendanceStatus
	FromIndex int
	ToIndex   int
	Noop      bool
}

// Directory is the canonical invitee partition. Every invitee lives in
// exactly one of the three lists; Directory methods preserve that.
type Directory struct {
	partitions map[clubapi.AttendanceStatus][]Player
}

func NewDirectory() *Directory {
	return &Directory{
		partitions: map[clubapi.AttendanceStatus][]Player{
			clubapi.StatusAttending:    nil,
			clubapi.StatusPending:      nil,
			clubapi.StatusNotAttending: nil,
		},
	}
}

// Replace resets the directory from an authoritative attendance summary.
func (d *Directory) Replace(summary *clubapi.AttendanceSummary) {
	d.partitions[clubapi.StatusAttending] = fromRefs(summary.Attending, clubapi.StatusAttending)
	d.partitions[clubapi.StatusPending] = fromRefs(summary.Pending, clubapi.StatusPending)
	d.partitions[clubapi.StatusNotAttending] = fromRefs(summary.NotAttending, clubapi.StatusNotAttending)
}

func fromRefs(refs []clubapi.PlayerRef, status clubapi.AttendanceStatus) []Player {
	players := make([]Player, 0, len(refs))
	for _, ref := range refs {
		players = append(players, Player{
			UserID:      ref.UserID,
			Email:       ref.Email,
			DisplayName: ref.DisplayName,
			Status:      status,
		})
	}
	return players
}

// Partition returns a copy of the ordered partition for the given status.
func (d *Directory) Partition(status clubapi.AttendanceStatus) []Player {
	players := d.partitions[status]
	out := make([]Player, len(players))
	copy(out, players)
	return out
}

// Attending is shorthand for the ATTENDING partition.
func (d *Directory) Attending() []Player {
	return d.Partition(clubapi.StatusAttending)
}

// Len is the total invitee count across all partitions.
func (d *Directory) Len() int {
	total := 0
	for _, players := range d.partitions {
		total += len(players)
	}
	return total
}

// Find locates a player in whichever partition currently holds it.
func (d *Directory) Find(userID string) (Player, int, error) {
	for _, players := range d.partitions {
		for i, p := range players {
			if p.UserID == userID {
				return p, i, nil
			}
		}
	}
	return Player{}, 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, userID)
}

// Move applies a local partition move: the player leaves its current
// partition and is inserted into the destination at destIndex (clamped). A
// move to the partition the player is already in is a no-op; repeated
// transitions are idempotent at the terminal state.
func (d *Directory) Move(userID string, to clubapi.AttendanceStatus, destIndex int) (Move, error) {
	if _, ok := d.partitions[to]; !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}

	player, fromIndex, err := d.Find(userID)
	if err != nil {
		return Move{}, err
	}
	if player.Status == to {
		return Move{UserID: userID, From: player.Status, To: to, FromIndex: fromIndex, ToIndex: fromIndex, Noop: true}, nil
	}

	from := player.Status
	d.partitions[from] = removeAt(d.partitions[from], fromIndex)

	player.Status = to
	destIndex = clampIndex(destIndex, len(d.partitions[to]))
	d.partitions[to] = insertAt(d.partitions[to], destIndex, player)

	return Move{UserID: userID, From: from, To: to, FromIndex: fromIndex, ToIndex: destIndex}, nil
}

// Revert undoes a previously applied Move. The source index is restored
// best-effort; if the partition shrank in the meantime the player is appended.
func (d *Directory) Revert(m Move) error {
	if m.Noop {
		return nil
	}
	player, index, err := d.Find(m.UserID)
	if err != nil {
		return err
	}
	d.partitions[player.Status] = removeAt(d.partitions[player.Status], index)

	player.Status = m.From
	d.partitions[m.From] = insertAt(d.partitions[m.From], clampIndex(m.FromIndex, len(d.partitions[m.From])), player)
	return nil
}

func removeAt(players []Player, i int) []Player {
	return append(players[:i], players[i+1:]...)
}

func insertAt(players []Player, i int, p Player) []Player {
	players = append(players, Player{})
	copy(players[i+1:], players[i:])
	players[i] = p
	return players
}

func clampIndex(i, length int) int {
	if i < 0 || i > length {
		return length
	}
	return i
}

// internal/matchadmin/errors.go
// Centralized, comparable error values used across the admin session logic.
package matchadmin

type aerr string

func (e aerr) Error() string { return string(e) }

var (
	// ErrNotManager gates every mutating command for non-manager sessions.
	ErrNotManager = aerr("only the match manager can modify the match")
	// ErrPlayerNotAttending rejects team assignment of a player outside the
	// ATTENDING partition.
	ErrPlayerNotAttending = aerr("player is not marked as attending")
	// ErrSavePending rejects a duplicate result save while one is in flight.
	ErrSavePending = aerr("a result save is already in progress")
	// ErrUnknownContainer rejects a move referencing a container id that is
	// neither a partition, the unassigned pool, nor a team.
	ErrUnknownContainer = aerr("unknown container id")
	// ErrInvalidMove rejects a source/destination pairing the screen cannot
	// produce, such as dropping a non-attending player onto a team.
	ErrInvalidMove = aerr("invalid container move")

	// Finalize gate preconditions, each with its own user-facing reason.
	ErrNoTeams           = aerr("cannot finalize: no teams have been created")
	ErrUnassignedPlayers = aerr("cannot finalize: some attending players have no team")
	ErrMissingPositions  = aerr("cannot finalize: some players have no position")
	ErrResultNotFinished = aerr("cannot finalize: the result has not been marked as finished")
)

package matchadmin

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/testutil"
	"github.com/pachanga/matchday/internal/toast"
)

const (
	managerID = "mgr"
	matchID   = "match-1"
)

func ref(id string) clubapi.PlayerRef {
	return clubapi.PlayerRef{UserID: id, Email: id + "@club.test", DisplayName: id}
}

// tenInvitees builds a ten-player group: six attending, two pending, two not
// attending.
func tenInvitees() clubapi.AttendanceSummary {
	return clubapi.AttendanceSummary{
		Attending:    []clubapi.PlayerRef{ref("a1"), ref("a2"), ref("a3"), ref("a4"), ref("a5"), ref("a6")},
		Pending:      []clubapi.PlayerRef{ref("p1"), ref("p2")},
		NotAttending: []clubapi.PlayerRef{ref("n1"), ref("n2")},
	}
}

func newFake() *testutil.FakeClub {
	return &testutil.FakeClub{
		Match:   clubapi.Match{ID: matchID, GroupName: "Thursday Pachanga", ManagerUserID: managerID},
		Summary: tenInvitees(),
	}
}

func loadedSession(t *testing.T, fake *testutil.FakeClub, actorID string) *Session {
	t.Helper()

	session := NewSession(matchID, actorID, fake, nil)
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}

func mustGenerateTeams(t *testing.T, s *Session, count int) []string {
	t.Helper()
	if err := s.GenerateTeams(context.Background(), count); err != nil {
		t.Fatalf("generate teams: %v", err)
	}
	state := s.State()
	ids := make([]string, 0, len(state.Teams))
	for _, team := range state.Teams {
		ids = append(ids, team.ID)
	}
	return ids
}

func mustAssign(t *testing.T, s *Session, userID, teamID string, position clubapi.Position) {
	t.Helper()
	if err := s.Assign(context.Background(), userID, teamID, position, 0); err != nil {
		t.Fatalf("assign %s to %s: %v", userID, teamID, err)
	}
}

func drainLevel(toasts []toast.Toast, level toast.Level) int {
	n := 0
	for _, item := range toasts {
		if item.Level == level {
			n++
		}
	}
	return n
}

func TestLoadDegradesFailedPanels(t *testing.T) {
	fake := newFake()
	fake.FailGetResult = true
	session := loadedSession(t, fake, managerID)

	state := session.State()
	if !state.IsManager {
		t.Fatal("manager capability must be determined at load")
	}
	if len(state.Attending) != 6 || len(state.Pending) != 2 || len(state.NotAttending) != 2 {
		t.Fatalf("partition = %d/%d/%d", len(state.Attending), len(state.Pending), len(state.NotAttending))
	}
	if _, ok := state.PanelErrors["result"]; !ok {
		t.Fatalf("panel errors = %+v, want result entry", state.PanelErrors)
	}
	if _, ok := state.PanelErrors["attendance"]; ok {
		t.Fatal("healthy panels must not report errors")
	}
}

func TestNonManagerIsReadOnly(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, "someone-else")

	if session.IsManager() {
		t.Fatal("non-manager must not get the capability")
	}
	ctx := context.Background()
	if err := session.SetAttendance(ctx, "a1", clubapi.StatusPending, 0); !errors.Is(err, ErrNotManager) {
		t.Fatalf("err = %v, want ErrNotManager", err)
	}
	if err := session.GenerateTeams(ctx, 2); !errors.Is(err, ErrNotManager) {
		t.Fatalf("err = %v, want ErrNotManager", err)
	}
	if err := session.FinishAndNotify(ctx); !errors.Is(err, ErrNotManager) {
		t.Fatalf("err = %v, want ErrNotManager", err)
	}
	if fake.NotifyCalls != 0 {
		t.Fatal("read-only session must not reach the backend")
	}
}

// The full happy path: six attending, two generated teams of three, all
// positioned, finished result with own-goal crediting, then finalize.
func TestFullAdminScenario(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ctx := context.Background()

	ids := mustGenerateTeams(t, session, 2)
	red, blue := ids[0], ids[1]

	for _, userID := range []string{"a1", "a2", "a3"} {
		mustAssign(t, session, userID, red, clubapi.PositionMidfielder)
	}
	for _, userID := range []string{"a4", "a5", "a6"} {
		mustAssign(t, session, userID, blue, clubapi.PositionDefender)
	}

	state := session.State()
	if len(state.Unassigned) != 0 {
		t.Fatalf("unassigned = %+v, want empty", state.Unassigned)
	}

	// Red scores 2, 1, 0; Blue concedes one own goal.
	if err := session.SetGoals("a1", 2); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	if err := session.SetGoals("a2", 1); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	if err := session.SetOwnGoals("a5", 1); err != nil {
		t.Fatalf("set own goals: %v", err)
	}

	// First finish requires its confirmation.
	err := session.SaveResult(ctx, true, "")
	var confirm *ConfirmationRequiredError
	if !errors.As(err, &confirm) || confirm.Token != ConfirmFinishResult {
		t.Fatalf("err = %v, want confirmation %s", err, ConfirmFinishResult)
	}
	if err := session.SaveResult(ctx, true, ConfirmFinishResult); err != nil {
		t.Fatalf("save: %v", err)
	}

	state = session.State()
	if !state.Finished || !state.Locked {
		t.Fatalf("finished = %v, locked = %v", state.Finished, state.Locked)
	}
	scores := map[string]int{}
	for _, row := range state.Scoreboard {
		scores[row.TeamID] = row.Score
	}
	if scores[red] != 4 || scores[blue] != 0 {
		t.Fatalf("scoreboard = %+v, want red 4, blue 0", scores)
	}

	if err := session.FinishAndNotify(ctx); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if fake.NotifyCalls != 1 {
		t.Fatalf("notify calls = %d, want 1", fake.NotifyCalls)
	}
}

// Rollback idempotence: a failed attendance mutation leaves the observable
// state identical to before the attempt.
func TestAttendanceRollback(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	before := session.State()

	fake.FailSetAttendance = true
	err := session.SetAttendance(context.Background(), "a1", clubapi.StatusNotAttending, 0)
	if err == nil {
		t.Fatal("expected failure")
	}

	after := session.State()
	if !reflect.DeepEqual(before.Attending, after.Attending) ||
		!reflect.DeepEqual(before.Pending, after.Pending) ||
		!reflect.DeepEqual(before.NotAttending, after.NotAttending) {
		t.Fatalf("partitions changed across a rolled-back mutation:\nbefore %+v\nafter %+v", before, after)
	}
	if drainLevel(session.Toasts(), toast.LevelError) == 0 {
		t.Fatal("rolled-back mutation must surface an error toast")
	}
}

func TestAttendanceDowngradeUnassigns(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ids := mustGenerateTeams(t, session, 2)
	red := ids[0]
	mustAssign(t, session, "a1", red, clubapi.PositionForward)
	if err := session.SetGoals("a1", 2); err != nil {
		t.Fatalf("set goals: %v", err)
	}

	if err := session.SetAttendance(context.Background(), "a1", clubapi.StatusNotAttending, 0); err != nil {
		t.Fatalf("set attendance: %v", err)
	}

	state := session.State()
	for _, team := range state.Teams {
		for _, m := range team.Roster {
			if m.UserID == "a1" {
				t.Fatal("a1 must leave the roster with the attendance downgrade")
			}
		}
	}
	if len(fake.RemoveCalls) != 1 || fake.RemoveCalls[0] != red+"/a1" {
		t.Fatalf("remove calls = %+v, want [%s/a1]", fake.RemoveCalls, red)
	}
	// Historical ledger entry survives, but a1 no longer contributes.
	if e, ok := state.Entries["a1@club.test"]; !ok || e.Goals != 2 {
		t.Fatalf("entry = %+v, ok = %v; history must survive", e, ok)
	}
	for _, row := range state.Scoreboard {
		if row.Score != 0 {
			t.Fatalf("score = %+v, absent player must not contribute", row)
		}
	}
}

func TestChainedUnassignFailureRefreshesTeams(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ids := mustGenerateTeams(t, session, 2)
	mustAssign(t, session, "a1", ids[0], clubapi.PositionForward)

	fake.FailRemove = true
	listCallsBefore := fake.ListTeamsCalls
	if err := session.SetAttendance(context.Background(), "a1", clubapi.StatusPending, 0); err != nil {
		t.Fatalf("set attendance: %v", err)
	}

	if fake.ListTeamsCalls <= listCallsBefore {
		t.Fatal("failed chained unassign must force a team refresh")
	}
	// Ground truth: the backend still has a1 on the team, so after the
	// refresh the local view does too.
	state := session.State()
	found := false
	for _, team := range state.Teams {
		for _, m := range team.Roster {
			if m.UserID == "a1" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("refresh must restore the backend's view of the roster")
	}
}

func TestAssignRollback(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ids := mustGenerateTeams(t, session, 2)

	fake.FailAssign = true
	before := session.State()
	err := session.Assign(context.Background(), "a1", ids[0], clubapi.PositionMidfielder, 0)
	if err == nil {
		t.Fatal("expected failure")
	}

	after := session.State()
	if !reflect.DeepEqual(before.Teams, after.Teams) {
		t.Fatalf("teams changed across a rolled-back assignment:\nbefore %+v\nafter %+v", before.Teams, after.Teams)
	}
	if !reflect.DeepEqual(before.Unassigned, after.Unassigned) {
		t.Fatal("unassigned pool changed across a rolled-back assignment")
	}
}

func TestAssignRequiresAttending(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ids := mustGenerateTeams(t, session, 2)

	err := session.Assign(context.Background(), "p1", ids[0], clubapi.PositionMidfielder, 0)
	if !errors.Is(err, ErrPlayerNotAttending) {
		t.Fatalf("err = %v, want ErrPlayerNotAttending", err)
	}
}

func TestMoveItemDispatch(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ids := mustGenerateTeams(t, session, 2)
	red := ids[0]
	ctx := context.Background()

	// Drag the first unassigned player onto a team: default MIDFIELDER.
	if err := session.MoveItem(ctx, ContainerUnassigned, TeamContainer(red), 0, 0); err != nil {
		t.Fatalf("move to team: %v", err)
	}
	team := session.State().Teams[0]
	if len(team.Roster) != 1 || team.Roster[0].Position != clubapi.PositionMidfielder {
		t.Fatalf("roster = %+v, want one midfielder", team.Roster)
	}

	// Drag it back to the unassigned pool; the origin team comes from the
	// source container identity.
	if err := session.MoveItem(ctx, TeamContainer(red), ContainerUnassigned, 0, 0); err != nil {
		t.Fatalf("move to unassigned: %v", err)
	}
	if len(session.State().Teams[0].Roster) != 0 {
		t.Fatal("player must leave the roster")
	}

	// Drag a pending player into attending.
	if err := session.MoveItem(ctx, ContainerPending, ContainerAttending, 0, 2); err != nil {
		t.Fatalf("move to attending: %v", err)
	}
	state := session.State()
	if len(state.Pending) != 1 || len(state.Attending) != 7 {
		t.Fatalf("partition = %d attending / %d pending", len(state.Attending), len(state.Pending))
	}

	if err := session.MoveItem(ctx, "bogus", ContainerAttending, 0, 0); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("err = %v, want ErrUnknownContainer", err)
	}
	if err := session.MoveItem(ctx, ContainerAttending, ContainerUnassigned, 0, 0); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("err = %v, want ErrInvalidMove", err)
	}
}

func TestFinalizeGatePreconditions(t *testing.T) {
	ctx := context.Background()

	fake := newFake()
	session := loadedSession(t, fake, managerID)
	if err := session.FinishAndNotify(ctx); !errors.Is(err, ErrNoTeams) {
		t.Fatalf("err = %v, want ErrNoTeams", err)
	}

	ids := mustGenerateTeams(t, session, 2)
	if err := session.FinishAndNotify(ctx); !errors.Is(err, ErrUnassignedPlayers) {
		t.Fatalf("err = %v, want ErrUnassignedPlayers", err)
	}

	red, blue := ids[0], ids[1]
	for _, userID := range []string{"a1", "a2", "a3"} {
		mustAssign(t, session, userID, red, clubapi.PositionMidfielder)
	}
	for _, userID := range []string{"a4", "a5"} {
		mustAssign(t, session, userID, blue, clubapi.PositionDefender)
	}
	mustAssign(t, session, "a6", blue, "")
	if err := session.FinishAndNotify(ctx); !errors.Is(err, ErrMissingPositions) {
		t.Fatalf("err = %v, want ErrMissingPositions", err)
	}

	if err := session.SetPosition(ctx, blue, "a6", clubapi.PositionGoalkeeper); err != nil {
		t.Fatalf("set position: %v", err)
	}
	if err := session.FinishAndNotify(ctx); !errors.Is(err, ErrResultNotFinished) {
		t.Fatalf("err = %v, want ErrResultNotFinished", err)
	}
	if fake.NotifyCalls != 0 {
		t.Fatal("gate rejections must not reach the backend")
	}

	if err := session.SaveResult(ctx, true, ConfirmFinishResult); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := session.FinishAndNotify(ctx); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if fake.NotifyCalls != 1 {
		t.Fatalf("notify calls = %d, want 1", fake.NotifyCalls)
	}
}

func TestSaveResultConfirmationFlow(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ctx := context.Background()
	ids := mustGenerateTeams(t, session, 2)
	mustAssign(t, session, "a1", ids[0], clubapi.PositionForward)

	// Saving without finishing needs no confirmation.
	if err := session.SaveResult(ctx, false, ""); err != nil {
		t.Fatalf("save unfinished: %v", err)
	}

	// First finish: confirmation required, then accepted.
	err := session.SaveResult(ctx, true, "")
	var confirm *ConfirmationRequiredError
	if !errors.As(err, &confirm) || confirm.Token != ConfirmFinishResult {
		t.Fatalf("err = %v, want ConfirmFinishResult", err)
	}
	if err := session.SaveResult(ctx, true, ConfirmFinishResult); err != nil {
		t.Fatalf("save finished: %v", err)
	}

	// Locked: saving again is rejected outright.
	if err := session.SaveResult(ctx, true, ConfirmUpdateFinished); err == nil {
		t.Fatal("save while locked must be rejected")
	}

	// Unlock (confirmation-gated), then an update of the finished result
	// requires the other confirmation.
	if err := session.UnlockResult(ctx, ""); err == nil {
		t.Fatal("unlock without confirmation must be rejected")
	}
	if err := session.UnlockResult(ctx, ConfirmUnlockResult); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	state := session.State()
	if state.Locked || !state.Finished {
		t.Fatalf("locked = %v, finished = %v after unlock", state.Locked, state.Finished)
	}

	err = session.SaveResult(ctx, true, "")
	if !errors.As(err, &confirm) || confirm.Token != ConfirmUpdateFinished {
		t.Fatalf("err = %v, want ConfirmUpdateFinished", err)
	}
	if err := session.SaveResult(ctx, true, ConfirmUpdateFinished); err != nil {
		t.Fatalf("update finished: %v", err)
	}
}

func TestSaveResultTransportFailure(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ctx := context.Background()
	ids := mustGenerateTeams(t, session, 2)
	mustAssign(t, session, "a1", ids[0], clubapi.PositionForward)
	if err := session.SetGoals("a1", 3); err != nil {
		t.Fatalf("set goals: %v", err)
	}

	fake.FailPutResult = true
	if err := session.SaveResult(ctx, false, ""); err == nil {
		t.Fatal("expected failure")
	}

	// Local edits survive the failed save and it can be retried.
	fake.FailPutResult = false
	if err := session.SaveResult(ctx, false, ""); err != nil {
		t.Fatalf("retry save: %v", err)
	}
	if e := session.State().Entries["a1@club.test"]; e.Goals != 3 {
		t.Fatalf("goals = %d, want 3", e.Goals)
	}
}

func TestDeleteTeamConfirmationAndRefresh(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)
	ctx := context.Background()
	ids := mustGenerateTeams(t, session, 2)
	red := ids[0]
	mustAssign(t, session, "a1", red, clubapi.PositionForward)

	err := session.DeleteTeam(ctx, red, "")
	var confirm *ConfirmationRequiredError
	if !errors.As(err, &confirm) || confirm.Token != ConfirmDeleteTeam {
		t.Fatalf("err = %v, want ConfirmDeleteTeam", err)
	}
	if len(session.State().Teams) != 2 {
		t.Fatal("unconfirmed delete must not apply")
	}

	if err := session.DeleteTeam(ctx, red, ConfirmDeleteTeam); err != nil {
		t.Fatalf("delete: %v", err)
	}
	state := session.State()
	if len(state.Teams) != 1 {
		t.Fatalf("teams = %d, want 1", len(state.Teams))
	}
	// The deleted team's player is back in the derived pool.
	found := false
	for _, p := range state.Unassigned {
		if p.UserID == "a1" {
			found = true
		}
	}
	if !found {
		t.Fatal("deleted team's player must return to the unassigned pool")
	}
}

func TestGenerateTeamsFailureAppliesNothing(t *testing.T) {
	fake := newFake()
	session := loadedSession(t, fake, managerID)

	if err := session.GenerateTeams(context.Background(), 9); err == nil {
		t.Fatal("count out of range must be rejected")
	}

	fake.FailCreateTeams = true
	if err := session.GenerateTeams(context.Background(), 2); err == nil {
		t.Fatal("expected failure")
	}
	if len(session.State().Teams) != 0 {
		t.Fatal("failed bulk creation must not partially apply")
	}
}

func TestJournalRecordsOutcomes(t *testing.T) {
	fake := newFake()
	jnl := testutil.NewTestJournal(t)
	session := NewSession(matchID, managerID, fake, jnl)
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(session.Close)
	ctx := context.Background()

	if err := session.SetAttendance(ctx, "p1", clubapi.StatusAttending, 0); err != nil {
		t.Fatalf("set attendance: %v", err)
	}
	fake.FailSetAttendance = true
	if err := session.SetAttendance(ctx, "p2", clubapi.StatusAttending, 0); err == nil {
		t.Fatal("expected failure")
	}

	entries, err := jnl.ListRecent(ctx, matchID, 10)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal entries = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Outcome != "rolled_back" || entries[1].Outcome != "confirmed" {
		t.Fatalf("outcomes = %s, %s", entries[0].Outcome, entries[1].Outcome)
	}
}

func TestManagerCachesAndPrunes(t *testing.T) {
	fake := newFake()
	manager := NewManager(fake, nil)
	ctx := context.Background()

	first, err := manager.Session(ctx, matchID, managerID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	second, err := manager.Session(ctx, matchID, managerID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if first != second {
		t.Fatal("manager must hand out the cached session")
	}
	if manager.Len() != 1 {
		t.Fatalf("len = %d, want 1", manager.Len())
	}

	if evicted := manager.PruneIdle(0); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if manager.Len() != 0 {
		t.Fatalf("len = %d, want 0 after prune", manager.Len())
	}
}

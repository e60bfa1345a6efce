package teams

import (
	"errors"
	"testing"

	"github.com/pachanga/matchday/internal/clubapi"
	"github.com/pachanga/matchday/internal/roster"
)

func testRegistry() *Registry {
	r := NewRegistry()
	r.Replace([]clubapi.Team{
		{ID: "red", Name: "Red Team", Color: "#d32f2f"},
		{ID: "blue", Name: "Blue Team", Color: "#1976d2"},
	})
	return r
}

func member(id string) Member {
	return Member{UserID: id, Email: id + "@club.test", DisplayName: id}
}

func attending(ids ...string) []roster.Player {
	players := make([]roster.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, roster.Player{
			UserID: id,
			Email:  id + "@club.test",
			Status: clubapi.StatusAttending,
		})
	}
	return players
}

func TestAssignAndPoolDerivation(t *testing.T) {
	r := testRegistry()
	pool := r.UnassignedPool(attending("u1", "u2", "u3"))
	if len(pool) != 3 {
		t.Fatalf("pool = %d, want 3", len(pool))
	}

	if _, err := r.Assign(member("u1"), "red", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := r.Assign(member("u2"), "blue", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}

	pool = r.UnassignedPool(attending("u1", "u2", "u3"))
	if len(pool) != 1 || pool[0].UserID != "u3" {
		t.Fatalf("pool = %+v, want only u3", pool)
	}
}

func TestAssignReparents(t *testing.T) {
	r := testRegistry()
	if _, err := r.Assign(member("u1"), "red", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}
	record, err := r.Assign(member("u1"), "blue", 0)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if !record.HadPrevious || record.PrevTeamID != "red" {
		t.Fatalf("record = %+v", record)
	}

	red, _ := r.Team("red")
	blue, _ := r.Team("blue")
	if len(red.Roster) != 0 {
		t.Fatal("u1 still on red after re-parent")
	}
	if len(blue.Roster) != 1 || blue.Roster[0].UserID != "u1" {
		t.Fatalf("blue roster = %+v", blue.Roster)
	}
}

func TestRevertAssign(t *testing.T) {
	r := testRegistry()
	if _, err := r.Assign(member("u1"), "red", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}

	record, err := r.Assign(member("u1"), "blue", 0)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	r.Revert(record)

	red, _ := r.Team("red")
	blue, _ := r.Team("blue")
	if len(blue.Roster) != 0 {
		t.Fatal("u1 still on blue after revert")
	}
	if len(red.Roster) != 1 || red.Roster[0].UserID != "u1" {
		t.Fatalf("red roster = %+v", red.Roster)
	}
}

func TestRemoveAndRevert(t *testing.T) {
	r := testRegistry()
	m := member("u1")
	m.Position = clubapi.PositionDefender
	if _, err := r.Assign(m, "red", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}

	record, err := r.Remove("u1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if teamID, _, _, ok := r.FindMember("u1"); ok {
		t.Fatalf("u1 still on %s", teamID)
	}

	r.Revert(record)
	_, _, restored, ok := r.FindMember("u1")
	if !ok || restored.Position != clubapi.PositionDefender {
		t.Fatalf("restored = %+v, ok = %v", restored, ok)
	}
}

func TestDeleteReturnsPlayersToPool(t *testing.T) {
	r := testRegistry()
	if _, err := r.Assign(member("u1"), "red", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := r.Delete("red"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if r.Count() != 1 {
		t.Fatalf("count = %d, want 1", r.Count())
	}
	pool := r.UnassignedPool(attending("u1"))
	if len(pool) != 1 {
		t.Fatal("deleted team's player should be back in the pool")
	}
}

func TestMissingPositions(t *testing.T) {
	r := testRegistry()
	positioned := member("u1")
	positioned.Position = clubapi.PositionForward
	if _, err := r.Assign(positioned, "red", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := r.Assign(member("u2"), "blue", 0); err != nil {
		t.Fatalf("assign: %v", err)
	}

	missing := r.MissingPositions()
	if len(missing) != 1 || missing[0].UserID != "u2" {
		t.Fatalf("missing = %+v", missing)
	}

	if err := r.SetPosition("blue", "u2", clubapi.PositionGoalkeeper); err != nil {
		t.Fatalf("set position: %v", err)
	}
	if missing := r.MissingPositions(); len(missing) != 0 {
		t.Fatalf("missing = %+v, want none", missing)
	}
}

func TestUnknownTeamErrors(t *testing.T) {
	r := testRegistry()
	if _, err := r.Assign(member("u1"), "ghost", 0); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v, want ErrTeamNotFound", err)
	}
	if err := r.Delete("ghost"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v, want ErrTeamNotFound", err)
	}
	if _, err := r.Remove("u1"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
}

func TestGeneratePlans(t *testing.T) {
	plans, err := GeneratePlans(3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("plans = %d, want 3", len(plans))
	}
	seen := make(map[string]struct{})
	for _, p := range plans {
		if p.Name == "" || p.Color == "" {
			t.Fatalf("plan missing name or color: %+v", p)
		}
		if _, dup := seen[p.Name]; dup {
			t.Fatalf("duplicate generated name %s", p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	for _, bad := range []int{0, 1, 7} {
		if _, err := GeneratePlans(bad); !errors.Is(err, ErrTeamCountRange) {
			t.Fatalf("count %d: err = %v, want ErrTeamCountRange", bad, err)
		}
	}
}

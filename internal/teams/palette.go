// internal/teams/palette.go
package teams

import (
	"fmt"

	"github.com/pachanga/matchday/internal/clubapi"
)

const (
	MinGeneratedTeams = 2
	MaxGeneratedTeams = 6
)

// palette pairs a generated team name with a jersey color. Six entries
// because bulk generation is capped at six teams.
var palette = []clubapi.NewTeam{
	{Name: "Red Team", Color: "#d32f2f"},
	{Name: "Blue Team", Color: "#1976d2"},
	{Name: "Green Team", Color: "#388e3c"},
	{Name: "Yellow Team", Color: "#fbc02d"},
	{Name: "Orange Team", Color: "#f57c00"},
	{Name: "Purple Team", Color: "#7b1fa2"},
}

// GeneratePlans produces the bulk-creation payload for count teams with
// generated names and colors. Count must be within [2, 6].
func GeneratePlans(count int) ([]clubapi.NewTeam, error) {
	if count < MinGeneratedTeams || count > MaxGeneratedTeams {
		return nil, fmt.Errorf("%w: got %d", ErrTeamCountRange, count)
	}
	plans := make([]clubapi.NewTeam, count)
	copy(plans, palette[:count])
	return plans, nil
}

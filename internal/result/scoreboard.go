// internal/result/scoreboard.go
package result

import "github.com/pachanga/matchday/internal/teams"

// TeamScore is one derived scoreboard row.
type TeamScore struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Color    string `json:"color"`
	Score    int    `json:"score"`
}

// Scoreboard derives the displayed score for every team. A team's score is
// the sum of its own players' goals plus the own goals of every player on
// every other team: an own goal is credited to all opposing sides. Only
// players currently on a roster contribute; retained entries for absent
// players are ignored.
func (l *Ledger) Scoreboard(current []teams.Team) []TeamScore {
	goals := make([]int, len(current))
	ownGoals := make([]int, len(current))
	for i, t := range current {
		for _, m := range t.Roster {
			e := l.entries[m.Email]
			goals[i] += e.Goals
			ownGoals[i] += e.OwnGoals
		}
	}

	scores := make([]TeamScore, len(current))
	for i, t := range current {
		score := goals[i]
		for j := range current {
			if j != i {
				score += ownGoals[j]
			}
		}
		scores[i] = TeamScore{TeamID: t.ID, TeamName: t.Name, Color: t.Color, Score: score}
	}
	return scores
}

package models

import "time"

// Outcome represents the full-time result of a match
type Outcome string

const (
	OutcomeHome    Outcome = "HOME"
	OutcomeDraw    Outcome = "DRAW"
	OutcomeAway    Outcome = "AWAY"
	OutcomeUnknown Outcome = ""
)

// Role is the side a team played in a match
type Role string

const (
	RoleHome Role = "home"
	RoleAway Role = "away"
)

// MatchResult represents a completed (or scheduled) historical match
type MatchResult struct {
	Date      time.Time `json:"date" validate:"required"`
	HomeTeam  string    `json:"home_team" validate:"required"`
	AwayTeam  string    `json:"away_team" validate:"required"`
	HomeGoals *int      `json:"home_goals"`
	AwayGoals *int      `json:"away_goals"`
}

// NewMatchResult builds a played match result
func NewMatchResult(date time.Time, home, away string, homeGoals, awayGoals int) MatchResult {
	return MatchResult{
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: &homeGoals,
		AwayGoals: &awayGoals,
	}
}

// Played reports whether both scores are known
func (m MatchResult) Played() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Outcome derives the result from the score; unknown when either score is missing
func (m MatchResult) Outcome() Outcome {
	if !m.Played() {
		return OutcomeUnknown
	}
	switch {
	case *m.HomeGoals > *m.AwayGoals:
		return OutcomeHome
	case *m.HomeGoals < *m.AwayGoals:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// GoalsFor returns goals scored by the given role. Callers must check Played first.
func (m MatchResult) GoalsFor(role Role) int {
	if role == RoleHome {
		return *m.HomeGoals
	}
	return *m.AwayGoals
}

// GoalsAgainst returns goals conceded by the given role. Callers must check Played first.
func (m MatchResult) GoalsAgainst(role Role) int {
	if role == RoleHome {
		return *m.AwayGoals
	}
	return *m.HomeGoals
}

// TotalGoals returns the combined score
func (m MatchResult) TotalGoals() int {
	if !m.Played() {
		return 0
	}
	return *m.HomeGoals + *m.AwayGoals
}

// BothScored reports whether both sides found the net
func (m MatchResult) BothScored() bool {
	return m.Played() && *m.HomeGoals > 0 && *m.AwayGoals > 0
}

// RoleOf returns the role team played in the match
func (m MatchResult) RoleOf(team string) (Role, bool) {
	switch team {
	case m.HomeTeam:
		return RoleHome, true
	case m.AwayTeam:
		return RoleAway, true
	default:
		return "", false
	}
}

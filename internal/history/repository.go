// Package history indexes historical match results by team and date.
package history

import (
	"fmt"
	"sort"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/models"
)

// Anchor values for resolving the as-of date of a fixture
const (
	AnchorLatestResult = "latest_result"
	AnchorKickoff      = "kickoff"
)

// NameNormalizer canonicalises team names
type NameNormalizer interface {
	Normalize(raw string) string
}

// Config holds the recency window of the repository
type Config struct {
	WindowDays int
	Anchor     string
}

// FromConfig builds a repository config from application configuration
func FromConfig(cfg config.HistoryConfig) Config {
	return Config{WindowDays: cfg.WindowDays, Anchor: cfg.Anchor}
}

// TeamAverages are mean goals for one team in one role over the window
type TeamAverages struct {
	Scored   float64
	Conceded float64
	Matches  int
	Fallback bool
}

// LeagueAverages are mean goals over every played match
type LeagueAverages struct {
	HomeGoals float64
	AwayGoals float64
	BTTSRate  float64
	Matches   int
}

// Repository is an immutable in-memory index of played matches
type Repository struct {
	cfg     Config
	names   NameNormalizer
	matches []models.MatchResult
	home    map[string][]int
	away    map[string][]int
	league  LeagueAverages
	memo    *cache.Cache
}

// NewRepository normalizes team names, drops unplayed matches and indexes the rest
func NewRepository(results []models.MatchResult, names NameNormalizer, cfg Config) *Repository {
	r := &Repository{
		cfg:   cfg,
		names: names,
		home:  make(map[string][]int),
		away:  make(map[string][]int),
		memo:  cache.New(cache.NoExpiration, 0),
	}

	for _, m := range results {
		if !m.Played() {
			continue
		}
		m.HomeTeam = names.Normalize(m.HomeTeam)
		m.AwayTeam = names.Normalize(m.AwayTeam)
		r.matches = append(r.matches, m)
	}
	sort.SliceStable(r.matches, func(i, j int) bool {
		return r.matches[i].Date.Before(r.matches[j].Date)
	})

	var homeGoals, awayGoals, btts int
	for i, m := range r.matches {
		r.home[m.HomeTeam] = append(r.home[m.HomeTeam], i)
		r.away[m.AwayTeam] = append(r.away[m.AwayTeam], i)
		homeGoals += *m.HomeGoals
		awayGoals += *m.AwayGoals
		if m.BothScored() {
			btts++
		}
	}
	if n := len(r.matches); n > 0 {
		r.league = LeagueAverages{
			HomeGoals: float64(homeGoals) / float64(n),
			AwayGoals: float64(awayGoals) / float64(n),
			BTTSRate:  float64(btts) / float64(n),
			Matches:   n,
		}
	}

	return r
}

// Len returns the number of played matches indexed
func (r *Repository) Len() int {
	return len(r.matches)
}

// Teams returns every team name in the index, sorted
func (r *Repository) Teams() []string {
	seen := make(map[string]struct{}, len(r.home)+len(r.away))
	for t := range r.home {
		seen[t] = struct{}{}
	}
	for t := range r.away {
		seen[t] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// LeagueAverages returns league-wide means over every played match
func (r *Repository) LeagueAverages() LeagueAverages {
	return r.league
}

// LatestDate returns the date of the most recent played match
func (r *Repository) LatestDate() time.Time {
	if len(r.matches) == 0 {
		return time.Time{}
	}
	return r.matches[len(r.matches)-1].Date
}

// AsOf resolves the reference instant for a fixture kicking off at commence.
// The latest_result anchor sits just after the most recent result so that it is included.
func (r *Repository) AsOf(commence time.Time) time.Time {
	if r.cfg.Anchor == AnchorKickoff && !commence.IsZero() {
		return commence
	}
	return r.LatestDate().Add(time.Nanosecond)
}

func inWindow(date, asOf time.Time, windowDays int) bool {
	if !date.Before(asOf) {
		return false
	}
	if windowDays <= 0 {
		return true
	}
	return !date.Before(asOf.AddDate(0, 0, -windowDays))
}

// RecentMatches returns team's matches in [asOf-windowDays, asOf), home or away, oldest first
func (r *Repository) RecentMatches(team string, asOf time.Time, windowDays int) []models.MatchResult {
	team = r.names.Normalize(team)
	idx := mergeIndexes(r.home[team], r.away[team])

	var out []models.MatchResult
	for _, i := range idx {
		if inWindow(r.matches[i].Date, asOf, windowDays) {
			out = append(out, r.matches[i])
		}
	}
	return out
}

// RecentByRole returns team's matches in the given role inside the window, oldest first.
// A positive limit keeps only the most recent limit matches.
func (r *Repository) RecentByRole(team string, role models.Role, asOf time.Time, windowDays, limit int) []models.MatchResult {
	team = r.names.Normalize(team)
	idx := r.home[team]
	if role == models.RoleAway {
		idx = r.away[team]
	}

	var out []models.MatchResult
	for _, i := range idx {
		if inWindow(r.matches[i].Date, asOf, windowDays) {
			out = append(out, r.matches[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// LastByRole returns the last n matches of team in role before asOf, ignoring the window
func (r *Repository) LastByRole(team string, role models.Role, asOf time.Time, n int) []models.MatchResult {
	return r.RecentByRole(team, role, asOf, 0, n)
}

// TeamAverages returns mean goals scored and conceded by team in role inside the
// configured window. An empty window falls back to the league averages for that role.
func (r *Repository) TeamAverages(team string, role models.Role, asOf time.Time, limit int) TeamAverages {
	key := fmt.Sprintf("avg|%s|%s|%d|%d", r.names.Normalize(team), role, asOf.UnixNano(), limit)
	if v, ok := r.memo.Get(key); ok {
		return v.(TeamAverages)
	}

	matches := r.RecentByRole(team, role, asOf, r.cfg.WindowDays, limit)
	var avg TeamAverages
	if len(matches) == 0 {
		avg = TeamAverages{Fallback: true}
		if role == models.RoleHome {
			avg.Scored, avg.Conceded = r.league.HomeGoals, r.league.AwayGoals
		} else {
			avg.Scored, avg.Conceded = r.league.AwayGoals, r.league.HomeGoals
		}
	} else {
		var scored, conceded int
		for _, m := range matches {
			scored += m.GoalsFor(role)
			conceded += m.GoalsAgainst(role)
		}
		n := float64(len(matches))
		avg = TeamAverages{
			Scored:   float64(scored) / n,
			Conceded: float64(conceded) / n,
			Matches:  len(matches),
		}
	}

	r.memo.Set(key, avg, cache.NoExpiration)
	return avg
}

// BTTSRate returns the share of team's windowed matches in which both sides scored.
// The boolean is false when the team has no matches in the window.
func (r *Repository) BTTSRate(team string, asOf time.Time) (float64, bool) {
	matches := r.RecentMatches(team, asOf, r.cfg.WindowDays)
	if len(matches) == 0 {
		return 0, false
	}
	both := 0
	for _, m := range matches {
		if m.BothScored() {
			both++
		}
	}
	return float64(both) / float64(len(matches)), true
}

// RequireMatches returns an InsufficientDataError when team has fewer than need
// of its last n matches in role before asOf.
func (r *Repository) RequireMatches(team string, role models.Role, asOf time.Time, n, need int) ([]models.MatchResult, error) {
	matches := r.LastByRole(team, role, asOf, n)
	if len(matches) < need {
		return matches, &models.InsufficientDataError{
			Team: r.names.Normalize(team),
			Role: role,
			Have: len(matches),
			Need: need,
		}
	}
	return matches, nil
}

func mergeIndexes(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

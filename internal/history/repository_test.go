package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-finder/internal/models"
	"github.com/yourusername/value-finder/internal/normalize"
)

var base = time.Date(2024, 8, 1, 19, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func fixtureResults() []models.MatchResult {
	return []models.MatchResult{
		models.NewMatchResult(day(21), "Sevilla", "Atletico Madrid", 1, 1),
		models.NewMatchResult(day(0), "Atlético de Madrid", "Getafe", 2, 0),
		models.NewMatchResult(day(7), "Barcelona", "Atlético Madrid", 3, 1),
		models.NewMatchResult(day(14), "Atletico Madrid", "Valencia", 1, 0),
		models.NewMatchResult(day(28), "Getafe", "Barcelona", 0, 2),
		{Date: day(35), HomeTeam: "Atletico Madrid", AwayTeam: "Sevilla"},
	}
}

func newTestRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	return NewRepository(fixtureResults(), normalize.Default(nil), cfg)
}

func TestNewRepositoryNormalizesAndSorts(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})

	assert.Equal(t, 5, repo.Len(), "unplayed match must be dropped")
	assert.Equal(t, day(28), repo.LatestDate())
	assert.Contains(t, repo.Teams(), "Atlético de Madrid")
	assert.NotContains(t, repo.Teams(), "Atletico Madrid")

	league := repo.LeagueAverages()
	assert.InDelta(t, 7.0/5.0, league.HomeGoals, 1e-9)
	assert.InDelta(t, 4.0/5.0, league.AwayGoals, 1e-9)
	assert.InDelta(t, 2.0/5.0, league.BTTSRate, 1e-9)
}

func TestRecentMatchesJoinsSpellings(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})
	asOf := repo.AsOf(time.Time{})

	plain := repo.RecentMatches("Atletico Madrid", asOf, 180)
	accented := repo.RecentMatches("Atlético de Madrid", asOf, 180)

	require.Len(t, plain, 4)
	assert.Equal(t, plain, accented)
	for i := 1; i < len(plain); i++ {
		assert.True(t, plain[i-1].Date.Before(plain[i].Date))
	}
}

func TestRecentMatchesWindow(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 10, Anchor: AnchorKickoff})

	matches := repo.RecentMatches("Atlético de Madrid", day(22), 10)
	require.Len(t, matches, 2)
	assert.Equal(t, day(14), matches[0].Date)
	assert.Equal(t, day(21), matches[1].Date)

	assert.Empty(t, repo.RecentMatches("Atlético de Madrid", day(0), 10), "asOf bound is exclusive")
}

func TestRecentByRoleLimit(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})
	asOf := repo.AsOf(time.Time{})

	home := repo.RecentByRole("Atlético de Madrid", models.RoleHome, asOf, 180, 0)
	require.Len(t, home, 2)

	last := repo.RecentByRole("Atlético de Madrid", models.RoleHome, asOf, 180, 1)
	require.Len(t, last, 1)
	assert.Equal(t, day(14), last[0].Date)
}

func TestTeamAverages(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})
	asOf := repo.AsOf(time.Time{})

	avg := repo.TeamAverages("Atlético de Madrid", models.RoleAway, asOf, 0)
	assert.False(t, avg.Fallback)
	assert.Equal(t, 2, avg.Matches)
	assert.InDelta(t, 1.0, avg.Scored, 1e-9)
	assert.InDelta(t, 2.0, avg.Conceded, 1e-9)

	// memoised value is identical
	assert.Equal(t, avg, repo.TeamAverages("Atletico Madrid", models.RoleAway, asOf, 0))
}

func TestTeamAveragesFallback(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})
	asOf := repo.AsOf(time.Time{})
	league := repo.LeagueAverages()

	home := repo.TeamAverages("Real Madrid", models.RoleHome, asOf, 10)
	assert.True(t, home.Fallback)
	assert.Equal(t, league.HomeGoals, home.Scored)
	assert.Equal(t, league.AwayGoals, home.Conceded)

	away := repo.TeamAverages("Real Madrid", models.RoleAway, asOf, 10)
	assert.Equal(t, league.AwayGoals, away.Scored)
	assert.Equal(t, league.HomeGoals, away.Conceded)
}

func TestAsOfAnchors(t *testing.T) {
	kickoff := day(40)

	latest := newTestRepo(t, Config{Anchor: AnchorLatestResult})
	assert.True(t, latest.AsOf(kickoff).After(day(28)))
	assert.True(t, latest.AsOf(kickoff).Before(day(29)))

	byKickoff := newTestRepo(t, Config{Anchor: AnchorKickoff})
	assert.Equal(t, kickoff, byKickoff.AsOf(kickoff))
}

func TestBTTSRate(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})
	asOf := repo.AsOf(time.Time{})

	rate, ok := repo.BTTSRate("Atlético de Madrid", asOf)
	require.True(t, ok)
	assert.InDelta(t, 0.5, rate, 1e-9)

	_, ok = repo.BTTSRate("Real Madrid CF", asOf)
	assert.False(t, ok)
}

func TestRequireMatches(t *testing.T) {
	repo := newTestRepo(t, Config{WindowDays: 180, Anchor: AnchorLatestResult})
	asOf := repo.AsOf(time.Time{})

	matches, err := repo.RequireMatches("Atlético de Madrid", models.RoleHome, asOf, 5, 3)
	require.Error(t, err)
	assert.Len(t, matches, 2)

	var insufficient *models.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "Atlético de Madrid", insufficient.Team)
	assert.Equal(t, 2, insufficient.Have)
	assert.Equal(t, 3, insufficient.Need)

	_, err = repo.RequireMatches("Atlético de Madrid", models.RoleHome, asOf, 5, 2)
	assert.NoError(t, err)
}

func TestEmptyRepository(t *testing.T) {
	repo := NewRepository(nil, normalize.Default(nil), Config{WindowDays: 180})

	assert.Equal(t, 0, repo.Len())
	assert.True(t, repo.LatestDate().IsZero())
	assert.Equal(t, LeagueAverages{}, repo.LeagueAverages())
}

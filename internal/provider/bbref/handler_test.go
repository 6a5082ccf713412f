package bbref

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/schema"
)

// pages maps request URIs to fixture files.
var pages = map[string]string{
	"/boxscores/index.fcgi?year=2024&month=1&day=15": "scoreboard.html",
	"/boxscores/202401150BOS.html":                   "boxscore.html",
	"/allstar/NBA_2024.html":                         "allstar.html",
	"/search/search.fcgi?search=Kevin+Durant":        "search_durant.html",
	"/players/d/duranke01.html":                      "player_durant.html",
	"/friv/injuries.fcgi":                            "injuries.html",
	"/teams/DEN/2024.html":                           "team_den_2024.html",
	"/leagues/NBA_2024_ratings.html":                 "ratings_2024.html",
	"/leagues/NBA_2024.html":                         "league_2024.html",
	"/leagues/NBA_2024_games.html":                   "games_october.html",
	"/leagues/NBA_2024_games-october.html":           "games_october.html",
	"/leagues/NBA_2024_games-april.html":             "games_april.html",
	"/draft/NBA_2024.html":                           "draft_2024.html",
}

type site struct {
	mu   sync.Mutex
	hits map[string]int
}

func (s *site) count(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[uri]
}

func (s *site) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandler serves the fixture pages and returns a handler pointed at
// them.
func newTestHandler(t *testing.T) (*Handler, *site) {
	t.Helper()
	s := &site{hits: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.RequestURI()
		s.mu.Lock()
		s.hits[uri]++
		s.mu.Unlock()

		file, ok := pages[uri]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body, err := os.ReadFile(filepath.Join("testdata", file))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	logger := discardLogger()
	client := NewClient(srv.URL, 60000, ClientOptions{Timeout: 5 * time.Second}, logger)
	h := NewHandler(client, nil, nil, logger)
	h.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return h, s
}

var gameDay = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestGameSuffix(t *testing.T) {
	h, _ := newTestHandler(t)

	suffix, err := h.GameSuffix(context.Background(), gameDay, "LAL", "BOS")
	require.NoError(t, err)
	assert.Equal(t, "/boxscores/202401150BOS.html", suffix)

	_, err = h.GameSuffix(context.Background(), gameDay, "LAL", "MIA")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestBoxScores(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.BoxScores(context.Background(), gameDay, "lal", "BOS", "GAME", "basic")
	require.NoError(t, err)
	require.Len(t, got, 2)

	lal := got["LAL"]
	assert.Equal(t, []string{"PLAYER", "MP", "STATUS", "PTS", "+/-", schema.IDColumn}, lal.Columns)
	require.Equal(t, 4, lal.Len(), "starters, reserves and team totals")
	assert.Equal(t, "LeBron James", lal.Records[0].Get("PLAYER").Text())
	assert.Equal(t, provider.Identifier("jamesle01"), lal.Records[0].Get(schema.IDColumn))
	assert.Equal(t, provider.Int(-5), lal.Records[0].Get("+/-"))

	vincent := lal.Records[2]
	assert.Equal(t, "Did Not Dress", vincent.Get("STATUS").Text())
	assert.True(t, vincent.Get("MP").IsAbsent())
	assert.True(t, vincent.Get("PTS").IsAbsent())
	assert.Equal(t, "Team Totals", lal.Records[3].Get("PLAYER").Text())

	bos := got["BOS"]
	assert.Equal(t, "Kristaps Porzingis", bos.Records[0].Get("PLAYER").Text())
	assert.Equal(t, "porzikr01", bos.Records[0].Get(schema.IDColumn).Text())
	assert.Equal(t, 3, bos.Len())
}

func TestBoxScoresMissingPeriod(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.BoxScores(context.Background(), gameDay, "LAL", "BOS", "Q1", "BASIC")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestBoxScoresValidation(t *testing.T) {
	h, s := newTestHandler(t)
	ctx := context.Background()

	tests := []struct {
		name                           string
		team1, team2, period, statType string
	}{
		{"bad stat type", "LAL", "BOS", "GAME", "SHOOTING"},
		{"bad period", "LAL", "BOS", "Q5", "BASIC"},
		{"advanced period", "LAL", "BOS", "Q1", "ADVANCED"},
		{"unknown team", "XXX", "BOS", "GAME", "BASIC"},
		{"same team", "BOS", "BOS", "GAME", "BASIC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.BoxScores(ctx, gameDay, tt.team1, tt.team2, tt.period, tt.statType)
			assert.ErrorIs(t, err, provider.ErrInvalidArgument)
		})
	}
	assert.Zero(t, s.total(), "invalid arguments never reach the network")
}

func TestAllStarBoxScore(t *testing.T) {
	h, s := newTestHandler(t)

	got, err := h.AllStarBoxScore(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)

	lebron := got["Team LeBron"]
	require.Equal(t, 3, lebron.Len())
	assert.Equal(t, "Nikola Jokic", lebron.Records[1].Get("PLAYER").Text())
	durant := lebron.Records[2]
	assert.Equal(t, "Kevin Durant", durant.Get("PLAYER").Text())
	assert.Equal(t, "GSW", durant.Get("TEAM").Text())
	assert.True(t, durant.Get("PTS").IsAbsent())

	giannis := got["Team Giannis"]
	assert.Equal(t, 2, giannis.Len(), "DNPs already in the box score are not added again")
	assert.Equal(t, 1, s.count("/players/d/duranke01.html"))
}

func TestAllStarYearRange(t *testing.T) {
	h, s := newTestHandler(t)

	for _, year := range []int{1950, 2026, 2030} {
		_, err := h.AllStarBoxScore(context.Background(), year)
		assert.ErrorIs(t, err, provider.ErrInvalidArgument, "year %d", year)
	}
	assert.Zero(t, s.total())
}

func TestInjuryReport(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.InjuryReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.InjuryReport.Fixed, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "GSW", got.Records[0].Get("TEAM").Text())
	assert.Equal(t, "Day To Day", got.Records[1].Get("STATUS").Text())
	assert.Equal(t, "Wrist", got.Records[1].Get("INJURY").Text())
	assert.Equal(t, "Probable for opener", got.Records[1].Get("DESCRIPTION").Text())
}

func TestRoster(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.Roster(context.Background(), "DEN", 2024)
	require.NoError(t, err)
	assert.Equal(t, schema.Roster.Fixed, got.Columns)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "Nikola Jokic", got.Records[0].Get("PLAYER").Text())
	assert.Equal(t, "jokicni01", got.Records[0].Get(schema.IDColumn).Text())
	assert.Equal(t, "Kentucky", got.Records[1].Get("COLLEGE").Text())
	assert.Equal(t, "Jalen Pickett", got.Records[2].Get("PLAYER").Text())
	assert.Equal(t, "pickeja02", got.Records[2].Get(schema.IDColumn).Text())
	assert.Equal(t, "US", got.Records[2].Get("NATIONALITY").Text())
}

func TestTeamAggregates(t *testing.T) {
	h, s := newTestHandler(t)
	ctx := context.Background()

	team, err := h.TeamStats(ctx, "DEN", 2024, FormatPerGame)
	require.NoError(t, err)
	require.Equal(t, 1, team.Len())
	assert.Equal(t, []string{"G", "FG%", "PTS"}, team.Columns)
	assert.Equal(t, provider.Float(114.9), team.Records[0].Get("PTS"))

	opp, err := h.OpponentStats(ctx, "DEN", 2024, FormatRank)
	require.NoError(t, err)
	assert.Equal(t, provider.Int(9), opp.Records[0].Get("PTS"))

	yoy, err := h.TeamStats(ctx, "DEN", 2024, "year/year")
	require.NoError(t, err)
	assert.Equal(t, provider.Float(-1.0), yoy.Records[0].Get("FG%"))

	misc, err := h.TeamMisc(ctx, "DEN", 2024, FormatTotals)
	require.NoError(t, err)
	assert.Equal(t, []string{"W", "L", "ARENA", "ATTENDANCE"}, misc.Columns)
	assert.Equal(t, "Ball Arena", misc.Records[0].Get("ARENA").Text())
	assert.Equal(t, provider.Int(802483), misc.Records[0].Get("ATTENDANCE"))

	_, err = h.TeamMisc(ctx, "DEN", 2024, FormatPerGame)
	assert.ErrorIs(t, err, provider.ErrInvalidArgument, "team misc has no per-game row")
	assert.Equal(t, 4, s.count("/teams/DEN/2024.html"))
}

func TestRosterStats(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.RosterStats(context.Background(), "DEN", 2024, "per_game", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLAYER", "AGE", "POS", "G", "PTS", schema.IDColumn}, got.Columns)
	require.Equal(t, 2, got.Len(), "team totals row is removed")
	assert.Equal(t, "Nikola Jokic", got.Records[0].Get("PLAYER").Text())
	assert.Equal(t, "murraja01", got.Records[1].Get(schema.IDColumn).Text())
	assert.Equal(t, provider.Int(59), got.Records[1].Get("G"))

	_, err = h.RosterStats(context.Background(), "DEN", 2024, "per_game", true)
	assert.ErrorIs(t, err, provider.ErrNotFound)

	_, err = h.RosterStats(context.Background(), "DEN", 2024, "SHOOTING", false)
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)
}

type fakeRenderer struct {
	xpaths []string
	html   string
}

func (f *fakeRenderer) Render(_ context.Context, _, xpath string) (string, error) {
	f.xpaths = append(f.xpaths, xpath)
	return f.html, nil
}

func TestScriptedTablesUseRenderer(t *testing.T) {
	h, s := newTestHandler(t)
	r := &fakeRenderer{html: `<table id="per_game_stats">
<thead><tr><th>Rk</th><th>Player</th><th>Age</th></tr></thead>
<tbody><tr><th>1</th><td><a href="/players/j/jokicni01.html">Nikola Jokić</a></td><td>28</td></tr></tbody>
</table>`}
	h.render = r

	got, err := h.RosterStats(context.Background(), "DEN", 2024, FormatPerGame, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, []string{`//table[@id="per_game" or @id="per_game_stats"]`}, r.xpaths)
	assert.Zero(t, s.total(), "rendered tables skip the static fetch")
}

func TestTeamRatings(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.TeamRatings(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"RK", "SEASON", "TEAM", "CONF", "DIV", "W", "L", "NRTG", "NRTG/A"}, got.Columns)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, "2023-24", got.Records[0].Get("SEASON").Text())

	only, err := h.TeamRatings(context.Background(), 2024, "den", "okc")
	require.NoError(t, err)
	require.Equal(t, 2, only.Len())
	assert.Equal(t, "OKC", only.Records[0].Get("TEAM").Text())
	assert.Equal(t, "DEN", only.Records[1].Get("TEAM").Text())
}

func TestTeams(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.Teams(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, schema.Teams.Fixed, got.Columns)
	require.Equal(t, 4, got.Len())
	var abbrs []string
	for _, v := range got.Column("TEAM") {
		abbrs = append(abbrs, v.Text())
	}
	assert.Equal(t, []string{"BOS", "NYK", "OKC", "DEN"}, abbrs)
}

func TestStandings(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.Standings(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)

	east := got[EasternConference]
	require.Equal(t, 2, east.Len(), "division rows are removed")
	assert.Equal(t, "Boston Celtics", east.Records[0].Get("TEAM").Text())
	assert.Equal(t, "BOS", east.Records[0].Get("TEAM_ABBR").Text())

	west := got[WesternConference]
	require.Equal(t, 2, west.Len())
	assert.Equal(t, "OKC", west.Records[0].Get("TEAM_ABBR").Text())
	assert.Contains(t, west.Columns, "SRS", "falls back to the conference table")
}

func TestSchedule(t *testing.T) {
	h, s := newTestHandler(t)

	regular, err := h.Schedule(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Equal(t, schema.Schedule.Fixed, regular.Columns)
	require.Equal(t, 3, regular.Len())
	assert.Equal(t, "2023-10-24", regular.Records[0].Get("DATE").Text())
	assert.Equal(t, "2024-04-14", regular.Records[2].Get("DATE").Text())

	playoffs, err := h.Schedule(context.Background(), 2024, true)
	require.NoError(t, err)
	require.Equal(t, 1, playoffs.Len())
	assert.Equal(t, "Los Angeles Lakers", playoffs.Records[0].Get("VISITOR").Text())
	assert.Equal(t, provider.Int(114), playoffs.Records[0].Get("HOME_PTS"))

	assert.Equal(t, 2, s.count("/leagues/NBA_2024_games-april.html"))
}

func TestDraftClass(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.DraftClass(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"PICK", "TEAM", "PLAYER", "COLLEGE", "PTS"}, got.Columns)
	require.Equal(t, 3, got.Len(), "round headings are removed")
	assert.Equal(t, provider.Int(31), got.Records[2].Get("PICK"))
	assert.True(t, got.Records[0].Get("COLLEGE").IsAbsent())
}

func TestPlayerSeasons(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.PlayerSeasons(context.Background(), "Kevin Durant")
	require.NoError(t, err)
	require.Equal(t, 2, got.Len(), "career and summary rows are removed")
	assert.Equal(t, "2018-19", got.Records[1].Get("SEASON").Text())
	assert.Equal(t, "GSW", got.Records[1].Get("TEAM").Text())

	_, err = h.PlayerSeasons(context.Background(), "Nobody Atall")
	assert.ErrorIs(t, err, provider.ErrFetch, "the search page itself is missing")

	_, err = h.PlayerSeasons(context.Background(), " ")
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)
}

func TestSeasonValidation(t *testing.T) {
	h, s := newTestHandler(t)
	ctx := context.Background()

	_, err := h.Roster(ctx, "DEN", 1900)
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)
	_, err = h.Teams(ctx, 3000)
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)
	_, err = h.TeamRatings(ctx, 2024, "NOPE")
	assert.ErrorIs(t, err, provider.ErrInvalidArgument)
	assert.Zero(t, s.total())
}

func TestFetchErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Roster(context.Background(), "BOS", 2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrFetch)
	var fe *provider.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

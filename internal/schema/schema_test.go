package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-tables/internal/names"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/tables"
)

func mapClean(t *testing.T, raw tables.RawTable, s CategorySchema, opts ...Option) (provider.Table, error) {
	t.Helper()
	cleaned, err := tables.Clean(raw, s.Clean)
	require.NoError(t, err)
	return Map(cleaned, s, opts...)
}

func TestSplitInjury(t *testing.T) {
	status, injury, desc, err := SplitInjury("Out (Ankle) - Expected to miss 2 weeks")
	require.NoError(t, err)
	assert.Equal(t, "Out", status)
	assert.Equal(t, "Ankle", injury)
	assert.Equal(t, "Expected to miss 2 weeks", desc)

	status, injury, desc, err = SplitInjury("Day-To-Day (Left Hamstring) - Listed as questionable vs. Utah")
	require.NoError(t, err)
	assert.Equal(t, "Day-To-Day", status)
	assert.Equal(t, "Left Hamstring", injury)
	assert.Equal(t, "Listed as questionable vs. Utah", desc)

	_, injury, desc, err = SplitInjury("Out For Season (Achilles)")
	require.NoError(t, err)
	assert.Equal(t, "Achilles", injury)
	assert.Equal(t, "", desc)

	_, _, _, err = SplitInjury("Out - no details")
	assert.ErrorIs(t, err, provider.ErrMalformedField)

	_, _, _, err = SplitInjury("Out (Ankle - Expected back")
	assert.ErrorIs(t, err, provider.ErrMalformedField)
}

func TestTeamAbbr(t *testing.T) {
	for in, want := range map[string]string{
		"GOLDEN STATE WARRIORS": "GSW",
		"Golden State Warriors": "GSW",
		"LA Clippers":           "LAC",
		"Seattle SuperSonics":   "SEA",
		"bos":                   "BOS",
		"CHH":                   "CHH",
	} {
		got, err := TeamAbbr(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := TeamAbbr("UNKNOWN TEAM")
	assert.ErrorIs(t, err, provider.ErrUnknownTeam)
	assert.True(t, IsTeamAbbr("okc"))
	assert.False(t, IsTeamAbbr("XYZ"))
}

func TestCleanStandingsName(t *testing.T) {
	assert.Equal(t, "Boston Celtics", CleanStandingsName("Boston Celtics* (1)"))
	assert.Equal(t, "Utah Jazz", CleanStandingsName("Utah Jazz (12)"))
	assert.Equal(t, "Philadelphia 76ers", CleanStandingsName("Philadelphia 76ers"))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2023, time.October, 24, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"Tue, Oct 24, 2023", "Oct 24, 2023", "October 24, 2023", "2023-10-24", "10/24/2023"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}
	_, err := ParseDate("yesterday")
	assert.ErrorIs(t, err, provider.ErrMalformedField)
}

func injuryRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{{"Player", "Team", "Update", "Description"}},
		Rows: [][]string{
			{"Stephen Curry", "Golden State Warriors", "Wed, Oct 16, 2024", "Out (Ankle) - Expected to miss 2 weeks"},
			{"Player", "Team", "Update", "Description"},
			{"Jayson Tatum", "Boston Celtics", "Thu, Oct 17, 2024", "Day-To-Day (Knee) - Questionable for Friday"},
		},
	}
}

func TestMapInjuryReport(t *testing.T) {
	got, err := mapClean(t, injuryRaw(), InjuryReport)
	require.NoError(t, err)

	assert.Equal(t, InjuryReport.Fixed, got.Columns)
	require.Equal(t, 2, got.Len())

	first := got.Records[0]
	assert.Equal(t, "Stephen Curry", first.Get("PLAYER").Text())
	assert.Equal(t, "GSW", first.Get("TEAM").Text())
	assert.Equal(t, provider.KindDate, first.Get("DATE").Kind)
	assert.Equal(t, "2024-10-16", first.Get("DATE").Text())
	assert.Equal(t, "Out", first.Get("STATUS").Text())
	assert.Equal(t, "Ankle", first.Get("INJURY").Text())
	assert.Equal(t, "Expected to miss 2 weeks", first.Get("DESCRIPTION").Text())
	assert.Equal(t, "BOS", got.Records[1].Get("TEAM").Text())
}

func TestMapInjuryReportErrors(t *testing.T) {
	raw := injuryRaw()
	raw.Rows[2][1] = "Unknown Team"
	_, err := mapClean(t, raw, InjuryReport)
	assert.ErrorIs(t, err, provider.ErrUnknownTeam)

	raw = injuryRaw()
	raw.Rows[0][3] = "Out - no details"
	_, err = mapClean(t, raw, InjuryReport)
	assert.ErrorIs(t, err, provider.ErrMalformedField)

	raw = injuryRaw()
	raw.Headers = [][]string{{"Player", "Team", "Update", "Description", "Source"}}
	for i := range raw.Rows {
		raw.Rows[i] = append(raw.Rows[i], "x")
	}
	raw.Rows[1][4] = "Source"
	_, err = mapClean(t, raw, InjuryReport)
	assert.ErrorIs(t, err, provider.ErrMalformedTable, "fixed categories reject extra columns")
}

func rosterRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{{"No.", "Player", "Pos", "Ht", "Wt", "Birth Date", "", "Exp", "College"}},
		Rows: [][]string{
			{"15", "Nikola Jokić", "C", "6-11", "284", "February 19, 1995", "rs", "8", ""},
			{"27", "Jamal Murray", "PG", "6-4", "215", "February 23, 1997", "ca", "7", "Kentucky"},
			{"", "", "", "", "", "", "", "", ""},
			{"4", "Jalen Pickett (TW)", "G", "6-2", "", "", "us", "R", "Penn State"},
		},
	}
}

func TestMapRoster(t *testing.T) {
	ids := names.ResolveIdentifiers([]names.Anchor{
		{Text: "Nikola Jokić", Href: "/players/j/jokicni01.html"},
		{Text: "Jamal Murray", Href: "/players/m/murraja01.html"},
		{Text: "Jalen Pickett", Href: "/players/p/pickeja02.html"},
	})
	got, err := mapClean(t, rosterRaw(), Roster,
		WithIdentifiers(ids),
		WithNormalizer(names.NewNormalizer(nil), "DEN", 2024))
	require.NoError(t, err)

	assert.Equal(t, Roster.Fixed, got.Columns)
	require.Equal(t, 3, got.Len(), "blank player rows are dropped")

	jokic := got.Records[0]
	assert.Equal(t, "Nikola Jokic", jokic.Get("PLAYER").Text())
	assert.Equal(t, provider.Identifier("jokicni01"), jokic.Get(IDColumn))
	assert.Equal(t, provider.Int(284), jokic.Get("WEIGHT"))
	assert.Equal(t, "1995-02-19", jokic.Get("BIRTH_DATE").Text())
	assert.Equal(t, "RS", jokic.Get("NATIONALITY").Text())
	assert.True(t, jokic.Get("COLLEGE").IsAbsent())
	assert.Equal(t, "15", jokic.Get("NUMBER").Text())

	pickett := got.Records[2]
	assert.Equal(t, "Jalen Pickett", pickett.Get("PLAYER").Text())
	assert.Equal(t, "pickeja02", pickett.Get(IDColumn).Text())
	assert.True(t, pickett.Get("WEIGHT").IsAbsent())
	assert.True(t, pickett.Get("BIRTH_DATE").IsAbsent())

	got, err = mapClean(t, rosterRaw(), Roster)
	require.NoError(t, err)
	assert.Equal(t, Roster.Fixed, got.Columns)
	assert.True(t, got.Records[0].Get(IDColumn).IsAbsent(), "optional column maps to Absent")
	assert.Equal(t, "Nikola Jokić", got.Records[0].Get("PLAYER").Text())
}

func TestMapPositionalMismatch(t *testing.T) {
	raw := tables.RawTable{Headers: [][]string{{"No.", "Player"}}, Rows: [][]string{{"1", "A"}}}
	_, err := Map(raw, Roster)
	assert.ErrorIs(t, err, provider.ErrMalformedTable)
}

func boxScoreRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{
			{"", "", "Basic Box Score Stats", "Basic Box Score Stats", "Basic Box Score Stats"},
			{"Starters", "MP", "FG%", "PTS", "+/-"},
		},
		Rows: [][]string{
			{"Jayson Tatum", "38:00", ".512", "30", "+7"},
			{"Reserves", "MP", "FG%", "PTS", "+/-"},
			{"Derrick White", "30:00", ".400", "12", "-3"},
			{"Al Horford", "Did Not Play", "Did Not Play", "Did Not Play", "Did Not Play"},
			{"Team Totals", "240", ".478", "110", ""},
		},
	}
}

func TestMapBoxScore(t *testing.T) {
	raw := boxScoreRaw()
	got, err := mapClean(t, raw, BoxScore)
	require.NoError(t, err)

	assert.Equal(t, []string{"PLAYER", "MP", "STATUS", "FG%", "PTS", "+/-"}, got.Columns)
	require.Equal(t, 4, got.Len())

	players := got.Column("PLAYER")
	assert.Equal(t, "Jayson Tatum", players[0].Text())
	assert.Equal(t, "Derrick White", players[1].Text())
	assert.Equal(t, "Al Horford", players[2].Text())

	tatum := got.Records[0]
	assert.Equal(t, "38:00", tatum.Get("MP").Text())
	assert.True(t, tatum.Get("STATUS").IsAbsent())
	assert.Equal(t, provider.Float(0.512), tatum.Get("FG%"))
	assert.Equal(t, provider.Int(30), tatum.Get("PTS"))
	assert.Equal(t, provider.Int(7), tatum.Get("+/-"))
	assert.Equal(t, provider.Int(-3), got.Records[1].Get("+/-"))

	horford := got.Records[2]
	assert.True(t, horford.Get("MP").IsAbsent())
	assert.Equal(t, "Did Not Play", horford.Get("STATUS").Text())
	assert.True(t, horford.Get("PTS").IsAbsent())
}

func ratingsRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{
			{"", "", "", "", "", "", "Unadjusted", "Adjusted"},
			{"Rk", "Team", "Conf", "Div", "W", "L", "NRtg", "NRtg/A"},
		},
		Rows: [][]string{
			{"1", "Boston Celtics", "E", "A", "64", "18", "+11.7", "+11.2"},
			{"Rk", "Team", "Conf", "Div", "W", "L", "NRtg", "NRtg/A"},
			{"2", "Oklahoma City Thunder", "W", "NW", "57", "25", "+7.4", ""},
			{"3", "Denver Nuggets", "W", "NW", "57", "25", "+5.0", "+4.9"},
		},
	}
}

func TestMapRatings(t *testing.T) {
	raw := ratingsRaw()
	got, err := mapClean(t, raw, Ratings, WithConstant("SEASON", 1, provider.SeasonLabel(2024)))
	require.NoError(t, err)

	assert.Equal(t, []string{"RK", "SEASON", "TEAM", "CONF", "DIV", "W", "L", "NRTG", "NRTG/A"}, got.Columns)
	require.Equal(t, 2, got.Len(), "rows with blanks are dropped")
	assert.Equal(t, "BOS", got.Records[0].Get("TEAM").Text())
	assert.Equal(t, "2023-24", got.Records[0].Get("SEASON").Text())
	assert.Equal(t, provider.Float(11.7), got.Records[0].Get("NRTG"))
	assert.Equal(t, "DEN", got.Records[1].Get("TEAM").Text())

	only := FilterRows(got, "TEAM", "DEN")
	require.Equal(t, 1, only.Len())
	assert.Equal(t, got.Columns, only.Columns)
	assert.Equal(t, 2, FilterRows(got, "TEAM").Len())
}

func aggregateRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{{"", "G", "FG%", "PTS"}},
		Rows: [][]string{
			{"Team", "82", ".487", "9887"},
			{"Team/G", "", ".487", "120.6"},
			{"Lg Rank", "", "3", "1"},
			{"Year/Year", "", "+1.2%", "+3.1%"},
			{"Opponent", "82", ".460", "9060"},
			{"Opponent/G", "", ".460", "110.5"},
			{"Lg Rank", "", "2", "4"},
			{"Year/Year", "", "-0.5%", "+0.4%"},
		},
	}
}

func TestMapTeamAggregates(t *testing.T) {
	raw := aggregateRaw()

	team, err := mapClean(t, raw, TeamStats)
	require.NoError(t, err)
	assert.Equal(t, 4, team.Len())
	perGame, err := PickRow(team, SplitColumn, "Team/G")
	require.NoError(t, err)
	assert.Equal(t, []string{"G", "FG%", "PTS"}, perGame.Columns)
	assert.Equal(t, provider.Float(120.6), perGame.Records[0].Get("PTS"))
	assert.True(t, perGame.Records[0].Get("G").IsAbsent())

	rank, err := PickRow(team, SplitColumn, "Lg Rank")
	require.NoError(t, err)
	assert.Equal(t, provider.Int(1), rank.Records[0].Get("PTS"))

	opp, err := mapClean(t, raw, OpponentStats)
	require.NoError(t, err)
	assert.Equal(t, 4, opp.Len())
	rank, err = PickRow(opp, SplitColumn, "Lg Rank")
	require.NoError(t, err)
	assert.Equal(t, provider.Int(4), rank.Records[0].Get("PTS"))
	yoy, err := PickRow(opp, SplitColumn, "Year/Year")
	require.NoError(t, err)
	assert.Equal(t, provider.Float(-0.5), yoy.Records[0].Get("FG%"))

	_, err = PickRow(opp, SplitColumn, "Team")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestMapTeams(t *testing.T) {
	raw := tables.RawTable{
		Headers: [][]string{{"Eastern Conference", "W", "L", "W/L%", "GB", "PS/G", "PA/G", "SRS"}},
		Rows: [][]string{
			{"Boston Celtics* (1)", "64", "18", ".780", "—", "120.6", "109.2", "10.75"},
			{"New York Knicks* (2)", "50", "32", ".610", "14.0", "112.8", "108.2", "4.36"},
		},
	}
	got, err := mapClean(t, raw, Teams)
	require.NoError(t, err)

	assert.Equal(t, Teams.Fixed, got.Columns)
	bos := got.Records[0]
	assert.Equal(t, "Boston Celtics", bos.Get("TEAM_NAME").Text())
	assert.Equal(t, "BOS", bos.Get("TEAM").Text())
	assert.Equal(t, provider.Int(64), bos.Get("WINS"))
	assert.True(t, bos.Get("GB").IsAbsent())
	assert.Equal(t, "NYK", got.Records[1].Get("TEAM").Text())
}

func standingsRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{{"Western Conference", "W", "L", "W/L%", "GB"}},
		Keys:    []string{"team_name", "wins", "losses", "win_loss_pct", "gb"},
		Rows: [][]string{
			{"Northwest Division", "Northwest Division", "Northwest Division", "Northwest Division", "Northwest Division"},
			{"Oklahoma City Thunder* (1)", "57", "25", ".695", "—"},
			{"Pacific Division", "Pacific Division", "Pacific Division", "Pacific Division", "Pacific Division"},
			{"Los Angeles Clippers* (4)", "51", "31", ".622", "—"},
		},
	}
}

func TestMapStandings(t *testing.T) {
	raw := standingsRaw()
	got, err := mapClean(t, raw, Standings)
	require.NoError(t, err)
	assert.Equal(t, []string{"TEAM", "TEAM_ABBR", "W", "L", "W/L%", "GB"}, got.Columns)
	assert.Equal(t, []string{"OKC", "LAC"}, []string{got.Records[0].Get("TEAM_ABBR").Text(), got.Records[1].Get("TEAM_ABBR").Text()})
}

func scheduleRaw() tables.RawTable {
	return tables.RawTable{
		Headers: [][]string{{"Date", "Start (ET)", "Visitor/Neutral", "PTS", "Home/Neutral", "PTS", "", "", "Attend.", "LOG", "Arena", "Notes"}},
		Keys: []string{"date_game", "game_start_time", "visitor_team_name", "visitor_pts", "home_team_name", "home_pts",
			"box_score_text", "overtimes", "attendance", "game_duration", "arena_name", "game_remarks"},
		Rows: [][]string{
			{"Tue, Oct 24, 2023", "7:30p", "Los Angeles Lakers", "107", "Denver Nuggets", "119", "Box Score", "", "19,842", "2:19", "Ball Arena", ""},
			{"Wed, Oct 25, 2023", "7:00p", "Houston Rockets", "86", "Orlando Magic", "116", "Box Score", "OT", "18,846", "2:10", "Kia Center", ""},
			{"Fri, Apr 12, 2024", "8:00p", "Dallas Mavericks", "", "Detroit Pistons", "", "", "", "", "", "Little Caesars Arena", ""},
		},
	}
}

func TestMapSchedule(t *testing.T) {
	raw := scheduleRaw()
	got, err := mapClean(t, raw, Schedule)
	require.NoError(t, err)

	assert.Equal(t, []string{"DATE", "VISITOR", "VISITOR_PTS", "HOME", "HOME_PTS", "OT?", "LOG"}, got.Columns)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "2023-10-24", got.Records[0].Get("DATE").Text())
	assert.Equal(t, provider.Int(107), got.Records[0].Get("VISITOR_PTS"))
	assert.Equal(t, "OT", got.Records[1].Get("OT?").Text())
	assert.True(t, got.Records[2].Get("HOME_PTS").IsAbsent())

	// Older seasons have no duration column.
	old := tables.RawTable{
		Headers: [][]string{{"Date", "Visitor/Neutral", "PTS", "Home/Neutral", "PTS"}},
		Rows:    [][]string{{"Tue, Nov 3, 1998", "Boston Celtics", "101", "Toronto Raptors", "99"}},
	}
	got, err = mapClean(t, old, Schedule)
	require.NoError(t, err)
	assert.Equal(t, Schedule.Fixed, got.Columns)
	assert.True(t, got.Records[0].Get("LOG").IsAbsent())
	assert.Equal(t, provider.Int(99), got.Records[0].Get("HOME_PTS"))
}

// Every category with a fixed column set produces exactly that set, whatever
// optional columns the page carries.
func TestFixedColumnSets(t *testing.T) {
	for _, s := range []CategorySchema{Roster, Teams, Schedule, InjuryReport} {
		require.NotEmpty(t, s.Fixed, s.Category)
		got, err := Map(tables.RawTable{Headers: [][]string{fixedSource(s)}}, s)
		require.NoError(t, err, s.Category)
		assert.Equal(t, s.Fixed, got.Columns, s.Category)
	}
}

// fixedSource returns a header that maps onto s's fixed columns.
func fixedSource(s CategorySchema) []string {
	switch s.Category {
	case CategoryRoster:
		return make([]string, len(s.Positional))
	case CategoryTeams:
		return make([]string, len(s.Positional))
	case CategorySchedule:
		return []string{"Date", "Visitor/Neutral", "PTS", "Home/Neutral", "PTS.1"}
	default:
		return []string{"Player", "Team", "Update", "Description"}
	}
}

func TestMapPreservesOrder(t *testing.T) {
	raw := tables.RawTable{Headers: [][]string{{"Season", "Age", "Tm", "PTS"}}}
	for _, season := range []string{"2009-10", "2010-11", "2011-12", "2012-13", "2013-14"} {
		raw.Rows = append(raw.Rows, []string{season, "22", "GSW", "17.5"})
	}
	raw.Rows = append(raw.Rows, []string{"Career", "", "", "24.8"}, []string{"7 seasons", "", "GSW", "24.8"})

	got, err := mapClean(t, raw, PlayerSeasons)
	require.NoError(t, err)
	require.Equal(t, 5, got.Len())
	for i, r := range raw.Rows[:5] {
		assert.Equal(t, r[0], got.Records[i].Get("SEASON").Text())
	}
	assert.Equal(t, []string{"SEASON", "AGE", "TEAM", "PTS"}, got.Columns)
}

func TestMapDoesNotMutateInput(t *testing.T) {
	raw := injuryRaw()
	before := raw.Rows[0][3]
	_, err := mapClean(t, raw, InjuryReport)
	require.NoError(t, err)
	assert.Equal(t, before, raw.Rows[0][3])
}

// Cleaning a cleaned table removes nothing more, for every category's
// cleaning options.
func TestCleanIsIdempotent(t *testing.T) {
	players := tables.RawTable{
		Headers: [][]string{{"Season", "Age", "Tm", "PTS"}},
		Rows: [][]string{
			{"2022-23", "34", "PHO", "29.1"},
			{"Season", "Age", "Tm", "PTS"},
			{"2023-24", "35", "PHO", "27.1"},
			{"", "", "", ""},
			{"Career", "", "", "27.3"},
			{"2 seasons", "", "PHO", "28.1"},
		},
	}
	cases := []struct {
		schema CategorySchema
		raw    tables.RawTable
	}{
		{BoxScore, boxScoreRaw()},
		{AllStarBox, tables.RawTable{
			Headers: [][]string{{"", "", "", "Basic"}, {"Starters", "Tm", "MP", "PTS"}},
			Rows: [][]string{
				{"LeBron James", "LAL", "28:00", "19"},
				{"Reserves", "Tm", "MP", "PTS"},
				{"Nikola Jokić", "DEN", "10:00", "10"},
				{"Team Totals", "", "Totals", "178"},
				{"Team LeBron", "", "240", "178"},
			},
		}},
		{Roster, rosterRaw()},
		{RosterStats, tables.RawTable{
			Headers: [][]string{{"Rk", "Player", "Age", "G", "PTS"}},
			Rows: [][]string{
				{"1", "Nikola Jokić", "28", "79", "26.4"},
				{"Rk", "Player", "Age", "G", "PTS"},
				{"2", "Jamal Murray", "26", "59", "21.2"},
				{"", "Team Totals", "", "82", "114.9"},
			},
		}},
		{TeamStats, aggregateRaw()},
		{OpponentStats, aggregateRaw()},
		{TeamMisc, tables.RawTable{
			Headers: [][]string{{"", "", "Offense Four Factors"}, {"", "W", "eFG%"}},
			Rows: [][]string{
				{"Team", "57", ".560"},
				{"Lg Rank", "3", "2"},
			},
		}},
		{Ratings, ratingsRaw()},
		{Standings, standingsRaw()},
		{Schedule, scheduleRaw()},
		{InjuryReport, injuryRaw()},
		{PlayerSeasons, players},
		{DraftClass, tables.RawTable{
			Headers: [][]string{{"", "", "", "Totals"}, {"Rk", "Pk", "Player", "PTS"}},
			Rows: [][]string{
				{"1", "1", "Zaccharie Risacher", "1000"},
				{"Round 2", "", "", ""},
				{"Rk", "Pk", "Player", "PTS"},
				{"31", "31", "Johnny Furphy", "120"},
			},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.schema.Category, func(t *testing.T) {
			once, err := tables.Clean(tc.raw, tc.schema.Clean)
			require.NoError(t, err)
			require.NotEmpty(t, once.Rows)

			twice, err := tables.Clean(once, tc.schema.Clean)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

package schema

import (
	"strings"

	"github.com/albapepper/bbref-tables/internal/names"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// Category identifiers, also used as persistence keys.
const (
	CategoryBoxScore      = "box_score"
	CategoryAllStarBox    = "all_star_box_score"
	CategoryRoster        = "roster"
	CategoryRosterStats   = "roster_stats"
	CategoryTeamStats     = "team_stats"
	CategoryOpponentStats = "opponent_stats"
	CategoryTeamMisc      = "team_misc"
	CategoryRatings       = "ratings"
	CategoryTeams         = "teams"
	CategoryStandings     = "standings"
	CategorySchedule      = "schedule"
	CategoryInjuryReport  = "injury_report"
	CategoryPlayerSeasons = "player_seasons"
	CategoryDraftClass    = "draft_class"
)

// SplitColumn labels the rows of split tables (team aggregates, team misc).
const SplitColumn = "SPLIT"

var boxMinutes = Derivation{Source: "MP", Targets: []string{"MP", "STATUS"}, Split: splitMinutes}

// BoxScore is one team's basic or advanced box score for a game or period.
// Starters and reserves are separated by a mandatory "Reserves" row.
var BoxScore = CategorySchema{
	Category: CategoryBoxScore,
	Clean: tables.CleanOptions{
		HeaderLevelsToDrop: 1,
		Sentinels:          []tables.Sentinel{tables.Equals("Reserves").Required()},
	},
	Renames:      map[string]string{"Starters": "PLAYER", "Tm": "TEAM"},
	Derived:      []Derivation{boxMinutes},
	Types:        map[string]ColumnType{"PLAYER": TypeString, "MP": TypeString, "STATUS": TypeString, "TEAM": TypeString},
	DefaultType:  TypeAuto,
	Placeholders: inactiveReasons,
	Key:          "PLAYER",
}

// AllStarBox is one side of an all-star game box score. Below the players
// sit a totals row (MP reads "Totals") and a team row, both removed.
var AllStarBox = CategorySchema{
	Category: CategoryAllStarBox,
	Clean: tables.CleanOptions{
		HeaderLevelsToDrop: 1,
		Sentinels: []tables.Sentinel{
			tables.Equals("Reserves").Required(),
			tables.ColumnEquals("MP", "Totals").Required(),
		},
		TrailingRowsToDrop: 1,
	},
	Renames:      map[string]string{"Starters": "PLAYER", "Tm": "TEAM"},
	Transforms:   map[string]func(string) string{"PLAYER": names.StripDiacritics},
	Derived:      []Derivation{boxMinutes},
	Types:        map[string]ColumnType{"PLAYER": TypeString, "MP": TypeString, "STATUS": TypeString, "TEAM": TypeString},
	DefaultType:  TypeAuto,
	Placeholders: inactiveReasons,
	Key:          "PLAYER",
}

// Roster is a team's season roster. Columns are named by position because
// the flag column has no label.
var Roster = CategorySchema{
	Category: CategoryRoster,
	Positional: []string{
		"NUMBER", "PLAYER", "POS", "HEIGHT", "WEIGHT",
		"BIRTH_DATE", "NATIONALITY", "EXPERIENCE", "COLLEGE",
	},
	Fixed: []string{
		"NUMBER", "PLAYER", "POS", "HEIGHT", "WEIGHT",
		"BIRTH_DATE", "NATIONALITY", "EXPERIENCE", "COLLEGE", IDColumn,
	},
	Optional: []string{IDColumn},
	Transforms: map[string]func(string) string{
		"PLAYER":      names.StripTwoWay,
		"NATIONALITY": strings.ToUpper,
	},
	Filters: []Filter{NonBlank("PLAYER")},
	Types:   map[string]ColumnType{"WEIGHT": TypeInt, "BIRTH_DATE": TypeDate},
	Key:     "PLAYER",
}

// RosterStats is a team's per-player stats table in one data format.
var RosterStats = CategorySchema{
	Category: CategoryRosterStats,
	Clean: tables.CleanOptions{
		Sentinels: []tables.Sentinel{
			tables.RepeatedHeader(),
			tables.ColumnEquals("Player", "Team Totals"),
		},
	},
	Renames:      map[string]string{"Player": "PLAYER", "Age": "AGE", "Tm": "TEAM", "Team": "TEAM", "Pos": "POS"},
	Drop:         []string{"Rk"},
	Transforms:   map[string]func(string) string{"PLAYER": names.StripTwoWay},
	Types:        map[string]ColumnType{"PLAYER": TypeString, "POS": TypeString, "TEAM": TypeString},
	DefaultType:  TypeAuto,
	Placeholders: inactiveReasons,
	Key:          "PLAYER",
}

// TeamStats is the team half of the team-and-opponent table: rows Team,
// Team/G, Lg Rank and Year/Year, ending at the "Opponent" row.
var TeamStats = CategorySchema{
	Category: CategoryTeamStats,
	Clean: tables.CleanOptions{
		Sentinels: []tables.Sentinel{tables.Equals("Opponent").Through(tables.SpanFollowing).Required()},
	},
	Renames:     map[string]string{"Unnamed: 0": SplitColumn},
	Types:       map[string]ColumnType{SplitColumn: TypeString},
	DefaultType: TypeAuto,
	Key:         SplitColumn,
}

// OpponentStats is the opponent half, starting at the "Opponent" row.
var OpponentStats = CategorySchema{
	Category: CategoryOpponentStats,
	Clean: tables.CleanOptions{
		Sentinels: []tables.Sentinel{tables.Equals("Opponent").Through(tables.SpanBefore).Required()},
	},
	Renames:     map[string]string{"Unnamed: 0": SplitColumn},
	Types:       map[string]ColumnType{SplitColumn: TypeString},
	DefaultType: TypeAuto,
	Key:         SplitColumn,
}

// TeamMisc is the miscellaneous team table (four factors, arena, attendance)
// with rows Team and Lg Rank.
var TeamMisc = CategorySchema{
	Category:    CategoryTeamMisc,
	Clean:       tables.CleanOptions{HeaderLevelsToDrop: 1},
	Renames:     map[string]string{"Unnamed: 0": SplitColumn, "Arena": "ARENA", "Attendance": "ATTENDANCE", "Attend.": "ATTENDANCE"},
	Types:       map[string]ColumnType{SplitColumn: TypeString, "ARENA": TypeString},
	DefaultType: TypeAuto,
	Key:         SplitColumn,
}

// Ratings is the league-wide team ratings table for one season. Labels are
// upper-cased and rows with any blank cell are discarded.
var Ratings = CategorySchema{
	Category: CategoryRatings,
	Clean: tables.CleanOptions{
		HeaderLevelsToDrop: 1,
		Sentinels:          []tables.Sentinel{tables.RepeatedHeader()},
	},
	Uppercase:   true,
	Filters:     []Filter{Complete()},
	TeamColumns: []string{"TEAM"},
	Types:       map[string]ColumnType{"SEASON": TypeString, "CONF": TypeString, "DIV": TypeString},
	DefaultType: TypeAuto,
	Key:         "TEAM",
}

// Teams is one conference's standings in the compact per-season layout.
var Teams = CategorySchema{
	Category: CategoryTeams,
	Positional: []string{
		"TEAM_NAME", "WINS", "LOSSES", "WIN_LOSS_PCT", "GB",
		"PTS_PER_G", "OPP_PTS_PER_G", "SRS",
	},
	Fixed: []string{
		"TEAM_NAME", "TEAM", "WINS", "LOSSES", "WIN_LOSS_PCT", "GB",
		"PTS_PER_G", "OPP_PTS_PER_G", "SRS",
	},
	Derived: []Derivation{{Source: "TEAM_NAME", Targets: []string{"TEAM_NAME", "TEAM"}, Split: splitStandingsTeam}},
	Types: map[string]ColumnType{
		"TEAM_NAME":     TypeString,
		"TEAM":          TypeString,
		"WINS":          TypeInt,
		"LOSSES":        TypeInt,
		"WIN_LOSS_PCT":  TypeFloat,
		"GB":            TypeFloat,
		"PTS_PER_G":     TypeFloat,
		"OPP_PTS_PER_G": TypeFloat,
		"SRS":           TypeFloat,
	},
	Key: "TEAM",
}

// Standings is one conference's expanded standings, division rows removed.
var Standings = CategorySchema{
	Category: CategoryStandings,
	Clean: tables.CleanOptions{
		Sentinels: []tables.Sentinel{{
			Match: func(cell, _ string) bool { return strings.HasSuffix(cell, "Division") },
			Every: true,
			Name:  "division heading",
		}},
	},
	Renames: map[string]string{
		"team_name":          "TEAM",
		"Eastern Conference": "TEAM",
		"Western Conference": "TEAM",
	},
	Derived:     []Derivation{{Source: "TEAM", Targets: []string{"TEAM", "TEAM_ABBR"}, Split: splitStandingsTeam}},
	Types:       map[string]ColumnType{"TEAM": TypeString, "TEAM_ABBR": TypeString},
	DefaultType: TypeAuto,
	Key:         "TEAM",
}

// Schedule is a season's game list, concatenated across month pages.
var Schedule = CategorySchema{
	Category: CategorySchedule,
	Renames: map[string]string{
		"date_game":         "DATE",
		"game_start_time":   "START",
		"visitor_team_name": "VISITOR",
		"visitor_pts":       "VISITOR_PTS",
		"home_team_name":    "HOME",
		"home_pts":          "HOME_PTS",
		"box_score_text":    "BOX_SCORE",
		"overtimes":         "OT?",
		"attendance":        "ATTENDANCE",
		"game_duration":     "LOG",
		"arena_name":        "ARENA",
		"game_remarks":      "NOTES",
		"Date":              "DATE",
		"Start (ET)":        "START",
		"Visitor/Neutral":   "VISITOR",
		"PTS":               "VISITOR_PTS",
		"Home/Neutral":      "HOME",
		"PTS.1":             "HOME_PTS",
		"Attend.":           "ATTENDANCE",
		"Arena":             "ARENA",
		"Notes":             "NOTES",
	},
	Drop:     []string{"START", "BOX_SCORE", "ATTENDANCE", "ARENA", "NOTES"},
	Fixed:    []string{"DATE", "VISITOR", "VISITOR_PTS", "HOME", "HOME_PTS", "OT?", "LOG"},
	Optional: []string{"OT?", "LOG"},
	Types: map[string]ColumnType{
		"DATE":        TypeDate,
		"VISITOR_PTS": TypeInt,
		"HOME_PTS":    TypeInt,
	},
	Key: "DATE",
}

// InjuryReport is the league-wide current injury list.
var InjuryReport = CategorySchema{
	Category: CategoryInjuryReport,
	Clean: tables.CleanOptions{
		Sentinels: []tables.Sentinel{tables.RepeatedHeader()},
	},
	Renames: map[string]string{
		"Player":      "PLAYER",
		"Team":        "TEAM",
		"Update":      "DATE",
		"Description": "DESCRIPTION",
	},
	Fixed:       []string{"PLAYER", "TEAM", "DATE", "DESCRIPTION", "STATUS", "INJURY"},
	Derived:     []Derivation{{Source: "DESCRIPTION", Targets: []string{"DESCRIPTION", "STATUS", "INJURY"}, Split: splitInjury}},
	TeamColumns: []string{"TEAM"},
	Types:       map[string]ColumnType{"DATE": TypeDate},
	Key:         "PLAYER",
}

// PlayerSeasons is a player's per-season table; career and summary rows
// below the seasons are removed.
var PlayerSeasons = CategorySchema{
	Category: CategoryPlayerSeasons,
	Clean: tables.CleanOptions{
		Sentinels: []tables.Sentinel{
			tables.RepeatedHeader(),
			tables.Equals("Career").Through(tables.SpanFollowing),
			tables.Blank("Season"),
		},
	},
	Renames: map[string]string{
		"Season": "SEASON",
		"Age":    "AGE",
		"Tm":     "TEAM",
		"Team":   "TEAM",
		"Lg":     "LEAGUE",
		"Pos":    "POS",
	},
	Types: map[string]ColumnType{
		"SEASON": TypeString,
		"TEAM":   TypeString,
		"LEAGUE": TypeString,
		"POS":    TypeString,
	},
	DefaultType:  TypeAuto,
	Placeholders: inactiveReasons,
	Key:          "SEASON",
}

// DraftClass is one draft's picks in draft order.
var DraftClass = CategorySchema{
	Category: CategoryDraftClass,
	Clean: tables.CleanOptions{
		HeaderLevelsToDrop: 1,
		Sentinels: []tables.Sentinel{
			tables.RepeatedHeader(),
			{
				Match: func(cell, _ string) bool { return strings.HasPrefix(cell, "Round") },
				Every: true,
				Name:  "round heading",
			},
		},
	},
	Renames: map[string]string{
		"ranker":       "RK",
		"pick_overall": "PICK",
		"team_id":      "TEAM",
		"player":       "PLAYER",
		"college_name": "COLLEGE",
		"seasons":      "YEARS",
		"g":            "G",
		"mp":           "MP",
		"pts":          "PTS",
		"trb":          "TRB",
		"ast":          "AST",
		"fg_pct":       "FG%",
		"fg3_pct":      "3P%",
		"ft_pct":       "FT%",
		"mp_per_g":     "MP_PER_G",
		"pts_per_g":    "PTS_PER_G",
		"trb_per_g":    "TRB_PER_G",
		"ast_per_g":    "AST_PER_G",
		"ws":           "WS",
		"ws_per_48":    "WS_PER_48",
		"bpm":          "BPM",
		"vorp":         "VORP",
	},
	Drop:        []string{"RK"},
	Types:       map[string]ColumnType{"PICK": TypeInt, "TEAM": TypeString, "PLAYER": TypeString, "COLLEGE": TypeString},
	DefaultType: TypeAuto,
	Key:         "PLAYER",
}

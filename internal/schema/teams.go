package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// teamNames maps upper-cased franchise names, current and historical, to the
// site's three-letter abbreviation.
var teamNames = map[string]string{
	"ATLANTA HAWKS":                     "ATL",
	"BOSTON CELTICS":                    "BOS",
	"BROOKLYN NETS":                     "BRK",
	"CHICAGO BULLS":                     "CHI",
	"CHARLOTTE HORNETS":                 "CHO",
	"CHARLOTTE BOBCATS":                 "CHA",
	"CLEVELAND CAVALIERS":               "CLE",
	"DALLAS MAVERICKS":                  "DAL",
	"DENVER NUGGETS":                    "DEN",
	"DETROIT PISTONS":                   "DET",
	"GOLDEN STATE WARRIORS":             "GSW",
	"HOUSTON ROCKETS":                   "HOU",
	"INDIANA PACERS":                    "IND",
	"LOS ANGELES CLIPPERS":              "LAC",
	"LA CLIPPERS":                       "LAC",
	"LOS ANGELES LAKERS":                "LAL",
	"MEMPHIS GRIZZLIES":                 "MEM",
	"MIAMI HEAT":                        "MIA",
	"MILWAUKEE BUCKS":                   "MIL",
	"MINNESOTA TIMBERWOLVES":            "MIN",
	"NEW ORLEANS PELICANS":              "NOP",
	"NEW YORK KNICKS":                   "NYK",
	"OKLAHOMA CITY THUNDER":             "OKC",
	"ORLANDO MAGIC":                     "ORL",
	"PHILADELPHIA 76ERS":                "PHI",
	"PHOENIX SUNS":                      "PHO",
	"PORTLAND TRAIL BLAZERS":            "POR",
	"SACRAMENTO KINGS":                  "SAC",
	"SAN ANTONIO SPURS":                 "SAS",
	"TORONTO RAPTORS":                   "TOR",
	"UTAH JAZZ":                         "UTA",
	"WASHINGTON WIZARDS":                "WAS",
	"NEW JERSEY NETS":                   "NJN",
	"NEW YORK NETS":                     "NYN",
	"NEW ORLEANS HORNETS":               "NOH",
	"NEW ORLEANS/OKLAHOMA CITY HORNETS": "NOK",
	"SEATTLE SUPERSONICS":               "SEA",
	"VANCOUVER GRIZZLIES":               "VAN",
	"WASHINGTON BULLETS":                "WSB",
	"CAPITAL BULLETS":                   "CAP",
	"BALTIMORE BULLETS":                 "BAL",
	"CHICAGO ZEPHYRS":                   "CHZ",
	"CHICAGO PACKERS":                   "CHP",
	"KANSAS CITY KINGS":                 "KCK",
	"KANSAS CITY-OMAHA KINGS":           "KCO",
	"CINCINNATI ROYALS":                 "CIN",
	"ROCHESTER ROYALS":                  "ROC",
	"SAN DIEGO CLIPPERS":                "SDC",
	"BUFFALO BRAVES":                    "BUF",
	"SAN DIEGO ROCKETS":                 "SDR",
	"SAN FRANCISCO WARRIORS":            "SFW",
	"PHILADELPHIA WARRIORS":             "PHW",
	"ST. LOUIS HAWKS":                   "STL",
	"MILWAUKEE HAWKS":                   "MLH",
	"TRI-CITIES BLACKHAWKS":             "TRI",
	"SYRACUSE NATIONALS":                "SYR",
	"MINNEAPOLIS LAKERS":                "MNL",
	"FORT WAYNE PISTONS":                "FTW",
	"NEW ORLEANS JAZZ":                  "NOJ",
}

// teamAbbrs is every abbreviation the site uses in team columns.
var teamAbbrs = func() map[string]bool {
	m := make(map[string]bool, len(teamNames)+8)
	for _, abbr := range teamNames {
		m[abbr] = true
	}
	// No name entry: the 1988-2002 Hornets share a name with CHO, the rest
	// are early franchises that only appear as abbreviations.
	for _, abbr := range []string{"CHH", "BLB", "AND", "INO", "WAT", "SHE", "DNN", "WSC", "STB"} {
		m[abbr] = true
	}
	return m
}()

// TeamAbbr converts a team display name or abbreviation, in any case, to the
// site's abbreviation. Unmapped input is ErrUnknownTeam.
func TeamAbbr(name string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if teamAbbrs[key] {
		return key, nil
	}
	if abbr, ok := teamNames[key]; ok {
		return abbr, nil
	}
	return "", fmt.Errorf("%w: %q", provider.ErrUnknownTeam, name)
}

// IsTeamAbbr reports whether abbr is a known abbreviation.
func IsTeamAbbr(abbr string) bool {
	return teamAbbrs[strings.ToUpper(abbr)]
}

// standingsMarks matches the playoff asterisk and seed suffix standings pages
// append to team names: "Boston Celtics* (1)".
var standingsMarks = regexp.MustCompile(`\*|\(\d+\)`)

// CleanStandingsName strips standings markers from a team name.
func CleanStandingsName(name string) string {
	return strings.Join(strings.Fields(standingsMarks.ReplaceAllString(name, "")), " ")
}

// Command bbref extracts basketball-reference tables as JSON and seeds them
// into Postgres.
//
// Usage:
//
//	bbref extract roster --team DEN --season 2024
//	bbref extract boxscores --date 2024-03-10 --team1 LAL --team2 BOS --period Q1
//	bbref extract schedule --season 2024 --playoffs
//	bbref extract player-seasons --name "Kevin Durant"
//	bbref seed season --season 2024 --workers 2
//	bbref seed injuries
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/bbref-tables/internal/config"
	"github.com/albapepper/bbref-tables/internal/db"
	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/provider/bbref"
	"github.com/albapepper/bbref-tables/internal/seed"
)

// Logs go to stderr so extract output on stdout stays valid JSON.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "bbref",
		Short:        "basketball-reference table extraction CLI",
		SilenceUsage: true,
	}

	root.AddCommand(extractCmd())
	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// extract command
// --------------------------------------------------------------------------

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract one table and print it as JSON",
	}
	current := config.NBA().CurrentSeason

	// Each subcommand that needs a different default gets its own variable;
	// cobra writes the default into the bound variable at definition time.
	var (
		date, name           string
		team, team1, team2   string
		period, stat, format string
		miscFormat           string
		season, year         int
		draftYear            int
		playoffs             bool
		teams                []string
	)
	seasonFlag := func(c *cobra.Command) {
		c.Flags().IntVar(&season, "season", current, "Season end year (2024 is 2023-24)")
	}
	teamFlag := func(c *cobra.Command) {
		c.Flags().StringVar(&team, "team", "", "Team abbreviation, e.g. DEN")
		_ = c.MarkFlagRequired("team")
	}

	boxscores := extractRun("boxscores", "Box scores of one game, keyed by team", func(ctx context.Context, h *bbref.Handler) (any, error) {
		d, err := time.Parse(provider.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("%w: --date must be YYYY-MM-DD", provider.ErrInvalidArgument)
		}
		return h.BoxScores(ctx, d, team1, team2, period, stat)
	})
	boxscores.Flags().StringVar(&date, "date", "", "Game date, YYYY-MM-DD")
	boxscores.Flags().StringVar(&team1, "team1", "", "First team abbreviation")
	boxscores.Flags().StringVar(&team2, "team2", "", "Second team abbreviation")
	boxscores.Flags().StringVar(&period, "period", bbref.PeriodGame, "GAME, Q1-Q4, H1, H2 or OTn")
	boxscores.Flags().StringVar(&stat, "stat", bbref.StatBasic, "BASIC or ADVANCED")
	for _, f := range []string{"date", "team1", "team2"} {
		_ = boxscores.MarkFlagRequired(f)
	}

	allstar := extractRun("allstar", "All-star game box scores, keyed by side", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.AllStarBoxScore(ctx, year)
	})
	allstar.Flags().IntVar(&year, "year", time.Now().Year()-1, "All-star game year")

	injuries := extractRun("injuries", "Current league injury report", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.InjuryReport(ctx)
	})

	roster := extractRun("roster", "Team roster for a season", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.Roster(ctx, team, season)
	})
	teamFlag(roster)
	seasonFlag(roster)

	teamStats := extractRun("team-stats", "Team aggregate row", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.TeamStats(ctx, team, season, format)
	})
	opponentStats := extractRun("opponent-stats", "Opponent aggregate row", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.OpponentStats(ctx, team, season, format)
	})
	for _, c := range []*cobra.Command{teamStats, opponentStats} {
		teamFlag(c)
		seasonFlag(c)
		c.Flags().StringVar(&format, "format", bbref.FormatPerGame, "TOTALS, PER_GAME, RANK or YEAR/YEAR")
	}

	teamMisc := extractRun("team-misc", "Miscellaneous team stats row", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.TeamMisc(ctx, team, season, miscFormat)
	})
	teamFlag(teamMisc)
	seasonFlag(teamMisc)
	teamMisc.Flags().StringVar(&miscFormat, "format", bbref.FormatTotals, "TOTALS or RANK")

	rosterStats := extractRun("roster-stats", "Per-player stats for a team season", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.RosterStats(ctx, team, season, format, playoffs)
	})
	teamFlag(rosterStats)
	seasonFlag(rosterStats)
	rosterStats.Flags().StringVar(&format, "format", bbref.FormatPerGame, "TOTALS, PER_GAME, PER_MINUTE, PER_POSS or ADVANCED")
	rosterStats.Flags().BoolVar(&playoffs, "playoffs", false, "Playoff stats instead of regular season")

	ratings := extractRun("ratings", "Team ratings for a season", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.TeamRatings(ctx, season, teams...)
	})
	seasonFlag(ratings)
	ratings.Flags().StringSliceVar(&teams, "team", nil, "Keep only these teams (repeatable)")

	teamsCmd := extractRun("teams", "Both conferences' compact standings", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.Teams(ctx, season)
	})
	seasonFlag(teamsCmd)

	standings := extractRun("standings", "Expanded standings, keyed by conference", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.Standings(ctx, season)
	})
	seasonFlag(standings)

	schedule := extractRun("schedule", "Season schedule", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.Schedule(ctx, season, playoffs)
	})
	seasonFlag(schedule)
	schedule.Flags().BoolVar(&playoffs, "playoffs", false, "Playoff games only")

	draft := extractRun("draft", "Draft class", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.DraftClass(ctx, draftYear)
	})
	draft.Flags().IntVar(&draftYear, "year", current-1, "Draft year")

	playerSeasons := extractRun("player-seasons", "A player's per-game seasons", func(ctx context.Context, h *bbref.Handler) (any, error) {
		return h.PlayerSeasons(ctx, name)
	})
	playerSeasons.Flags().StringVar(&name, "name", "", "Player name")
	_ = playerSeasons.MarkFlagRequired("name")

	cmd.AddCommand(boxscores, allstar, injuries, roster, teamStats, opponentStats,
		teamMisc, rosterStats, ratings, teamsCmd, standings, schedule, draft, playerSeasons)
	return cmd
}

// extractRun builds a subcommand that runs fn and prints its result.
func extractRun(use, short string, fn func(ctx context.Context, h *bbref.Handler) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			h, err := bbref.FromConfig(cfg, logger)
			if err != nil {
				return err
			}
			v, err := fn(ctx, h)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Extract tables and store them in Postgres",
	}
	cmd.AddCommand(seedSeasonCmd())
	cmd.AddCommand(seedInjuriesCmd())
	return cmd
}

func seedSeasonCmd() *cobra.Command {
	var season, workers int
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Seed a season: teams, standings, ratings, schedule and every team's tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(func(ctx context.Context, cfg *config.Config, pool *db.Pool, h *bbref.Handler) error {
				if workers == 0 {
					workers = cfg.SeedWorkers
				}
				result := seed.SeedSeason(ctx, pool.Pool, h, season, workers, logger)
				logErrors(result)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", config.NBA().CurrentSeason, "Season end year")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent team workers (default SEED_WORKERS)")
	return cmd
}

func seedInjuriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "injuries",
		Short: "Seed the current injury report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(func(ctx context.Context, cfg *config.Config, pool *db.Pool, h *bbref.Handler) error {
				result := seed.SeedInjuries(ctx, pool.Pool, h, provider.SeasonEndYear(time.Now()), logger)
				logErrors(result)
				return nil
			})
		},
	}
}

func logErrors(result seed.Result) {
	for _, e := range result.Errors {
		logger.Error("seed error", "error", e)
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runSeed handles config loading, DB connection, and context cancellation.
func runSeed(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool, h *bbref.Handler) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	h, err := bbref.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	return fn(ctx, cfg, pool, h)
}

package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/internal/simulate"
)

// Default simulation constants.
const (
	defaultPlayers     = 60
	defaultRuns        = 50
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive a running service with synthetic rosters",
	Long:  "Submit generated rosters to a running service, check every result and fail when any guarantee is broken.",
	RunE:  runSimulate,
}

var (
	simURL     string
	simPlayers int
	simRuns    int
	simWorkers int
	simSeed    int64
	simTimeout time.Duration
	simMode    string
	simLeague  model.LeagueConfig
)

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&simPlayers, "players", defaultPlayers, "Players per roster")
	f.IntVar(&simRuns, "runs", defaultRuns, "Number of rosters to submit")
	f.IntVar(&simWorkers, "workers", runtime.NumCPU(), "Number of concurrent submitters")
	f.Int64Var(&simSeed, "seed", 1, "Seed for roster generation")
	f.DurationVar(&simTimeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.StringVar(&simMode, "mode", "", "Assignment mode; empty cycles through all modes")
	f.IntVar(&simLeague.MaxTeamSize, "max-team-size", 7, "Maximum players per team")
	f.IntVar(&simLeague.MinFemales, "min-females", 2, "Minimum women per team")
	f.IntVar(&simLeague.MinMales, "min-males", 2, "Minimum men per team")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	var mode model.Mode
	if simMode != "" {
		m, err := model.ParseMode(simMode)
		if err != nil {
			return err
		}
		mode = m
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
	defer cancel()

	stats, err := simulate.Run(ctx, simulate.Config{
		BaseURL: simURL,
		Players: simPlayers,
		Runs:    simRuns,
		Workers: simWorkers,
		Seed:    simSeed,
		Timeout: simTimeout,
		Mode:    mode,
		League:  simLeague,
		Roster:  simulate.DefaultRosterOptions(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "runs: %d submitted, %d succeeded, %d rejected, %d failed\n",
		stats.RunsSubmitted, stats.RunsSucceeded, stats.RunsRejected, stats.RunsFailed)
	fmt.Fprintf(out, "players: %d assigned, %d left out\n", stats.PlayersAssigned, stats.PlayersLeftOut)
	fmt.Fprintf(out, "duration: %s\n", stats.Duration.Round(time.Millisecond))
	for _, v := range stats.Violations {
		fmt.Fprintf(out, "violation: run %d (%s): %s\n", v.Run, v.RunID, v.Message)
	}

	switch {
	case len(stats.Violations) > 0:
		return fmt.Errorf("%d violations found", len(stats.Violations))
	case stats.RunsFailed > 0:
		return fmt.Errorf("%d runs failed", stats.RunsFailed)
	}
	return nil
}

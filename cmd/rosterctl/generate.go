package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/teambalance/internal/domain/engine"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/pkg/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Balance a roster file into teams",
	Long:  "Read players (and optionally groups) from JSON files, run the engine locally and print the result as JSON.",
	RunE:  runGenerate,
}

var (
	genRosterFile string
	genGroupsFile string
	genMode       string
	genSeed       int64
	genTeamNames  []string
	genLeague     model.LeagueConfig
)

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genRosterFile, "roster", "r", "", "Path to a JSON array of players (required)")
	f.StringVarP(&genGroupsFile, "groups", "g", "", "Path to a JSON array of player groups")
	f.StringVarP(&genMode, "mode", "m", string(model.ModeBalanced), "Assignment mode (balanced, randomized, manual)")
	f.Int64Var(&genSeed, "seed", 0, "Seed for randomized mode (0 uses the clock)")
	f.StringSliceVar(&genTeamNames, "team-names", nil, "Team names in order")
	f.IntVar(&genLeague.MaxTeamSize, "max-team-size", 7, "Maximum players per team")
	f.IntVar(&genLeague.MinFemales, "min-females", 2, "Minimum women per team")
	f.IntVar(&genLeague.MinMales, "min-males", 2, "Minimum men per team")
	f.IntVar(&genLeague.TargetTeams, "target-teams", 0, "Number of teams (0 derives it from the roster)")
	f.BoolVar(&genLeague.RequireMixedGender, "mixed", false, "Require at least one woman and one man per team")
	_ = generateCmd.MarkFlagRequired("roster")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var players []model.Player
	if err := readJSON(genRosterFile, &players); err != nil {
		return err
	}
	var groups []model.PlayerGroup
	if genGroupsFile != "" {
		if err := readJSON(genGroupsFile, &groups); err != nil {
			return err
		}
	}
	mode, err := model.ParseMode(genMode)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithTeamNames(genTeamNames)}
	if genSeed != 0 {
		opts = append(opts, engine.WithSeed(genSeed))
	}
	res, err := engine.Generate(players, genLeague, groups, mode, opts...)
	if err != nil {
		return fmt.Errorf("generate teams: %w", err)
	}

	log := logger.Named("rosterctl")
	for _, is := range res.Issues {
		log.Warn(ctx, "roster integrity issue",
			logger.String("kind", string(is.Kind)),
			logger.String("message", is.Message),
		)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

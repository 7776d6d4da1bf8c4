package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/pipeline"
)

var (
	runGameID string
	runTop    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full prop pipeline for today's slate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initRunEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		games, err := env.schedule.UpcomingGames(ctx)
		if err != nil {
			return eris.Wrap(err, "list upcoming games")
		}
		if runGameID != "" {
			games = filterGames(games, runGameID)
			if len(games) == 0 {
				return eris.Errorf("no upcoming game with id %s", runGameID)
			}
		}

		result, err := env.pipe.Run(ctx, games)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.Int("games", len(games)),
			zap.Int("edges", len(result.Edges)),
			zap.Int("alerted", len(result.Alerted)),
			zap.Int("picks_logged", result.Logged),
			zap.Int("odds_requests_remaining", env.odds.RequestsRemaining()),
		)

		edges := result.Edges
		if runTop > 0 && len(edges) > runTop {
			edges = edges[:runTop]
		}

		out := struct {
			Edges  []model.PropEdge `json:"edges"`
			Report pipeline.Report  `json:"report"`
			Logged int              `json:"picks_logged"`
		}{edges, result.Report, result.Logged}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func filterGames(games []model.Game, id string) []model.Game {
	var out []model.Game
	for _, g := range games {
		if g.ID == id {
			out = append(out, g)
		}
	}
	return out
}

func init() {
	runCmd.Flags().StringVar(&runGameID, "game-id", "", "restrict the run to one game")
	runCmd.Flags().IntVar(&runTop, "top", 0, "print only the top N edges (0 = all)")
	rootCmd.AddCommand(runCmd)
}

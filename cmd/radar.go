package main

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/primeprop/primeprop/internal/ingest"
	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/pipeline"
	"github.com/primeprop/primeprop/internal/resolve"
	"github.com/primeprop/primeprop/pkg/oddsapi"
	"github.com/primeprop/primeprop/pkg/prizepicks"
)

var radarProps bool

// radarGame is one upcoming game in the radar report.
type radarGame struct {
	ID        string        `json:"id"`
	HomeTeam  string        `json:"home_team"`
	AwayTeam  string        `json:"away_team"`
	StartTime time.Time     `json:"start_time"`
	Lines     int           `json:"lines,omitempty"`
	Players   []radarPlayer `json:"players,omitempty"`
}

// radarPlayer is one player with quoted props in a game.
type radarPlayer struct {
	Name  string   `json:"name"`
	Stats []string `json:"stats"`
}

var radarCmd = &cobra.Command{
	Use:   "radar",
	Short: "List upcoming games and, optionally, the players with quoted props",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		oddsClient := oddsapi.NewClient(cfg.OddsAPI.Key,
			oddsapi.WithBaseURL(cfg.OddsAPI.BaseURL),
			oddsapi.WithSport(cfg.OddsAPI.Sport),
			oddsapi.WithLimiter(rate.NewLimiter(rate.Limit(cfg.OddsAPI.RPS), 1)),
		)

		games, err := pipeline.NewOddsAPISchedule(oddsClient).UpcomingGames(ctx)
		if err != nil {
			return eris.Wrap(err, "list upcoming games")
		}

		report := make([]radarGame, 0, len(games))
		for _, g := range games {
			report = append(report, radarGame{
				ID:        g.ID,
				HomeTeam:  g.HomeTeam,
				AwayTeam:  g.AwayTeam,
				StartTime: g.StartTime,
			})
		}

		if radarProps && len(games) > 0 {
			adapters := []ingest.ProviderAdapter{
				ingest.NewOddsAPIAdapter(oddsClient, cfg.OddsAPI.Regions, cfg.OddsAPI.Markets),
			}
			if cfg.PrizePicks.Enabled {
				ppClient := prizepicks.NewClient(prizepicks.WithBaseURL(cfg.PrizePicks.BaseURL))
				adapters = append(adapters, ingest.NewPrizePicksAdapter(ppClient, cfg.PrizePicks.LeagueID))
			}

			registry := resolve.NewRegistry(cfg.Pipeline.MinMatchScore)
			ingestor := ingest.New(registry, time.Duration(cfg.Pipeline.FetchTimeoutSecs)*time.Second)

			snapshots, ingestReport, err := ingestor.Ingest(ctx, games, adapters)
			if err != nil {
				return eris.Wrap(err, "ingest props")
			}
			for i := range report {
				snap := snapshots[report[i].ID]
				if snap == nil {
					continue
				}
				report[i].Lines = len(snap.Lines)
				report[i].Players = radarPlayers(snap)
			}
			zap.L().Info("radar complete",
				zap.Int("games", len(games)),
				zap.Int("fetch_failures", len(ingestReport.Failures)),
				zap.Int("odds_requests_remaining", oddsClient.RequestsRemaining()),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

// radarPlayers lists each player quoted in the snapshot with the stats quoted
// for them, sorted by name.
func radarPlayers(snap *model.MarketSnapshot) []radarPlayer {
	stats := make(map[string]map[model.StatType]struct{})
	for _, line := range snap.Lines {
		name := line.Player.DisplayName
		if stats[name] == nil {
			stats[name] = make(map[model.StatType]struct{})
		}
		stats[name][line.Stat] = struct{}{}
	}

	players := make([]radarPlayer, 0, len(stats))
	for name, set := range stats {
		p := radarPlayer{Name: name}
		for _, stat := range model.StatTypes {
			if _, ok := set[stat]; ok {
				p.Stats = append(p.Stats, string(stat))
			}
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players
}

func init() {
	radarCmd.Flags().BoolVar(&radarProps, "props", false, "also fetch props and list quoted players per game")
	rootCmd.AddCommand(radarCmd)
}

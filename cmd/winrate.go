package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/primeprop/primeprop/internal/store"
)

var winrateRecent int

var winrateCmd = &cobra.Command{
	Use:   "winrate",
	Short: "Summarize graded pick performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		wr, err := st.WinRate(ctx)
		if err != nil {
			return eris.Wrap(err, "win rate")
		}

		out := struct {
			store.WinRate
			Recent []store.Pick `json:"recent,omitempty"`
		}{WinRate: wr}

		if winrateRecent > 0 {
			recent, err := st.ListPicks(ctx, store.PickFilter{GradedOnly: true, Limit: winrateRecent})
			if err != nil {
				return eris.Wrap(err, "list graded picks")
			}
			out.Recent = recent
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	winrateCmd.Flags().IntVar(&winrateRecent, "recent", 0, "also print the N most recent graded picks")
	rootCmd.AddCommand(winrateCmd)
}

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/primeprop/primeprop/internal/model"
	"github.com/primeprop/primeprop/internal/store"
)

var (
	gradeID     string
	gradeActual float64
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Record a pick's actual result",
	Long:  "Looks up the pick, compares the actual stat value against the recommended side, and stores the outcome. A push (actual equal to the line) grades as a loss.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pick, err := findPick(ctx, st, gradeID)
		if err != nil {
			return err
		}
		if pick.Side == string(model.SidePass) {
			return eris.Errorf("pick %s was a Pass; nothing to grade", gradeID)
		}

		won := gradeActual > pick.Line
		if pick.Side == string(model.SideUnder) {
			won = gradeActual < pick.Line
		}

		if err := st.GradePick(ctx, gradeID, gradeActual, won); err != nil {
			return eris.Wrap(err, "grade pick")
		}

		pick.ActualResult = &gradeActual
		pick.Won = &won
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pick)
	},
}

func findPick(ctx context.Context, st store.Store, id string) (*store.Pick, error) {
	picks, err := st.ListPicks(ctx, store.PickFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "list picks")
	}
	for i := range picks {
		if picks[i].ID == id {
			return &picks[i], nil
		}
	}
	return nil, eris.Errorf("no pick with id %s", id)
}

func init() {
	gradeCmd.Flags().StringVar(&gradeID, "id", "", "pick ID (required)")
	gradeCmd.Flags().Float64Var(&gradeActual, "actual", 0, "actual stat value (required)")
	_ = gradeCmd.MarkFlagRequired("id")
	_ = gradeCmd.MarkFlagRequired("actual")
	rootCmd.AddCommand(gradeCmd)
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
)

func init() {
	historyCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Rows to show (0 for all)")
	ledgerCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Rows to show (0 for all)")
	rootCmd.AddCommand(historyCmd, ledgerCmd, milestonesCmd)
}

var listLimit int

var historyCmd = &cobra.Command{
	Use:   "history PLAYER",
	Short: "Show recent workouts, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger PLAYER",
	Short: "Show essence transactions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedger,
}

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List milestone levels and what they unlock",
	Args:  cobra.NoArgs,
	RunE:  runMilestones,
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		list, err := eng.History(ctx, id, listLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No workouts logged yet.")
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "WHEN\tTYPE\tDETAIL\tXP\tPET XP")
		for _, wo := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				wo.At.Format("2006-01-02 15:04"),
				wo.Type,
				workoutDetail(wo),
				wo.XPEarned,
				wo.PetXPEarned,
			)
		}
		return w.Flush()
	})
}

func workoutDetail(wo domain.Workout) string {
	switch {
	case wo.Strength != nil:
		s := wo.Strength
		return fmt.Sprintf("%gx%dx%d", s.Weight, s.Reps, s.Sets)
	case wo.Cardio != nil:
		c := wo.Cardio
		d := fmt.Sprintf("%g min", c.DurationMinutes)
		if c.Steps != nil {
			d += fmt.Sprintf(", %d steps", *c.Steps)
		}
		if c.Calories != nil {
			d += fmt.Sprintf(", %g kcal", *c.Calories)
		}
		return d
	}
	return "-"
}

func runLedger(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		entries, err := eng.Ledger(ctx, id, listLimit)
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "WHEN\tAMOUNT\tREASON\tBALANCE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%+d\t%s\t%d\n",
				e.At.Format("2006-01-02 15:04"), e.Amount, e.Reason, e.Balance)
		}
		return w.Flush()
	})
}

func runMilestones(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		w := newTable()
		fmt.Fprintln(w, "LEVEL\tRANK\tUNLOCKS")
		for _, lvl := range eng.Milestones() {
			fmt.Fprintf(w, "%d\t%s\t%s\n", lvl, eng.Rules().Levels.RankFor(lvl), joinOrDash(eng.MilestoneUnlocks(lvl)))
		}
		return w.Flush()
	})
}

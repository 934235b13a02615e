package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/app/pet"
)

func init() {
	rootCmd.AddCommand(statusCmd, refreshCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status PLAYER",
	Short: "Show level, streak, essence and pet",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh PLAYER",
	Short: "Apply and save pet happiness decay up to now",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefresh,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		st, err := eng.Status(ctx, id)
		if err != nil {
			return err
		}
		printStatus(st)
		return nil
	})
}

func runRefresh(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		st, decay, err := eng.Refresh(ctx, id)
		if err != nil {
			return err
		}
		printDecay(decay)
		printStatus(st)
		return nil
	})
}

func printStatus(st *game.Status) {
	p := st.Player
	fmt.Fprintf(out, "Player:    %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(out, "Level:     %d %s\n", st.Level, st.Rank)
	if st.XPToNext > 0 {
		fmt.Fprintf(out, "XP:        %d  %s  %d to next\n", p.TotalXP, renderBar(st.ProgressPct), st.XPToNext)
	} else {
		fmt.Fprintf(out, "XP:        %d  (max level)\n", p.TotalXP)
	}
	if st.NextMilestone > 0 {
		fmt.Fprintf(out, "Milestone: level %d\n", st.NextMilestone)
	}
	fmt.Fprintf(out, "Streak:    %s (best %s)", formatDays(p.CurrentStreak), formatDays(p.HighestStreak))
	if st.StreakBonus != "" {
		fmt.Fprintf(out, "  %s", st.StreakBonus)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Essence:   %d\n", p.EssenceBalance)
	fmt.Fprintf(out, "Workouts:  %d\n", st.WorkoutCount)
	fmt.Fprintf(out, "Unlocked:  %s\n", joinOrDash(p.UnlockedCosmeticKeys.Sorted()))

	if st.Pet == nil {
		fmt.Fprintln(out, "Pet:       none")
		return
	}
	pt := st.Pet
	fmt.Fprintf(out, "Pet:       %s the %s (%s, level %d)\n", pt.Name, pt.Species, pt.Stage, pt.Level)
	if pt.IsAway {
		fmt.Fprintf(out, "Mood:      away (%d recent workouts)", pt.RecentWorkouts)
		if pt.CanRecover {
			fmt.Fprint(out, ", ready to recover")
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintf(out, "Mood:      %s  %s\n", pt.Mood, renderBar(pt.Happiness))
	}
	fmt.Fprintf(out, "Equipped:  %s\n", joinOrDash(pt.EquippedAccessoryIDs.Sorted()))
}

func printDecay(d pet.DecayResult) {
	if d.Lost > 0 {
		fmt.Fprintf(out, "Pet lost %.1f happiness while you were away\n", d.Lost)
	}
	if d.WentAway {
		fmt.Fprintln(out, "Your pet has gone away. Log workouts or spend essence to bring it back.")
	}
}

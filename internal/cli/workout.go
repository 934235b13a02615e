package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
)

func init() {
	f := workoutCmd.Flags()
	f.StringVarP(&woType, "type", "t", "", "Workout type: strength or cardio (taken from the template when omitted)")
	f.StringVar(&woTemplate, "template", "", "Template id to take base XP from")
	f.Float64Var(&woWeight, "weight", 0, "Strength: weight per rep")
	f.IntVar(&woReps, "reps", 0, "Strength: reps per set")
	f.IntVar(&woSets, "sets", 0, "Strength: number of sets")
	f.Float64Var(&woMinutes, "minutes", 0, "Cardio: duration in minutes")
	f.Int64Var(&woSteps, "steps", 0, "Cardio: step count")
	f.Float64Var(&woCalories, "calories", 0, "Cardio: calories burned")
	rootCmd.AddCommand(workoutCmd)
}

var (
	woType     string
	woTemplate string
	woWeight   float64
	woReps     int
	woSets     int
	woMinutes  float64
	woSteps    int64
	woCalories float64
)

var workoutCmd = &cobra.Command{
	Use:     "workout PLAYER",
	Aliases: []string{"log"},
	Short:   "Log a workout",
	Example: `  fitpet workout robin --type strength --weight 60 --reps 10 --sets 3
  fitpet workout robin --type cardio --minutes 30 --steps 4200`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkout,
}

func runWorkout(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		in, err := workoutInput(ctx, eng, cmd)
		if err != nil {
			return err
		}
		res, err := eng.LogWorkout(ctx, id, in)
		if err != nil {
			return err
		}
		printWorkoutResult(res)
		return nil
	})
}

// workoutInput builds the input from flags. Only flags the user set are
// forwarded, so unset optional cardio metrics stay absent.
func workoutInput(ctx context.Context, eng *game.Engine, cmd *cobra.Command) (game.WorkoutInput, error) {
	in := game.WorkoutInput{Type: domain.WorkoutType(woType), TemplateID: woTemplate}
	if in.Type == "" && woTemplate != "" {
		templates, err := eng.Templates(ctx)
		if err != nil {
			return in, err
		}
		for _, t := range templates {
			if t.ID == woTemplate {
				in.Type = t.Type
			}
		}
	}

	switch in.Type {
	case domain.WorkoutStrength:
		in.Strength = &domain.StrengthMetrics{Weight: woWeight, Reps: woReps, Sets: woSets}
	case domain.WorkoutCardio:
		c := &domain.CardioMetrics{DurationMinutes: woMinutes}
		if cmd.Flags().Changed("steps") {
			steps := woSteps
			c.Steps = &steps
		}
		if cmd.Flags().Changed("calories") {
			cal := woCalories
			c.Calories = &cal
		}
		in.Cardio = c
	}
	return in, nil
}

func printWorkoutResult(res *game.WorkoutResult) {
	printDecay(res.PetDecay)

	fmt.Fprintf(out, "+%d XP", res.Workout.XPEarned)
	if res.Streak.IsFirstWorkoutOfDay {
		fmt.Fprint(out, " (first workout today)")
	}
	fmt.Fprintln(out)

	switch {
	case res.Streak.Broken:
		fmt.Fprintf(out, "Streak reset. Day 1 again.\n")
	case res.Streak.Extended:
		fmt.Fprintf(out, "Streak: %s", formatDays(res.Streak.State.Current))
		if res.StreakBonus != "" {
			fmt.Fprintf(out, "  %s", res.StreakBonus)
		}
		fmt.Fprintln(out)
	}

	if res.LeveledUp() {
		fmt.Fprintf(out, "Level up! %d -> %d", res.OldLevel, res.NewLevel)
		if res.NewRank != res.OldRank {
			fmt.Fprintf(out, "  Rank: %s -> %s", res.OldRank, res.NewRank)
		}
		fmt.Fprintln(out)
	}
	for _, m := range res.Milestones {
		fmt.Fprintf(out, "Milestone reached: level %d\n", m)
	}
	for _, key := range res.NewUnlocks {
		fmt.Fprintf(out, "Unlocked: %s\n", key)
	}
	fmt.Fprintf(out, "+%d essence (balance %d)\n", res.EssenceEarned, res.Status.Player.EssenceBalance)

	if res.PetXP != nil && res.Status.Pet != nil {
		fmt.Fprintf(out, "%s gained %d XP", res.Status.Pet.Name, res.PetXP.Amount)
		if res.PetXP.NewLevel > res.PetXP.OldLevel {
			fmt.Fprintf(out, " and reached level %d", res.PetXP.NewLevel)
		}
		if res.PetXP.Evolved() {
			fmt.Fprintf(out, ", evolving into a %s", res.PetXP.NewStage)
		}
		fmt.Fprintln(out)
	}
	if res.Status.Pet != nil && res.Status.Pet.IsAway {
		fmt.Fprintf(out, "%s is away and earned nothing.\n", res.Status.Pet.Name)
	}
}

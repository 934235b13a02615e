package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
)

func init() {
	petRecoverCmd.Flags().StringVar(&recoverMethod, "method", string(domain.RecoverByWorkouts),
		"Recovery method: workouts or essence")
	petCmd.AddCommand(petFeedCmd, petRecoverCmd, petTreatsCmd, petEquipCmd, petUnequipCmd)
	rootCmd.AddCommand(petCmd)
}

var recoverMethod string

var petCmd = &cobra.Command{
	Use:   "pet",
	Short: "Care for your pet",
}

var petFeedCmd = &cobra.Command{
	Use:   "feed PLAYER TIER",
	Short: "Buy and feed a treat (small, medium, large)",
	Args:  cobra.ExactArgs(2),
	RunE:  runPetFeed,
}

var petRecoverCmd = &cobra.Command{
	Use:   "recover PLAYER",
	Short: "Bring an away pet back",
	Args:  cobra.ExactArgs(1),
	RunE:  runPetRecover,
}

var petTreatsCmd = &cobra.Command{
	Use:   "treats",
	Short: "List treat prices",
	Args:  cobra.NoArgs,
	RunE:  runPetTreats,
}

var petEquipCmd = &cobra.Command{
	Use:   "equip PLAYER ACCESSORY",
	Short: "Put an owned accessory on your pet",
	Args:  cobra.ExactArgs(2),
	RunE:  runPetToggle(true),
}

var petUnequipCmd = &cobra.Command{
	Use:   "unequip PLAYER ACCESSORY",
	Short: "Take an accessory off your pet",
	Args:  cobra.ExactArgs(2),
	RunE:  runPetToggle(false),
}

func runPetFeed(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		st, err := eng.FeedTreat(ctx, id, domain.TreatTier(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s enjoyed the %s treat. %s %s\n",
			st.Pet.Name, args[1], st.Pet.Mood, renderBar(st.Pet.Happiness))
		fmt.Fprintf(out, "Essence: %d\n", st.Player.EssenceBalance)
		return nil
	})
}

func runPetRecover(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		st, err := eng.RecoverPet(ctx, id, domain.RecoveryMethod(recoverMethod))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is back! %s %s\n", st.Pet.Name, st.Pet.Mood, renderBar(st.Pet.Happiness))
		return nil
	})
}

func runPetTreats(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		w := newTable()
		fmt.Fprintln(w, "TIER\tCOST\tHAPPINESS")
		for _, t := range eng.Treats() {
			fmt.Fprintf(w, "%s\t%d\t+%.0f\n", t.Tier, t.Cost, t.Boost)
		}
		return w.Flush()
	})
}

func runPetToggle(equip bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, eng *game.Engine) error {
			id, err := resolvePlayer(ctx, eng, args[0])
			if err != nil {
				return err
			}
			toggle := eng.UnequipAccessory
			if equip {
				toggle = eng.EquipAccessory
			}
			st, err := toggle(ctx, id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Equipped: %s\n", joinOrDash(st.Pet.EquippedAccessoryIDs.Sorted()))
			return nil
		})
	}
}

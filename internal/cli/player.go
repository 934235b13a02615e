package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
)

func init() {
	playerCreateCmd.Flags().StringVar(&createPetName, "pet", "", "Pet name (defaults to the species)")
	playerCreateCmd.Flags().StringVar(&createSpecies, "species", "", "Pet species: plant, cat, dog, dragon (empty for no pet)")
	playerCmd.AddCommand(playerCreateCmd, playerListCmd)
	rootCmd.AddCommand(playerCmd)
}

var (
	createPetName string
	createSpecies string
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Create and list players",
}

var playerCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a player and adopt a pet",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayerCreate,
}

var playerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List players",
	RunE:    runPlayerList,
}

func runPlayerCreate(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		st, err := eng.CreatePlayer(ctx, game.NewPlayer{
			DisplayName: args[0],
			PetName:     createPetName,
			Species:     domain.Species(createSpecies),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created player %s (%s)\n", st.Player.DisplayName, st.Player.ID)
		if st.Pet != nil {
			fmt.Fprintf(out, "Adopted %s the %s\n", st.Pet.Name, st.Pet.Species)
		}
		fmt.Fprintf(out, "Starting essence: %d\n", st.Player.EssenceBalance)
		return nil
	})
}

func runPlayerList(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		players, err := eng.Players(ctx)
		if err != nil {
			return err
		}
		if len(players) == 0 {
			fmt.Fprintln(out, "No players yet. Run 'fitpet player create NAME' to get started.")
			return nil
		}

		lr := eng.Rules().Levels
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tLEVEL\tRANK\tSTREAK\tESSENCE\tCREATED")
		for _, p := range players {
			level := lr.LevelFor(p.TotalXP)
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%s\n",
				p.ID,
				p.DisplayName,
				level,
				lr.RankFor(level),
				p.CurrentStreak,
				p.EssenceBalance,
				p.CreatedAt.Format("2006-01-02"),
			)
		}
		return w.Flush()
	})
}

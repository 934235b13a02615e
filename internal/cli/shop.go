package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
)

func init() {
	shopCmd.AddCommand(shopListCmd, shopBuyCmd)
	rootCmd.AddCommand(shopCmd)
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Browse and buy pet accessories",
}

var shopListCmd = &cobra.Command{
	Use:     "list [PLAYER]",
	Aliases: []string{"ls"},
	Short:   "List the catalog, with ownership when a player is given",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runShopList,
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy PLAYER ACCESSORY",
	Short: "Buy an accessory with essence",
	Args:  cobra.ExactArgs(2),
	RunE:  runShopBuy,
}

func runShopList(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		w := newTable()
		if len(args) == 0 {
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tRARITY\tCOST")
			for _, a := range eng.Catalog() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.Name, a.Category, a.Rarity, a.Cost)
			}
			return w.Flush()
		}

		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		items, err := eng.Shop(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tRARITY\tCOST\tSTATE")
		for _, it := range items {
			state := "-"
			switch {
			case it.Equipped:
				state = "equipped"
			case it.Owned:
				state = "owned"
			case it.Affordable:
				state = "affordable"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Category, it.Rarity, it.Cost, state)
		}
		return w.Flush()
	})
}

func runShopBuy(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		id, err := resolvePlayer(ctx, eng, args[0])
		if err != nil {
			return err
		}
		st, err := eng.PurchaseAccessory(ctx, id, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Bought %s. Essence left: %d\n", args[1], st.Player.EssenceBalance)
		return nil
	})
}

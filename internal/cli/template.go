package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
)

func init() {
	templateAddCmd.Flags().StringVarP(&tmplType, "type", "t", "", "Workout type: strength or cardio")
	templateAddCmd.Flags().Int64Var(&tmplBaseXP, "base-xp", 0, "Base XP before multipliers")
	_ = templateAddCmd.MarkFlagRequired("type")
	templateCmd.AddCommand(templateAddCmd, templateListCmd)
	rootCmd.AddCommand(templateCmd)
}

var (
	tmplType   string
	tmplBaseXP int64
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage workout templates",
}

var templateAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a workout template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateAdd,
}

var templateListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workout templates",
	RunE:    runTemplateList,
}

func runTemplateAdd(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		t, err := eng.CreateTemplate(ctx, args[0], domain.WorkoutType(tmplType), tmplBaseXP)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created template %s (%s)\n", t.Name, t.ID)
		return nil
	})
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	return withEngine(func(ctx context.Context, eng *game.Engine) error {
		list, err := eng.Templates(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No templates. Run 'fitpet template add NAME --type strength' to create one.")
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tBASE XP")
		for _, t := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.ID, t.Name, t.Type, t.BaseXP)
		}
		return w.Flush()
	})
}

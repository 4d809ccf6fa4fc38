package cmd

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/skidrates/internal/admin"
	"github.com/JonMunkholm/skidrates/internal/core"
	"github.com/spf13/cobra"
)

var (
	resetFlags selectorFlags
	resetAll   bool
	resetYes   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored rates for one service slice or all of them",
	Long: `Reset deletes stored rates directly, outside any editing session.

It is audited as a critical action and requires --yes.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetFlags.bind(resetCmd)
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "delete every stored rate")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the deletion")
}

func runReset(c *cobra.Command, _ []string) error {
	if !resetYes {
		return errors.New("refusing to delete rates without --yes")
	}

	ctx := cliContext(c.Context())
	r := admin.NewResetter(pool, core.NewAuditService(pool))

	var (
		n   int64
		err error
	)
	if resetAll {
		n, err = r.ResetAll(ctx)
	} else {
		sel, selErr := resetFlags.selector()
		if selErr != nil {
			return selErr
		}
		n, err = r.ResetSlices(ctx, sel)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "deleted %d rates\n", n)
	return nil
}

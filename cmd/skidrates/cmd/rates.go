package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportFlags  selectorFlags
	exportOutput string

	importFlags    selectorFlags
	importCurrency string
	importDryRun   bool

	templateOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write one service slice as canonical CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a rate sheet into one service slice and save it",
	Long: `Import reads a rate sheet into the given service slice and saves it.

Rows for pickup cities that are not in the list are skipped. Cities missing
from the file keep their stored rates. Use --dry-run to see the counts
without saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an empty rate sheet for the current pickup cities",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		text, err := service.Template(c.Context())
		if err != nil {
			return err
		}
		return writeOutput(c, templateOutput, text)
	},
}

func init() {
	exportFlags.bind(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")

	importFlags.bind(importCmd)
	importCmd.Flags().StringVar(&importCurrency, "currency", "", "currency tag for saved rates (default MATRIX_DEFAULT_CURRENCY)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report counts without saving")

	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(c *cobra.Command, _ []string) error {
	sel, err := exportFlags.selector()
	if err != nil {
		return err
	}

	ctx := c.Context()
	id, err := service.OpenSession(ctx, sel, "")
	if err != nil {
		return err
	}
	defer service.CloseSession(ctx, id) //nolint:errcheck

	_, text, err := service.Export(ctx, id)
	if err != nil {
		return err
	}
	return writeOutput(c, exportOutput, text)
}

func runImport(c *cobra.Command, args []string) error {
	sel, err := importFlags.selector()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cliContext(c.Context())
	id, err := service.OpenSession(ctx, sel, importCurrency)
	if err != nil {
		return err
	}
	defer service.CloseSession(ctx, id) //nolint:errcheck

	result, err := service.Import(ctx, id, f)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "matched: %d\n", result.Matched)
	fmt.Fprintf(out, "skipped: %d\n", result.Skipped)

	if importDryRun {
		fmt.Fprintln(out, "dry run: nothing saved")
		return nil
	}
	if err := service.Save(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", sel)
	return nil
}

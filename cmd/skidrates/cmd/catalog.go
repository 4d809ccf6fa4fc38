package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List pickup cities in display order",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		cities, err := service.Cities(c.Context())
		if err != nil {
			return err
		}
		for _, city := range cities {
			fmt.Fprintln(c.OutOrStdout(), city)
		}
		return nil
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the service and service type pairs that can be edited",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		sels, err := service.Selectors(c.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERVICE\tTYPE")
		for _, sel := range sels {
			fmt.Fprintf(w, "%s\t%s\n", sel.Service, sel.ServiceType)
		}
		return w.Flush()
	},
}

package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
	rootCmd.AddCommand(starredCmd)
}

var starCmd = &cobra.Command{
	Use:   "star <merchant>...",
	Short: "Pins one or more merchants so their offers can be filtered to.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, merchant := range args {
			if err := starredSvc.Star(cmd.Context(), merchant); err != nil {
				return err
			}
		}
		return nil
	},
}

var unstarCmd = &cobra.Command{
	Use:   "unstar <merchant>...",
	Short: "Unpins one or more merchants.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, merchant := range args {
			if err := starredSvc.Unstar(cmd.Context(), merchant); err != nil {
				return err
			}
		}
		return nil
	},
}

var starredCmd = &cobra.Command{
	Use:   "starred",
	Short: "Lists the pinned merchants.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := starredSvc.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	},
}

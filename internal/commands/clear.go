package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Truncate the temperature log to its header",
	RunE: func(cmd *cobra.Command, args []string) error {
		tl := newTempLog()
		if err := tl.Clear(cmd.Context()); err != nil {
			return err
		}
		newLogger().Infow("log_cleared", "path", tl.Path())
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", tl.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

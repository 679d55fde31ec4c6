package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ledCmd = &cobra.Command{
	Use:       "led <on|off>",
	Short:     "Turn the strip's status LEDs on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}
		if err := strip.SetLEDs(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to set LEDs: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ledCmd)
}

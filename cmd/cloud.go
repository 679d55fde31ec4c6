package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cloudCmd = &cobra.Command{
	Use: "cloud <server-url>",
	Example: `  hs300 cloud devs.tplinkcloud.com
  // detach from any cloud server
  hs300 cloud ""`,
	Short: "Point the strip at a cloud server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}
		if err := strip.SetCloudServer(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to set cloud server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloudCmd)
}

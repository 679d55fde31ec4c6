package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rebootCmd = &cobra.Command{
	Use:     "reboot",
	Example: `  hs300 reboot --delay 5`,
	Short:   "Restart the power strip",
	Long:    "Restarts the strip's controller after --delay seconds. Outlet relays keep their state.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}
		delay := viper.GetInt("reboot.delay")
		if err := strip.Reboot(cmd.Context(), delay); err != nil {
			return fmt.Errorf("failed to reboot: %w", err)
		}
		log.Info().Str("host", strip.Host()).Int("delay", delay).Msg("reboot requested")
		return nil
	},
}

func init() {
	addFlag("reboot.delay", rebootCmd, "delay", "d", 1, "Seconds to wait before rebooting")
	rootCmd.AddCommand(rebootCmd)
}

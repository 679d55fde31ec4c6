package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// The `sysinfo` command prints get_sysinfo exactly as the strip answers it
// over --protocol.
var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print the strip's raw system info",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}
		log.Debug().Str("host", strip.Host()).Str("protocol", strip.Protocol().String()).Msg("reading raw system info")
		raw, err := strip.Exec(cmd.Context(), kasa.GetSysInfo())
		if err != nil {
			return fmt.Errorf("failed to get system info: %w", err)
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format system info: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sysinfoCmd)
}

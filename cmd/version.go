package cmd

import (
	"fmt"

	"github.com/OpenCHAMI/hs300/internal/format"
	"github.com/OpenCHAMI/hs300/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionFormat = format.FORMAT_LIST

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Current()
		if f := format.DataFormat(viper.GetString("version.format")); f != format.FORMAT_LIST {
			return printMarshaled(cmd.OutOrStdout(), info, f)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.Version)
		return nil
	},
}

func init() {
	addFlag("version.format", versionCmd, "format", "F", &versionFormat, "Set the output format (list|json|yaml)")
	rootCmd.AddCommand(versionCmd)
}

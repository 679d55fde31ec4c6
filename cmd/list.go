package cmd

import (
	"fmt"

	"github.com/OpenCHAMI/hs300/internal/format"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listFormat = format.FORMAT_LIST

// The `list` command shows the snapshots stored by `status` without
// contacting any strip.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List outlets stored in the cache",
	Long: "Prints every strip and outlet recorded by a previous 'status' run.\n\n" +
		"Examples:\n" +
		"  hs300 list\n" +
		"  hs300 list --cache ./snapshots.db -F json\n" +
		"  hs300 list -o outlets.yaml",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := snapshotCache.Get(viper.GetString("cache"))
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		return writeStrips(cmd, viper.GetString("list.output"), records, format.DataFormat(viper.GetString("list.format")))
	},
}

func init() {
	addFlag("list.format", listCmd, "format", "F", &listFormat, "Set the output format (list|json|yaml)")
	addFlag("list.output", listCmd, "output", "o", "", "Write the output to a file instead of stdout")
	rootCmd.AddCommand(listCmd)
}

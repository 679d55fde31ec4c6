package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached strip snapshots",
}

var cacheRemoveCmd = &cobra.Command{
	Use:     "remove <device-id>...",
	Example: `  hs300 cache remove 8006A1B2C3D4E5F6A7B8C9D0E1F2A3B4C5D6E7F8`,
	Short:   "Remove strips from the cache",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("cache")
		if err := snapshotCache.Delete(path, args...); err != nil {
			return fmt.Errorf("failed to remove cached strips: %w", err)
		}
		log.Info().Str("cache", path).Strs("device_ids", args).Msg("removed from cache")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheRemoveCmd)
	rootCmd.AddCommand(cacheCmd)
}

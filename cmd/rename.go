package cmd

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:     "rename <outlet-number> <alias>",
	Example: `  hs300 rename 2 "Desk lamp"`,
	Short:   "Set the alias of an outlet",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("outlet number must be an integer: %q", args[0])
		}
		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}
		if err := strip.Rename(cmd.Context(), number, args[1]); err != nil {
			return fmt.Errorf("failed to rename outlet %d: %w", number, err)
		}
		log.Info().Str("host", strip.Host()).Int("outlet", number).Str("alias", args[1]).Msg("renamed outlet")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

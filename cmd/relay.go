package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRelayCmd builds the `on` and `off` commands, which switch outlets given
// by number or alias in a single request.
func newRelayCmd(state string) *cobra.Command {
	key := state + ".all"
	c := &cobra.Command{
		Use: state + " <outlet>...",
		Example: fmt.Sprintf(`  hs300 %[1]s 1 3
  hs300 %[1]s Lamp "Desk fan"
  hs300 %[1]s alias:2
  hs300 %[1]s --all`, state),
		Short: fmt.Sprintf("Switch outlets %s", state),
		Long:  fmt.Sprintf("Switches the given outlets %s. Outlets are numbered from 1 in the order the strip reports them; anything that isn't a number is taken as an alias. Prefix an alias with 'alias:' when it is itself a number. Numbers and aliases can't be mixed in one call.", state),
		RunE: func(cmd *cobra.Command, args []string) error {
			all := viper.GetBool(key)
			if all == (len(args) > 0) {
				return fmt.Errorf("give either outlets or --all")
			}
			strip, err := connect(cmd.Context(), "")
			if err != nil {
				return err
			}
			if all {
				err = strip.SetAll(cmd.Context(), state)
			} else {
				err = strip.SetRelayMany(cmd.Context(), state, parseTargets(args)...)
			}
			if err != nil {
				return fmt.Errorf("failed to switch outlets %s: %w", state, err)
			}
			log.Info().Str("host", strip.Host()).Strs("outlets", args).Bool("all", all).Msgf("switched %s", state)
			return nil
		},
	}
	addFlag(key, c, "all", "a", false, fmt.Sprintf("Switch every outlet %s", state))
	return c
}

func init() {
	rootCmd.AddCommand(newRelayCmd("on"), newRelayCmd("off"))
}

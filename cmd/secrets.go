package cmd

import (
	"fmt"

	"github.com/OpenCHAMI/hs300/internal/util"
	"github.com/OpenCHAMI/hs300/pkg/secrets"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var secretsCmd = &cobra.Command{
	Use: "secrets",
	Example: `  // generate new key and set environment variable
  export HS300_MASTER_KEY=$(hs300 secrets generatekey)

  // save the password of a network for 'hs300 wifi'
  hs300 secrets store home s3cret

  // list and remove saved networks
  hs300 secrets list
  hs300 secrets remove home`,
	Short: "Manage saved WiFi passwords",
	Long: "Manage the WiFi passwords used by 'hs300 wifi'. The secrets file is encrypted with the hex key in $" +
		secrets.MasterKeyEnv + "; create one with 'hs300 secrets generatekey'.",
}

var secretsGenerateKeyCmd = &cobra.Command{
	Use:   "generatekey",
	Args:  cobra.NoArgs,
	Short: "Generates a new 32-byte master key (in hex)",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := secrets.GenerateMasterKey()
		if err != nil {
			return fmt.Errorf("failed to generate master key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var secretsStoreCmd = &cobra.Command{
	Use:   "store <ssid> <password>",
	Args:  cobra.ExactArgs(2),
	Short: "Saves the password of a network",
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return fmt.Errorf("ssid must not be empty")
		}
		store, err := secrets.OpenStore(viper.GetString("secrets.file"))
		if err != nil {
			return fmt.Errorf("failed to open secrets file: %w", err)
		}
		if err := store.StoreSecretByID(secrets.WiFiSecretID(args[0]), args[1]); err != nil {
			return fmt.Errorf("failed to save password for %s: %w", args[0], err)
		}
		log.Info().Str("ssid", args[0]).Msg("password saved")
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "Lists the networks with a saved password",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.OpenStore(viper.GetString("secrets.file"))
		if err != nil {
			return fmt.Errorf("failed to open secrets file: %w", err)
		}
		ids, err := store.ListSecretIDs()
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}
		for _, id := range ids {
			if ssid, ok := secrets.WiFiSSID(id); ok {
				fmt.Fprintln(cmd.OutOrStdout(), ssid)
			}
		}
		return nil
	},
}

var secretsRemoveCmd = &cobra.Command{
	Use:   "remove <ssid>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Removes saved passwords",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.OpenStore(viper.GetString("secrets.file"))
		if err != nil {
			return fmt.Errorf("failed to open secrets file: %w", err)
		}
		var errs []error
		for _, ssid := range args {
			if err := store.RemoveSecretByID(secrets.WiFiSecretID(ssid)); err != nil {
				errs = append(errs, err)
				continue
			}
			log.Info().Str("ssid", ssid).Msg("password removed")
		}
		if util.HasErrors(errs) {
			return fmt.Errorf("failed to remove %d password(s):\n%w", len(errs), util.FormatErrorList(errs))
		}
		return nil
	},
}

func init() {
	secretsCmd.PersistentFlags().StringP("file", "f", util.DefaultSecretsPath(), "Set the path of the encrypted secrets file")
	checkBindFlagError(viper.BindPFlag("secrets.file", secretsCmd.PersistentFlags().Lookup("file")))

	secretsCmd.AddCommand(secretsGenerateKeyCmd, secretsStoreCmd, secretsListCmd, secretsRemoveCmd)
	rootCmd.AddCommand(secretsCmd)
}

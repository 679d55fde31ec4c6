package cmd

import (
	"fmt"

	"github.com/OpenCHAMI/hs300/internal/util"
	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/OpenCHAMI/hs300/pkg/secrets"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var wifiCmd = &cobra.Command{
	Use: "wifi",
	Example: `  hs300 wifi --ssid home --password secret --key-type 3
  // keep the password in the encrypted store for next time
  HS300_MASTER_KEY=... hs300 wifi --ssid home --password secret --save-password
  HS300_MASTER_KEY=... hs300 wifi --ssid home`,
	Short: "Join the strip to a wireless network",
	Long: "Stores station credentials on the strip. The strip drops off its current network once it accepts them.\n" +
		"Key types: 1 = WEP, 2 = WPA, 3 = WPA2.\n\n" +
		"Without --password the password saved for --ssid is read from the secrets file, which is\n" +
		"encrypted with the hex key in $" + secrets.MasterKeyEnv + ".",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ssid := viper.GetString("wifi.ssid")
		if ssid == "" {
			return fmt.Errorf("--ssid is required")
		}
		keyType := kasa.KeyType(viper.GetInt("wifi.key-type"))
		if keyType < kasa.KeyWEP || keyType > kasa.KeyWPA2 {
			return fmt.Errorf("invalid --key-type %d (1 = WEP, 2 = WPA, 3 = WPA2)", keyType)
		}

		password := viper.GetString("wifi.password")
		save := viper.GetBool("wifi.save-password")
		var store secrets.SecretStore
		if password == "" || save {
			var err error
			store, err = secrets.OpenStore(viper.GetString("wifi.secrets-file"))
			if err != nil && save {
				return fmt.Errorf("failed to open secrets file: %w", err)
			}
			if err != nil {
				log.Debug().Err(err).Msg("no secret store; joining without a password")
			}
		}
		if password == "" && store != nil {
			if p, err := store.GetSecretByID(secrets.WiFiSecretID(ssid)); err == nil {
				password = p
			} else {
				log.Debug().Err(err).Str("ssid", ssid).Msg("no saved password")
			}
		}

		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}
		if err := strip.SetWiFi(cmd.Context(), ssid, password, keyType); err != nil {
			return fmt.Errorf("failed to set wifi credentials: %w", err)
		}
		log.Info().Str("host", strip.Host()).Str("ssid", ssid).Msg("wifi credentials sent")

		if save && password != "" {
			if err := store.StoreSecretByID(secrets.WiFiSecretID(ssid), password); err != nil {
				return fmt.Errorf("failed to save password for %s: %w", ssid, err)
			}
		}
		return nil
	},
}

func init() {
	addFlag("wifi.ssid", wifiCmd, "ssid", "s", "", "Network name")
	addFlag("wifi.password", wifiCmd, "password", "p", "", "Network password")
	addFlag("wifi.key-type", wifiCmd, "key-type", "k", int(kasa.KeyWPA2), "Key type (1 = WEP, 2 = WPA, 3 = WPA2)")
	addFlag("wifi.save-password", wifiCmd, "save-password", "", false, "Save --password in the secrets file")
	addFlag("wifi.secrets-file", wifiCmd, "secrets-file", "", util.DefaultSecretsPath(), "Set the path of the encrypted secrets file")
	rootCmd.AddCommand(wifiCmd)
}

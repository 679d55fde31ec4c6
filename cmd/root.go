// The cmd package implements the hs300 CLI. Each file holds one subcommand
// that parses its arguments and calls into pkg/kasa, which does the actual
// talking to the power strip.
//
// For example:
//
//	cmd/relay.go  --> kasa.Strip.SetRelayMany(), kasa.Strip.SetAll()
//	cmd/status.go --> kasa.New(), pdu.FromSnapshot(), sqlite.InsertStrips()
//	cmd/list.go   --> sqlite.GetStrips() (no network)
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	hs300 "github.com/OpenCHAMI/hs300/internal"
	logger "github.com/OpenCHAMI/hs300/internal/log"
	"github.com/OpenCHAMI/hs300/internal/util"
	"github.com/OpenCHAMI/hs300/internal/version"
	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	protocol = kasa.TCP
	logLevel = logger.INFO
)

// The `root` command doesn't do anything on its own except display
// a help message and then exit.
var rootCmd = &cobra.Command{
	Use:           "hs300",
	Short:         "Local-network control for HS300 smart power strips",
	Long:          "Switch, rename and meter the outlets of an HS300 power strip over its local TCP/UDP protocol.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level logger.LogLevel
		if err := level.Set(viper.GetString("log-level")); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		if err := logger.InitWithLogLevel(level, viper.GetString("log-file")); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// SetVersionInfo records build metadata passed in by main.
func SetVersionInfo(v, commit, date string) {
	version.Set(v, commit, date)
	rootCmd.Version = version.Version
}

// Execute is called from main to run the CLI.
func Execute() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		logger.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitializeConfig)
	hs300.SetDefaults()

	addFlag("host", rootCmd, "host", "H", "", "Set the IP address or hostname of the power strip")
	addFlag("port", rootCmd, "port", "", kasa.DefaultPort, "Set the port of the power strip")
	addFlag("timeout", rootCmd, "timeout", "t", kasa.DefaultTimeout, "Set the timeout for each request")
	addFlag("protocol", rootCmd, "protocol", "", &protocol, "Set the protocol for commands (tcp|udp)")
	addFlag("device-id", rootCmd, "device-id", "", "", "Override the device id reported by the strip")
	addFlag("concurrency", rootCmd, "concurrency", "j", -1, "Set the number of hosts queried in parallel")
	addFlag("config", rootCmd, "config", "c", "", "Set the config file path")
	addFlag("log-level", rootCmd, "log-level", "l", &logLevel, "Set the log level")
	addFlag("log-file", rootCmd, "log-file", "", "", "Also write logs to this file")
	addFlag("cache", rootCmd, "cache", "", util.DefaultCachePath(), "Set the snapshot cache path")
}

// addFlag registers a persistent flag on cmd when cmd is the root and a
// local flag otherwise, then binds it to the viper key.
func addFlag(key string, cmd *cobra.Command, long, short string, value any, usage string) {
	flags := cmd.Flags()
	if cmd == rootCmd {
		flags = cmd.PersistentFlags()
	}
	switch v := value.(type) {
	case string:
		flags.StringP(long, short, v, usage)
	case int:
		flags.IntP(long, short, v, usage)
	case bool:
		flags.BoolP(long, short, v, usage)
	case time.Duration:
		flags.DurationP(long, short, v, usage)
	case []string:
		flags.StringSliceP(long, short, v, usage)
	case pflag.Value:
		flags.VarP(v, long, short, usage)
	default:
		panic(fmt.Sprintf("addFlag: unsupported type %T for --%s", value, long))
	}
	checkBindFlagError(viper.BindPFlag(key, flags.Lookup(long)))
}

func checkBindFlagError(err error) {
	if err != nil {
		log.Error().Err(err).Msg("failed to bind cobra/viper flag")
	}
}

// InitializeConfig loads the config file named by --config, or
// $XDG_CONFIG_HOME/hs300/config.* when none is given.
func InitializeConfig() {
	viper.SetEnvPrefix("hs300")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	if path := viper.GetString("config"); path != "" {
		if err := hs300.LoadConfig(path); err != nil {
			log.Error().Err(err).Msg("failed to load config")
		}
		return
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = "$HOME/.config"
	}
	viper.AddConfigPath(configDir + "/hs300")
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("no config file found; using flags and defaults")
			return
		}
		log.Error().Err(err).Msg("failed to load config file")
	}
}

// connect builds a Strip for host from the configured connection settings.
// An empty host uses --host.
func connect(ctx context.Context, host string) (*kasa.Strip, error) {
	c, err := hs300.StripConfigFromViper(host)
	if err != nil {
		return nil, err
	}
	if c.Host == "" {
		return nil, fmt.Errorf("no power strip given; set --host or 'host' in the config file")
	}
	log.Debug().Str("host", c.Host).Int("port", c.Port).Str("protocol", c.Protocol.String()).Msg("connecting")
	return kasa.New(ctx, c.Host, c.Options()...)
}

// aliasPrefix forces an argument to be read as an alias, for outlets named
// with a number.
const aliasPrefix = "alias:"

// parseTargets reads each argument as an outlet number, or as an alias when
// it isn't a number or starts with "alias:".
func parseTargets(args []string) []kasa.Target {
	targets := make([]kasa.Target, 0, len(args))
	for _, arg := range args {
		if alias, ok := strings.CutPrefix(arg, aliasPrefix); ok {
			targets = append(targets, kasa.Alias(alias))
			continue
		}
		if n, err := strconv.Atoi(arg); err == nil {
			targets = append(targets, kasa.Outlet(n))
			continue
		}
		targets = append(targets, kasa.Alias(arg))
	}
	return targets
}

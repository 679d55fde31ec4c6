package cmd

import (
	"os/signal"
	"syscall"

	"github.com/OpenCHAMI/hs300/pkg/daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// The `daemon` command launches a long-running server that exposes all other commands as HTTP endpoints.
var daemonCmd = &cobra.Command{
	Use: "daemon",
	Example: `  // basic launch
  hs300 daemon
  // switch outlet 2 on through the daemon
  curl -X POST --data-binary $'2' localhost:8080/on`,
	Short: "Launch a long-running web server, e.g. for container use",
	Long:  "Exposes all other commands as HTTP endpoints. GET prints a command's help; POST runs it with one argument per line of the body.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// exposing the daemon command itself would let a request start another server
		rootCmd.RemoveCommand(cmd)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return daemon.New(rootCmd).Run(ctx, viper.GetString("daemon.endpoint"))
	},
}

func init() {
	addFlag("daemon.endpoint", daemonCmd, "endpoint", "e", "localhost:8080", "Address for the daemon to listen on")
	rootCmd.AddCommand(daemonCmd)
}

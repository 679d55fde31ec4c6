package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/OpenCHAMI/hs300/internal/cache"
	"github.com/OpenCHAMI/hs300/internal/cache/sqlite"
	"github.com/OpenCHAMI/hs300/internal/format"
	"github.com/OpenCHAMI/hs300/internal/util"
	"github.com/OpenCHAMI/hs300/pkg/pdu"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusFormat = format.FORMAT_LIST

var snapshotCache cache.Cache[cache.StripRecord] = sqlite.Cache{}

// The `status` command reads system info from one or more strips, prints
// every outlet and stores the snapshots for `list`.
var statusCmd = &cobra.Command{
	Use: "status [hosts...]",
	Example: `  hs300 status --host 192.168.1.40
  hs300 status 192.168.1.40 192.168.1.41 -F yaml
  hs300 status 192.168.1.40 --no-cache`,
	Short: "Show outlet names and relay states",
	Long:  "Fetches system info from each strip (UDP first, then TCP) and prints its outlets.\nHosts are queried in parallel; see --concurrency.",
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts := args
		if len(hosts) == 0 {
			hosts = []string{viper.GetString("host")}
		}

		type result struct {
			Record cache.StripRecord
			Err    error
		}
		results := concurrent_helper(workerCount(len(hosts)), hosts, func(host string) result {
			strip, err := connect(cmd.Context(), host)
			if err != nil {
				return result{Err: err}
			}
			return result{Record: cache.NewStripRecord(strip.Host(), strip.Snapshot())}
		})

		var (
			records []cache.StripRecord
			errs    []error
		)
		for _, host := range hosts {
			r := results[host]
			if r.Err != nil {
				log.Error().Err(r.Err).Str("host", host).Msg("failed to get status")
				errs = append(errs, r.Err)
				continue
			}
			records = append(records, r.Record)
		}

		if len(records) > 0 && !viper.GetBool("status.no-cache") {
			if err := snapshotCache.Insert(viper.GetString("cache"), records...); err != nil {
				log.Warn().Err(err).Msg("failed to cache snapshots")
			}
		}
		if err := writeStrips(cmd, viper.GetString("status.output"), records, format.DataFormat(viper.GetString("status.format"))); err != nil {
			return err
		}
		if util.HasErrors(errs) {
			return fmt.Errorf("failed to get status of %d host(s):\n%w", len(errs), util.FormatErrorList(errs))
		}
		return nil
	},
}

// writeStrips prints records to the command's output, or to path when one is
// given. A .json, .yaml or .yml path picks the format.
func writeStrips(cmd *cobra.Command, path string, records []cache.StripRecord, f format.DataFormat) error {
	if path == "" {
		return printStrips(cmd.OutOrStdout(), records, f)
	}
	if err := util.EnsureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	err = printStrips(file, records, format.DataFormatFromFileExt(path, f))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("strips", len(records)).Msg("wrote status")
	return nil
}

// printStrips renders records as outlet tables or as PDU inventories.
func printStrips(w io.Writer, records []cache.StripRecord, f format.DataFormat) error {
	if f != format.FORMAT_LIST {
		inventories := make([]*pdu.PDUInventory, 0, len(records))
		for _, r := range records {
			inventories = append(inventories, pdu.FromSnapshot(r.Host, r.Snapshot))
		}
		b, err := format.Marshal(inventories, f)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range records {
		inv := pdu.FromSnapshot(r.Host, r.Snapshot)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inv.Hostname, inv.Alias, inv.Model, inv.DeviceID)
		sort.Slice(inv.Outlets, func(i, j int) bool { return inv.Outlets[i].Number < inv.Outlets[j].Number })
		for _, o := range inv.Outlets {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", o.Number, o.Name, o.PowerState, o.ID)
		}
	}
	return tw.Flush()
}

func init() {
	addFlag("status.format", statusCmd, "format", "F", &statusFormat, "Set the output format (list|json|yaml)")
	addFlag("status.output", statusCmd, "output", "o", "", "Write the output to a file instead of stdout")
	addFlag("status.no-cache", statusCmd, "no-cache", "", false, "Don't store snapshots in the cache")
	rootCmd.AddCommand(statusCmd)
}

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/OpenCHAMI/hs300/internal/format"
	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var energyFormat = format.FORMAT_LIST

// The `energy` command reads an outlet's meter. With --month it lists the
// per-day totals of that month instead of the realtime reading.
var energyCmd = &cobra.Command{
	Use: "energy <outlet>",
	Example: `  hs300 energy 1
  hs300 energy Lamp -F json
  hs300 energy 3 --month 7 --year 2024`,
	Short: "Read an outlet's energy meter",
	Long:  "Prints voltage, current, power and cumulative energy of one outlet.\nValues are shown in the units the firmware reports them in.\nThe outlet is a number or an alias; prefix a numeric alias with 'alias:'.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := parseTargets(args)[0]
		f := format.DataFormat(viper.GetString("energy.format"))

		strip, err := connect(cmd.Context(), "")
		if err != nil {
			return err
		}

		if month := viper.GetInt("energy.month"); month != 0 {
			year := viper.GetInt("energy.year")
			if year == 0 {
				year = time.Now().Year()
			}
			days, err := strip.DailyEnergy(cmd.Context(), target, month, year)
			if err != nil {
				return fmt.Errorf("failed to get daily energy of %s: %w", target, err)
			}
			return printDays(cmd.OutOrStdout(), days, f)
		}

		reading, err := strip.RealtimeEnergy(cmd.Context(), target)
		if err != nil {
			return fmt.Errorf("failed to get energy of %s: %w", target, err)
		}
		return printReading(cmd.OutOrStdout(), reading, f)
	},
}

type meterField struct {
	name  string
	value *float64
	unit  string
}

func printReading(w io.Writer, e *kasa.RealtimeEnergy, f format.DataFormat) error {
	if f != format.FORMAT_LIST {
		return printMarshaled(w, e, f)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, m := range []meterField{
		{"voltage", e.Voltage, "V"},
		{"current", e.Current, "A"},
		{"power", e.Power, "W"},
		{"total", e.Total, "kWh"},
		{"voltage", e.VoltageMV, "mV"},
		{"current", e.CurrentMA, "mA"},
		{"power", e.PowerMW, "mW"},
		{"total", e.TotalWH, "Wh"},
	} {
		if m.value != nil {
			fmt.Fprintf(tw, "%s:\t%g\t%s\n", m.name, *m.value, m.unit)
		}
	}
	return tw.Flush()
}

func printDays(w io.Writer, days []kasa.DayStat, f format.DataFormat) error {
	if f != format.FORMAT_LIST {
		return printMarshaled(w, days, f)
	}
	for _, d := range days {
		date := fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
		switch {
		case d.Energy != nil:
			fmt.Fprintf(w, "%s  %g kWh\n", date, *d.Energy)
		case d.EnergyWH != nil:
			fmt.Fprintf(w, "%s  %g Wh\n", date, *d.EnergyWH)
		default:
			fmt.Fprintf(w, "%s  -\n", date)
		}
	}
	return nil
}

func printMarshaled(w io.Writer, v any, f format.DataFormat) error {
	b, err := format.Marshal(v, f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func init() {
	addFlag("energy.format", energyCmd, "format", "F", &energyFormat, "Set the output format (list|json|yaml)")
	addFlag("energy.month", energyCmd, "month", "m", 0, "List daily totals for this month (1-12)")
	addFlag("energy.year", energyCmd, "year", "y", 0, "Year for --month (defaults to the current year)")
	rootCmd.AddCommand(energyCmd)
}

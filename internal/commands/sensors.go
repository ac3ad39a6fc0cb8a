package commands

import (
	"fmt"

	"temp_monitor/internal/sensor"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var readSensors bool

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List probes visible to the configured driver",
	RunE:  runSensors,
}

func init() {
	rootCmd.AddCommand(sensorsCmd)
	sensorsCmd.Flags().BoolVar(&readSensors, "read", false,
		"Read each probe once and print its value")
}

func runSensors(cmd *cobra.Command, args []string) error {
	bus, err := openBus()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ids, err := bus.ListAvailable(ctx)
	if err != nil {
		return fmt.Errorf("list sensors: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintf(out, "no sensors found (driver %s)\n", viper.GetString("sensors.driver"))
		return nil
	}

	timeout := viper.GetDuration("sensors.read_timeout")
	widths := []int{20}
	for _, id := range ids {
		if !readSensors {
			fmt.Fprintln(out, id)
			continue
		}
		v, err := sensor.ReadWithTimeout(ctx, bus, id, timeout)
		if err != nil {
			fmt.Fprintln(out, row(widths, id, "error: "+err.Error()))
			continue
		}
		fmt.Fprintln(out, row(widths, id, fmt.Sprintf("%.2f °C", v)))
	}
	return nil
}

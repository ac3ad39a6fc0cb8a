package commands

import (
	"fmt"
	"strconv"

	"temp_monitor/internal/config"
	"temp_monitor/internal/models"
	"temp_monitor/internal/service"

	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild the chart from the log and print a summary",
	Long: `Replays the temperature log with the current settings (units, frequency
unit, sensor roles) and prints the point count and range of every role
followed by the axis bounds a renderer would use.`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	log := newLogger()
	tl := newTempLog()
	settings := openSettings(log, tl.Ensure)

	engine := service.NewEngine(tl, log)
	if err := engine.Rebuild(cmd.Context(), settings.Roles(), settings.Units(), settings.FrequencyUnit()); err != nil {
		return fmt.Errorf("replay %s: %w", config.LogPath(currentDataDir()), err)
	}
	printSnapshot(cmd, engine.Snapshot())
	return nil
}

func printSnapshot(cmd *cobra.Command, snap models.ChartSnapshot) {
	out := cmd.OutOrStdout()
	widths := []int{8, 16, 7}

	fmt.Fprintln(out, row(widths, "ROLE", "SENSOR", "POINTS", "RANGE (°"+string(snap.Units)+")"))
	for _, r := range models.Roles {
		id := snap.Roles[r]
		if id == "" {
			id = "-"
		}
		fmt.Fprintln(out, row(widths,
			string(r),
			id,
			strconv.Itoa(len(snap.Series[r])),
			snap.RangeText[r],
		))
	}

	b := snap.Bounds
	fmt.Fprintf(out, "x: %g..%g step %g  %s\n", b.XMin, b.XMax, b.XTick, snap.XLabel)
	fmt.Fprintf(out, "y: %g..%g step %.2f\n", b.YMin, b.YMax, b.YTick)
}

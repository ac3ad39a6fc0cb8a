package commands

import (
	"fmt"

	"temp_monitor/internal/config"
	"temp_monitor/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Config file; empty looks for configs/config.yml
	configPath string

	// Overrides for the matching config keys
	dataDir string
	port    string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "temp_monitor [flags]",
		Short: "Two-probe temperature monitor",
		Long: `temp_monitor samples temperature probes on a fixed cadence, appends every
reading to a CSV log and serves a live chart of the product and ambient lines.

Examples:
  temp_monitor                          # Serve with configs/config.yml
  temp_monitor --data-dir /var/lib/tm   # Keep log and settings elsewhere
  temp_monitor replay                   # Summarize the log with current settings
  temp_monitor sensors                  # List probes the driver can see
  temp_monitor operator add alice       # Create an operator for the control API`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default configs/config.yml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Directory holding the temperature log and settings")
	rootCmd.PersistentFlags().StringVar(&port, "port", "",
		"HTTP port")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.Load(configPath); err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}
	if debug {
		viper.Set("log.level", logger.DebugLevel)
	}
	return nil
}

// Execute runs the command selected by os.Args.
func Execute() error {
	return rootCmd.Execute()
}

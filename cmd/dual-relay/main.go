// Command dual-relay drives two relays and reads two buttons on a Raspberry
// Pi, exposing them as a Homie device over MQTT.
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/dual-relay/internal/config"
)

var (
	configPath string
	logLevel   string

	installPrefix string
	installReset  bool

	bootcountReset bool

	mainCmd = &cobra.Command{
		Use:           "dual-relay",
		Short:         "Dual relay and button controller",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the controller",
		Args:  cobra.NoArgs,
		RunE:  runDaemon,
	}
	stateCmd = &cobra.Command{
		Use:   "state",
		Short: "Print the current button levels and boot count, then exit",
		Args:  cobra.NoArgs,
		RunE:  runState,
	}
	bootcountCmd = &cobra.Command{
		Use:   "bootcount",
		Short: "Print or reset the persisted boot count",
		Args:  cobra.NoArgs,
		RunE:  runBootcount,
	}
	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Install the binary, systemd unit and default config",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}
)

// loadConfig reads the config file and applies the log level.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	logrus.SetLevel(cfg.Level())
	return cfg, nil
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	mainCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config path. The path to the configuration file")
	mainCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides LogLevel in the config file")
	installCmd.Flags().BoolVar(&installReset, "reset", false, "Reset config. Resets configuration to default, even if a config file already exists")
	installCmd.Flags().StringVarP(&installPrefix, "prefix", "p", "", "Install prefix. Prefix to install directory, default is /")
	bootcountCmd.Flags().BoolVar(&bootcountReset, "reset", false, "Zero the persisted boot count")
	mainCmd.AddCommand(runCmd, stateCmd, bootcountCmd, installCmd)

	if err := mainCmd.Execute(); err != nil {
		logrus.Fatalf("fatal: %v", err)
	}
}

// Package cli provides the command-line interface for netsentinel.
// It implements the Cobra-based command tree for running the service,
// one-shot scans, history inspection and database maintenance.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/logging"
)

const envPrefix = "NETSENTINEL"

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "netsentinel",
	Short: "Home network sentinel",
	Long: `Netsentinel periodically sweeps a local network, fingerprints the
devices it finds, scores their exposure and raises alerts when something
new or riskier shows up.`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	bindFlag(rootCmd.PersistentFlags().Lookup("verbose"), "verbose")
	bindFlag(rootCmd.PersistentFlags().Lookup("log-level"), "logging.level")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/netsentinel")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// getConfigFilePath returns the config file viper settled on, or the
// default name when none was found.
func getConfigFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return "config.yaml"
}

// overridableKeys lists the settings that flags and NETSENTINEL_* variables
// may replace after the file is loaded.
var overridableKeys = map[string]func(*config.Config, *viper.Viper){
	"api.host": func(c *config.Config, v *viper.Viper) {
		c.API.Host = v.GetString("api.host")
	},
	"api.port": func(c *config.Config, v *viper.Viper) {
		c.API.Port = v.GetInt("api.port")
	},
	"database.driver": func(c *config.Config, v *viper.Viper) {
		c.Database.Driver = v.GetString("database.driver")
	},
	"database.host": func(c *config.Config, v *viper.Viper) {
		c.Database.Host = v.GetString("database.host")
	},
	"database.port": func(c *config.Config, v *viper.Viper) {
		c.Database.Port = v.GetInt("database.port")
	},
	"database.database": func(c *config.Config, v *viper.Viper) {
		c.Database.Database = v.GetString("database.database")
	},
	"database.username": func(c *config.Config, v *viper.Viper) {
		c.Database.Username = v.GetString("database.username")
	},
	"database.password": func(c *config.Config, v *viper.Viper) {
		c.Database.Password = v.GetString("database.password")
	},
	"scanning.network": func(c *config.Config, v *viper.Viper) {
		c.Scanning.Network = v.GetString("scanning.network")
	},
	"scanning.interface": func(c *config.Config, v *viper.Viper) {
		c.Scanning.Interface = v.GetString("scanning.interface")
	},
	"notify.discord.webhook_url": func(c *config.Config, v *viper.Viper) {
		c.Notify.Discord.WebhookURL = v.GetString("notify.discord.webhook_url")
	},
	"logging.level": func(c *config.Config, v *viper.Viper) {
		c.Logging.Level = v.GetString("logging.level")
	},
	"logging.format": func(c *config.Config, v *viper.Viper) {
		c.Logging.Format = v.GetString("logging.format")
	},
	"daemon.scan_on_startup": func(c *config.Config, v *viper.Viper) {
		c.Daemon.ScanOnStartup = v.GetBool("daemon.scan_on_startup")
	},
}

// loadConfig loads the config file and applies environment and flag
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, viper.GetViper())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, v *viper.Viper) {
	for key, apply := range overridableKeys {
		if v.IsSet(key) && v.GetString(key) != "" {
			apply(cfg, v)
		}
	}
}

// initLogging builds the process logger from cfg and installs it as the
// default.
func initLogging(cfg *config.Config) *logging.Logger {
	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
		logger = logging.NewDefault()
	}
	logging.SetDefault(logger)

	if verbose {
		logger.Info("Structured logging initialized", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	}
	return logger
}

// setup is the common preamble of commands that need configuration.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, initLogging(cfg), nil
}

func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag.Name, err)
	}
}

func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

package protocol

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/dskit/constants"
	esdriver "github.com/datazip-inc/dskit/drivers/elasticsearch"
	mongodriver "github.com/datazip-inc/dskit/drivers/mongodb"
	mysqldriver "github.com/datazip-inc/dskit/drivers/mysql"
	"github.com/datazip-inc/dskit/utils/logger"
)

var (
	configPath   string
	logFile      string
	logAppend    bool
	noConsole    bool
	logLevel     string

	config   *Config
	commands = []*cobra.Command{}
)

// Config mirrors the sections of the config file
type Config struct {
	Elasticsearch *esdriver.Config    `json:"elasticsearch" mapstructure:"elasticsearch" yaml:"elasticsearch"`
	MySQL         *mysqldriver.Config `json:"mysql" mapstructure:"mysql" yaml:"mysql"`
	MongoDB       *mongodriver.Config `json:"mongodb" mapstructure:"mongodb" yaml:"mongodb"`
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dskit",
	Short: "data store toolkit",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded

		return logger.Init(logger.Config{
			Console:   viper.GetBool(constants.LogConsole) && !noConsole,
			File:      viper.GetString(constants.LogFile),
			Append:    viper.GetBool(constants.LogAppend),
			Level:     viper.GetString(constants.LogLevel),
			// stdout carries command output
			Writer: os.Stderr,
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("'%s' is an invalid command. Use 'dskit --help' to display usage guide", args[0])
	},
}

// LoadConfig reads the YAML or JSON config file at path. An empty path
// yields an empty config.
func LoadConfig(path string) (*Config, error) {
	loaded := &Config{}
	if path == "" {
		return loaded, nil
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if err := reader.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %s", path, err)
	}
	if err := reader.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %s", path, err)
	}
	return loaded, nil
}

// requireSection fails when a command needs a config section that is absent
func requireSection[T any](section *T, name string) (*T, error) {
	if section == nil {
		return nil, fmt.Errorf("missing '%s' section in config; pass one with --config", name)
	}
	return section, nil
}

// Execute registers every subcommand and runs the CLI
func Execute(ctx context.Context) error {
	RootCmd.AddCommand(commands...)
	return RootCmd.ExecuteContext(ctx)
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file with elasticsearch, mysql and mongodb sections")
	RootCmd.PersistentFlags().StringVarP(&logFile, "log-file", "", "", "(Optional) Also write logs to this file")
	RootCmd.PersistentFlags().BoolVarP(&logAppend, "log-append", "", false, "(Optional) Append to the log file instead of truncating it")
	RootCmd.PersistentFlags().BoolVarP(&noConsole, "no-console", "", false, "(Optional) Disable console logging")
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "(Optional) Minimum log level: debug, info, warn, error")

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetDefault(constants.LogConsole, true)

	flags := RootCmd.PersistentFlags()
	_ = viper.BindPFlag(constants.LogFile, flags.Lookup("log-file"))
	_ = viper.BindPFlag(constants.LogAppend, flags.Lookup("log-append"))
	_ = viper.BindPFlag(constants.LogLevel, flags.Lookup("log-level"))

	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}

package cmd

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/grovevc/grove/pkg/config"
	"github.com/grovevc/grove/pkg/logging"
)

var (
	cfgFile string
	cfg     *config.Config

	// logLevel logging level (default is off)
	logLevel string
	// logFormat logging format
	logFormat string
	// logOutputs logging outputs
	logOutputs []string

	noColorRequested = false
)

// rootCmd represents the base command when called without any sub-commands
var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "A cli tool to query and inspect grove repositories",
	Long:  `grove reads a repository snapshot and answers revset queries over its commit graph, rendering logs, diffs and file content`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorRequested {
			DisableColors()
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			DieFmt("load configuration: %s", err)
		}
		// explicit flags win over the logging section of the config file
		cfg.SetupLogging()
		logging.SetLevel(logLevel)
		logging.SetOutputFormat(logFormat)
		logging.SetOutputs(logOutputs, 0, 0)
		logging.Default().
			WithField(logging.InvocationIDFieldKey, uuid.NewString()).
			WithField(logging.CommandFieldKey, cmd.Name()).
			Debug("starting invocation")
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		Die(err.Error(), CodeUsage)
	}
}

//nolint:gochecknoinits
func init() {
	// accept underscore spellings for multi-word flags
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.grove.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColorRequested, "no-color", false, "don't use fancy output colors (default when not attached to an interactive terminal)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "set logging level")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "", "", "set logging output format")
	rootCmd.PersistentFlags().StringSliceVarP(&logOutputs, "log-output", "", []string{}, "set logging output(s)")
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "FDSCAN"

var cfgFile string
var logger *zap.SugaredLogger
var runID string

var rootCmd = &cobra.Command{
	Use:   "fdscan",
	Short: "Classify hostnames for Azure Front Door subdomain-takeover risk",
	Long: `fdscan resolves the CNAME of each hostname and, when it points at an
Azure Front Door endpoint, probes the endpoint to decide whether the
hostname is dangling, misconfigured or safe.

Only DNS lookups and single HTTP GET requests are issued. Nothing is
claimed, registered or modified.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".fdscan")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}

		applyConfigDefaults(cmd.Flags())

		// init logger
		l, err := newLogger(cliConfig.Scan.Verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		runID = uuid.NewString()
		logger = l.With(zap.String("run_id", runID)).Sugar()

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debugf("config=%s", used)
		}
		return nil
	},
	RunE: runScan,
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	// config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fdscan.yaml)")
	rootCmd.PersistentFlags().BoolVar(&cliConfig.Scan.Verbose, "verbose", false, "Enable debug logging on stderr")

	registerScanFlags(rootCmd.Flags())

	// add subcommands
	rootCmd.AddCommand(versionCmd)
}

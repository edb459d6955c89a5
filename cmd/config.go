package cmd

import (
	"strings"
	"time"

	"github.com/khanhnv2901/fdscan/internal/checker"
	consts "github.com/khanhnv2901/fdscan/internal/shared/constants"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultTimeoutSeconds = int(consts.DefaultProbeTimeout / time.Second)
	defaultConcurrency    = consts.DefaultConcurrency
)

// CLIConfig captures runtime configuration for a scan.
type CLIConfig struct {
	Scan     ScanConfig
	Provider ProviderConfig
}

// ScanConfig consolidates flag-driven settings for the scan command.
type ScanConfig struct {
	URL         string
	ListFile    string
	VulnOnly    bool
	JSON        bool
	Format      string
	Stream      bool
	Progress    bool
	Concurrency int
	TimeoutSecs int
	RateLimit   int
	Nameservers []string
	// Insecure skips TLS verification on probes; endpoints under review
	// frequently serve certificates for another name.
	Insecure   bool
	OutputFile string
	Verbose    bool
}

// ProviderConfig overrides the edge provider profile.
type ProviderConfig struct {
	Suffix string
}

type defaultOverrides struct {
	Concurrency    *int
	TimeoutSecs    *int
	RateLimit      *int
	Nameservers    []string
	Insecure       *bool
	ProviderSuffix string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanConfig{
			Format:      "table",
			Concurrency: defaultConcurrency,
			TimeoutSecs: defaultTimeoutSeconds,
			RateLimit:   0,
			Nameservers: []string{},
			Insecure:    true,
		},
		Provider: ProviderConfig{
			Suffix: checker.AzureFrontDoor.Suffix,
		},
	}
}

func registerScanFlags(flags *pflag.FlagSet) {
	cfg := &cliConfig.Scan
	flags.StringVarP(&cfg.URL, "url", "u", "", "Single hostname to check")
	flags.StringVarP(&cfg.ListFile, "list", "l", "", "File with one hostname per line")
	flags.BoolVar(&cfg.VulnOnly, "vuln-only", false, "Only report vulnerable hostnames")
	flags.BoolVar(&cfg.JSON, "json", false, "Shorthand for --format json")
	flags.StringVar(&cfg.Format, "format", cfg.Format, "Output format: table, json or yaml")
	flags.BoolVar(&cfg.Stream, "stream", false, "Emit verdicts as they complete instead of in input order")
	flags.BoolVar(&cfg.Progress, "progress", false, "Display a progress bar on stderr")
	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "Maximum concurrent classifications")
	flags.IntVarP(&cfg.TimeoutSecs, "timeout", "t", cfg.TimeoutSecs, "Per-request DNS/HTTP timeout in seconds")
	flags.IntVarP(&cfg.RateLimit, "rate", "r", cfg.RateLimit, "Classifications started per second (0 = unlimited)")
	flags.StringSliceVar(&cfg.Nameservers, "nameservers", cfg.Nameservers, "DNS servers (ip or ip:port); default is /etc/resolv.conf")
	flags.BoolVar(&cfg.Insecure, "insecure", cfg.Insecure, "Skip TLS certificate verification on HTTP probes")
	flags.StringVarP(&cfg.OutputFile, "output", "o", "", "Write the report to a file instead of stdout")
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("defaults.concurrency") {
		val := viper.GetInt("defaults.concurrency")
		overrides.Concurrency = &val
	}

	if viper.IsSet("defaults.timeout_secs") {
		val := viper.GetInt("defaults.timeout_secs")
		overrides.TimeoutSecs = &val
	}

	if viper.IsSet("defaults.rate") {
		val := viper.GetInt("defaults.rate")
		overrides.RateLimit = &val
	}

	if viper.IsSet("defaults.nameservers") {
		overrides.Nameservers = splitList(viper.GetStringSlice("defaults.nameservers"))
	}

	if viper.IsSet("defaults.insecure") {
		val := viper.GetBool("defaults.insecure")
		overrides.Insecure = &val
	}

	if viper.IsSet("provider.suffix") {
		overrides.ProviderSuffix = strings.TrimSpace(viper.GetString("provider.suffix"))
	}

	return overrides
}

// applyConfigDefaults merges config file and environment defaults into the
// runtime config when the user did not explicitly set the corresponding flag.
func applyConfigDefaults(flags *pflag.FlagSet) {
	overrides := loadDefaultOverrides()

	if overrides.Concurrency != nil {
		applyIntDefault(flags, "concurrency", *overrides.Concurrency, func(v int) {
			cliConfig.Scan.Concurrency = v
		})
	}

	if overrides.TimeoutSecs != nil {
		applyIntDefault(flags, "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.Scan.TimeoutSecs = v
		})
	}

	if overrides.RateLimit != nil {
		applyIntDefault(flags, "rate", *overrides.RateLimit, func(v int) {
			cliConfig.Scan.RateLimit = v
		})
	}

	if len(overrides.Nameservers) > 0 {
		applyStringSliceDefault(flags, "nameservers", overrides.Nameservers, func(v []string) {
			cliConfig.Scan.Nameservers = v
		})
	}

	if overrides.Insecure != nil {
		applyBoolDefault(flags, "insecure", *overrides.Insecure, func(v bool) {
			cliConfig.Scan.Insecure = v
		})
	}

	if overrides.ProviderSuffix != "" {
		cliConfig.Provider.Suffix = overrides.ProviderSuffix
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringSliceDefault(flags *pflag.FlagSet, name string, value []string, setter func([]string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

// splitList flattens comma separated entries, as env vars arrive as one string.
func splitList(values []string) []string {
	parts := lo.FlatMap(values, func(v string, _ int) []string {
		return strings.Split(v, ",")
	})
	return lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}

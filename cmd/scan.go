package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/khanhnv2901/fdscan/internal/checker"
	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	"github.com/khanhnv2901/fdscan/internal/report"
	consts "github.com/khanhnv2901/fdscan/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/fdscan/internal/shared/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg := cliConfig.Scan

	if err := validateScanConfig(cfg); err != nil {
		return err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	targets, err := loadTargets(cfg.URL, cfg.ListFile)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "\n%s Received %s, finalizing partial results...\n", colorWarn("!"), sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	out, closeOut, err := openOutput(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	zl := scanLogger()
	chk := newTakeoverChecker(cfg, cliConfig.Provider, zl)
	renderer := &report.Renderer{
		Out:    out,
		Format: format,
		Color:  cfg.OutputFile == "" && !color.NoColor,
	}

	runner := &checker.Runner{
		Concurrency: cfg.Concurrency,
		RateLimit:   cfg.RateLimit,
		Logger:      zl,
	}

	var streamErr error
	var progress *progressTracker
	switch {
	case cfg.Stream:
		runner.OnResult = func(target string, v verdict.Verdict, duration float64) {
			if cfg.VulnOnly && !v.IsVulnerable() {
				return
			}
			if err := renderer.WriteStream(v); err != nil && streamErr == nil {
				streamErr = err
			}
		}
	case cfg.Progress:
		progress = newProgressTracker(os.Stderr, len(targets), chk.Name())
		runner.OnResult = func(target string, v verdict.Verdict, duration float64) {
			progress.Increment(v, duration)
		}
	}

	zl.Info("scan started",
		zap.Int("targets", len(targets)),
		zap.Int("concurrency", cfg.Concurrency),
		zap.String("provider_suffix", cliConfig.Provider.Suffix),
	)
	startAll := time.Now()
	verdicts := runner.Run(ctx, targets, chk)

	if progress != nil {
		progress.Stop()
	}

	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "%s Run cancelled. Reporting %d of %d target(s).\n", colorWarn("!"), len(verdicts), len(targets))
	}

	summary := report.Summarize(verdicts)
	if cfg.VulnOnly {
		verdicts = checker.FilterVulnerable(verdicts)
	}

	if cfg.Stream {
		if streamErr != nil {
			return fmt.Errorf("failed to write report: %w", streamErr)
		}
		if err := renderer.Close(); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else if err := renderer.Render(verdicts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if format == report.FormatTable {
		if err := report.WriteSummary(out, summary); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	zl.Info("scan complete",
		zap.Int("classified", summary.Total),
		zap.Int("vulnerable", summary.Vulnerable),
		zap.Int("needs_review", summary.NeedsReview),
		zap.Bool("interrupted", ctx.Err() != nil),
		zap.Duration("elapsed", time.Since(startAll)),
	)

	if cfg.OutputFile != "" {
		fmt.Fprintf(os.Stderr, "%s %s\n", colorSuccess("Report written to"), cfg.OutputFile)
	}
	return nil
}

func validateScanConfig(cfg ScanConfig) error {
	if cfg.Concurrency < 1 {
		return fmt.Errorf("%w (got %d)", sharederrors.ErrInvalidConcurrency, cfg.Concurrency)
	}
	if cfg.TimeoutSecs < 1 {
		return fmt.Errorf("%w (got %d)", sharederrors.ErrInvalidTimeout, cfg.TimeoutSecs)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%w (got %d)", sharederrors.ErrInvalidRate, cfg.RateLimit)
	}
	return nil
}

func resolveFormat(cfg ScanConfig) (report.Format, error) {
	if cfg.JSON {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(cfg.Format)
}

func newTakeoverChecker(cfg ScanConfig, provider ProviderConfig, zl *zap.Logger) *checker.TakeoverChecker {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	return &checker.TakeoverChecker{
		Resolver: &checker.DNSResolver{
			Timeout:     timeout,
			Nameservers: cfg.Nameservers,
			Logger:      zl,
		},
		Prober: &checker.HTTPProber{
			Timeout:       timeout,
			SkipTLSVerify: cfg.Insecure,
			Logger:        zl,
		},
		Provider: checker.AzureFrontDoor.WithSuffix(provider.Suffix),
		Logger:   zl,
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	// #nosec G304 -- path is supplied by the operator
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func scanLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Desugar()
}

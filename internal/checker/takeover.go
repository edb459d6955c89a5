package checker

import (
	"context"
	"strings"

	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	"go.uber.org/zap"
)

const (
	noteNoCname            = "No CNAME found"
	noteNotFrontDoor       = "Not AzureFD endpoint"
	noteSuffixBypass       = "Suffix present, custom domain verification missing; bypass possible"
	noteSuffixVerified     = "Suffix present, verification enabled"
	noteSuffixInconclusive = "Suffix present, verification check inconclusive (HTTP probe unreachable)"
	noteDangling           = "No suffix, default AzureFD error page; dangling endpoint"
	noteEndpointActive     = "No suffix, endpoint active"
	noteTargetUnreachable  = "No suffix, target unreachable; manual review recommended"
)

// TakeoverChecker classifies a hostname's takeover risk through an edge provider.
type TakeoverChecker struct {
	Resolver Resolver
	Prober   Prober
	Provider Provider // zero value means AzureFrontDoor
	Logger   *zap.Logger
}

// Name returns the name of this checker
func (c *TakeoverChecker) Name() string {
	return "check takeover"
}

// Classify walks the decision tree for one hostname. Network failures are
// absorbed into the verdict; exactly one verdict is always returned.
func (c *TakeoverChecker) Classify(ctx context.Context, target string) verdict.Verdict {
	domain := strings.TrimSpace(target)
	host := ExtractHost(domain)
	provider := c.provider()

	cname, ok := c.Resolver.ResolveCNAME(ctx, host).Target()
	if !ok {
		return c.emit(verdict.New(domain, "", verdict.NoCname, noteNoCname))
	}

	if !provider.IsFrontDoorTarget(cname) {
		return c.emit(verdict.New(domain, cname, verdict.NotFrontDoorEndpoint, noteNotFrontDoor))
	}

	if SuffixShape(cname) {
		// Verification headers are read from the custom domain itself.
		outcome := c.Prober.Probe(ctx, "http://"+host)
		if !outcome.Responded() {
			return c.emit(verdict.New(domain, cname, verdict.SuffixVerified, noteSuffixInconclusive, verdict.Inconclusive()))
		}
		status := verdict.WithHTTPStatus(outcome.StatusCode())
		if provider.VerificationAbsent(outcome.Headers()) {
			return c.emit(verdict.New(domain, cname, verdict.SuffixBypassVulnerable, noteSuffixBypass, status))
		}
		return c.emit(verdict.New(domain, cname, verdict.SuffixVerified, noteSuffixVerified, status))
	}

	outcome := c.Prober.Probe(ctx, "https://"+cname)
	status := verdict.WithHTTPStatus(outcome.StatusCode())
	switch provider.FingerprintOutcome(outcome) {
	case FingerprintDefaultErrorPage:
		return c.emit(verdict.New(domain, cname, verdict.DanglingVulnerable, noteDangling, status))
	case FingerprintActive:
		return c.emit(verdict.New(domain, cname, verdict.EndpointActive, noteEndpointActive, status))
	case FingerprintUnreachable:
	}
	return c.emit(verdict.New(domain, cname, verdict.TargetUnreachable, noteTargetUnreachable))
}

func (c *TakeoverChecker) emit(v verdict.Verdict) verdict.Verdict {
	if c.Logger != nil {
		c.Logger.Debug("classified",
			zap.String("domain", v.Domain()),
			zap.String("cname", v.CNAME()),
			zap.String("classification", v.Classification().String()),
			zap.String("status", v.Status().String()),
		)
	}
	return v
}

func (c *TakeoverChecker) provider() Provider {
	if c.Provider.Suffix == "" {
		return AzureFrontDoor
	}
	return c.Provider
}

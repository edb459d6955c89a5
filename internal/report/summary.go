package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/khanhnv2901/fdscan/internal/checker"
	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	"github.com/samber/lo"
	"golang.org/x/net/publicsuffix"
)

// Summary aggregates a verdict set for the closing line of a table report.
type Summary struct {
	Total            int
	Vulnerable       int
	NeedsReview      int
	AffectedZones    []string
	ByClassification map[verdict.Classification]int
}

// Summarize counts verdicts by outcome and collects the registrable domains
// (eTLD+1) of vulnerable hostnames.
func Summarize(verdicts []verdict.Verdict) Summary {
	vulnerable := lo.Filter(verdicts, func(v verdict.Verdict, _ int) bool {
		return v.IsVulnerable()
	})

	zones := lo.Uniq(lo.FilterMap(vulnerable, func(v verdict.Verdict, _ int) (string, bool) {
		zone := registrableDomain(v.Domain())
		return zone, zone != ""
	}))

	return Summary{
		Total:         len(verdicts),
		Vulnerable:    len(vulnerable),
		NeedsReview:   lo.CountBy(verdicts, func(v verdict.Verdict) bool { return v.NeedsReview() }),
		AffectedZones: zones,
		ByClassification: lo.CountValuesBy(verdicts, func(v verdict.Verdict) verdict.Classification {
			return v.Classification()
		}),
	}
}

func registrableDomain(target string) string {
	host := strings.ToLower(checker.ExtractHost(target))
	if host == "" {
		return ""
	}
	zone, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return zone
}

// WriteSummary prints the summary used after table reports: one totals line,
// then a count per classification that occurred, in decision-tree order.
func WriteSummary(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "\nSummary: %d target(s), %d vulnerable across %d zone(s), %d need manual review\n",
		s.Total, s.Vulnerable, len(s.AffectedZones), s.NeedsReview); err != nil {
		return err
	}
	for _, c := range verdict.Classifications {
		n := s.ByClassification[c]
		if n == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %-26s %d\n", c.Label()+":", n); err != nil {
			return err
		}
	}
	return nil
}

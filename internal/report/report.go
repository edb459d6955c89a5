// Package report renders takeover verdicts as tables, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	sharederrors "github.com/khanhnv2901/fdscan/internal/shared/errors"
	"gopkg.in/yaml.v3"
)

// Format selects the report encoding
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

const (
	jsonPrefix = ""
	jsonIndent = "  "
	tableRule  = 130
)

var (
	colorVulnerable = color.New(color.FgRed, color.Bold).SprintFunc()
	colorSafe       = color.New(color.FgGreen).SprintFunc()
	colorReview     = color.New(color.FgYellow).SprintFunc()
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("%w: %q (use table, json or yaml)", sharederrors.ErrUnknownFormat, s)
}

// Renderer writes verdicts to Out. A Renderer is not safe for concurrent use.
type Renderer struct {
	Out    io.Writer
	Format Format
	// Color enables ANSI status colors in table output.
	Color bool

	headerWritten bool
	yamlEnc       *yaml.Encoder
}

// Render writes the complete verdict set in one go.
func (r *Renderer) Render(verdicts []verdict.Verdict) error {
	records := make([]verdict.Record, 0, len(verdicts))
	for _, v := range verdicts {
		records = append(records, v.Record())
	}

	switch r.Format {
	case FormatJSON:
		b, err := json.MarshalIndent(records, jsonPrefix, jsonIndent)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = fmt.Fprintln(r.Out, string(b))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(r.Out)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatTable, "":
		if err := r.writeHeader(); err != nil {
			return err
		}
		for _, v := range verdicts {
			if err := r.writeRow(v); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %q", sharederrors.ErrUnknownFormat, r.Format)
}

// WriteStream emits a single verdict as soon as it is available: a table row
// (header on first call), one compact JSON object per line, or one YAML document.
func (r *Renderer) WriteStream(v verdict.Verdict) error {
	switch r.Format {
	case FormatJSON:
		b, err := json.Marshal(v.Record())
		if err != nil {
			return fmt.Errorf("marshal verdict: %w", err)
		}
		_, err = fmt.Fprintln(r.Out, string(b))
		return err
	case FormatYAML:
		if r.yamlEnc == nil {
			r.yamlEnc = yaml.NewEncoder(r.Out)
			r.yamlEnc.SetIndent(2)
		}
		if err := r.yamlEnc.Encode(v.Record()); err != nil {
			return fmt.Errorf("encode verdict: %w", err)
		}
		return nil
	case FormatTable, "":
		if err := r.writeHeader(); err != nil {
			return err
		}
		return r.writeRow(v)
	}
	return fmt.Errorf("%w: %q", sharederrors.ErrUnknownFormat, r.Format)
}

// Close flushes any buffered stream state.
func (r *Renderer) Close() error {
	if r.yamlEnc != nil {
		return r.yamlEnc.Close()
	}
	return nil
}

func (r *Renderer) writeHeader() error {
	if r.headerWritten {
		return nil
	}
	r.headerWritten = true
	if _, err := fmt.Fprintf(r.Out, "%-40s %-60s %-12s %s\n", "Domain", "CNAME", "Status", "Notes"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.Out, strings.Repeat("-", tableRule))
	return err
}

func (r *Renderer) writeRow(v verdict.Verdict) error {
	status := fmt.Sprintf("%-12s", v.Status())
	if r.Color {
		status = r.colorize(v, status)
	}
	_, err := fmt.Fprintf(r.Out, "%-40s %-60s %s %s\n", v.Domain(), v.CNAME(), status, v.Notes())
	return err
}

func (r *Renderer) colorize(v verdict.Verdict, padded string) string {
	switch {
	case v.IsVulnerable():
		return colorVulnerable(padded)
	case v.NeedsReview():
		return colorReview(padded)
	default:
		return colorSafe(padded)
	}
}

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	sharederrors "github.com/khanhnv2901/fdscan/internal/shared/errors"
	"gopkg.in/yaml.v3"
)

func sampleVerdicts() []verdict.Verdict {
	return []verdict.Verdict{
		verdict.New("victim.example.com", "a1b2c3d4e5f6.azurefd.net", verdict.SuffixBypassVulnerable, "Suffix present, custom domain verification missing; bypass possible", verdict.WithHTTPStatus(200)),
		verdict.New("www.example.com", "", verdict.NoCname, "No CNAME found"),
		verdict.New("old.example.com", "legacyname.azurefd.net", verdict.TargetUnreachable, "No suffix, target unreachable; manual review recommended"),
	}
}

func TestParseFormat(t *testing.T) {
	testCases := map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		" yaml": FormatYAML,
	}
	for input, expected := range testCases {
		got, err := ParseFormat(input)
		if err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", input, err)
			continue
		}
		if got != expected {
			t.Errorf("ParseFormat(%q) = %s, expected %s", input, got, expected)
		}
	}

	if _, err := ParseFormat("csv"); !errors.Is(err, sharederrors.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatTable}
	if err := r.Render(sampleVerdicts()); err != nil {
		t.Fatalf("render: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, rule and 3 rows, got %d lines:\n%s", len(lines), buf.String())
	}

	header := lines[0]
	for _, col := range []string{"Domain", "CNAME", "Status", "Notes"} {
		if !strings.Contains(header, col) {
			t.Errorf("header missing column %s: %q", col, header)
		}
	}
	if strings.Index(header, "CNAME") != 41 || strings.Index(header, "Status") != 102 || strings.Index(header, "Notes") != 115 {
		t.Errorf("unexpected column layout: %q", header)
	}
	if lines[1] != strings.Repeat("-", 130) {
		t.Errorf("unexpected rule line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "victim.example.com") || !strings.Contains(lines[2], "vulnerable") {
		t.Errorf("unexpected first row %q", lines[2])
	}
	if strings.Index(lines[2], "vulnerable") != 102 {
		t.Errorf("status column misaligned in %q", lines[2])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected no ANSI codes when Color is false")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatJSON}
	if err := r.Render(sampleVerdicts()); err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(decoded))
	}

	first := decoded[0]
	for _, key := range []string{"domain", "cname", "status", "notes", "classification"} {
		if _, ok := first[key]; !ok {
			t.Errorf("missing key %q in %v", key, first)
		}
	}
	if first["status"] != "vulnerable" || first["classification"] != "suffix_bypass_vulnerable" {
		t.Errorf("unexpected first object %v", first)
	}
	if first["http_status"] != float64(200) {
		t.Errorf("expected http_status 200, got %v", first["http_status"])
	}

	second := decoded[1]
	if cname, ok := second["cname"]; !ok || cname != "" {
		t.Errorf("expected empty cname to be present, got %v", second)
	}
	if _, ok := second["http_status"]; ok {
		t.Errorf("expected http_status to be omitted, got %v", second)
	}
}

func TestRenderJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatJSON}
	if err := r.Render(nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatYAML}
	if err := r.Render(sampleVerdicts()); err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded []verdict.Record
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 records, got %d", len(decoded))
	}
	if decoded[2].Classification != "target_unreachable" || decoded[2].Status != "safe" {
		t.Errorf("unexpected record %+v", decoded[2])
	}
}

func TestWriteStream_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatJSON}
	for _, v := range sampleVerdicts() {
		if err := r.WriteStream(v); err != nil {
			t.Fatalf("stream: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 JSON lines, got %d", len(lines))
	}
	for _, line := range lines {
		var rec verdict.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line is not a JSON object: %q", line)
		}
	}
}

func TestWriteStream_TableHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatTable}
	for _, v := range sampleVerdicts() {
		if err := r.WriteStream(v); err != nil {
			t.Fatalf("stream: %v", err)
		}
	}
	if n := strings.Count(buf.String(), "Domain"); n != 1 {
		t.Errorf("expected header once, found %d times", n)
	}
}

func TestWriteStream_YAMLDocuments(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, Format: FormatYAML}
	for _, v := range sampleVerdicts() {
		if err := r.WriteStream(v); err != nil {
			t.Fatalf("stream: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	dec := yaml.NewDecoder(&buf)
	count := 0
	for {
		var rec verdict.Record
		if err := dec.Decode(&rec); err != nil {
			break
		}
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 YAML documents, got %d", count)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	r := &Renderer{Out: &bytes.Buffer{}, Format: Format("xml")}
	if err := r.Render(sampleVerdicts()); !errors.Is(err, sharederrors.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestHTTPProber_Responded(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("X-Azure-Ref", "0abc")
		w.Header().Add("X-Cache", "TCP_MISS")
		w.Header().Add("X-Cache", "CONFIG_NOCACHE")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<h2>Our services aren't available right now</h2>"))
	}))
	defer server.Close()

	prober := &HTTPProber{Timeout: 5 * time.Second, Logger: zaptest.NewLogger(t)}
	outcome := prober.Probe(context.Background(), server.URL)

	if !outcome.Responded() {
		t.Fatal("expected a response")
	}
	if outcome.StatusCode() != http.StatusNotFound {
		t.Errorf("Expected HTTP status 404, got %d", outcome.StatusCode())
	}
	if !strings.Contains(outcome.Body(), "services aren't available") {
		t.Errorf("unexpected body %q", outcome.Body())
	}

	headers := outcome.Headers()
	if headers["x-azure-ref"] != "0abc" {
		t.Errorf("expected lowercase header name, got %v", headers)
	}
	if headers["x-cache"] != "TCP_MISS, CONFIG_NOCACHE" {
		t.Errorf("expected joined header values, got %q", headers["x-cache"])
	}
	for name := range headers {
		if name != strings.ToLower(name) {
			t.Errorf("header %q is not lowercase", name)
		}
	}
	if !strings.HasPrefix(gotUA, "fdscan/") {
		t.Errorf("expected default user agent, got %q", gotUA)
	}
}

func TestHTTPProber_TLSVerificationToggle(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	insecure := &HTTPProber{Timeout: 5 * time.Second, SkipTLSVerify: true}
	if !insecure.Probe(context.Background(), server.URL).Responded() {
		t.Error("expected self-signed endpoint to respond when verification is skipped")
	}

	strict := &HTTPProber{Timeout: 5 * time.Second, SkipTLSVerify: false}
	if strict.Probe(context.Background(), server.URL).Responded() {
		t.Error("expected self-signed endpoint to be unreachable when verification is enforced")
	}
}

func TestHTTPProber_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	prober := &HTTPProber{Timeout: 200 * time.Millisecond}
	start := time.Now()
	outcome := prober.Probe(context.Background(), server.URL)

	if outcome.Responded() {
		t.Fatal("expected Unreachable on timeout")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("probe did not honor timeout, took %s", elapsed)
	}
}

func TestHTTPProber_RefusedIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	prober := &HTTPProber{Timeout: time.Second}
	if prober.Probe(context.Background(), url).Responded() {
		t.Error("expected Unreachable for a closed port")
	}
}

func TestHTTPProber_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("Caf\xe9 - Error 404"))
	}))
	defer server.Close()

	prober := &HTTPProber{Timeout: 5 * time.Second}
	outcome := prober.Probe(context.Background(), server.URL)

	if !strings.Contains(outcome.Body(), "Café") {
		t.Errorf("expected body decoded to UTF-8, got %q", outcome.Body())
	}
	if Fingerprint(outcome.Body()) != FingerprintDefaultErrorPage {
		t.Error("expected decoded body to fingerprint as default error page")
	}
}

func TestHTTPProber_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer server.Close()

	prober := &HTTPProber{Timeout: 5 * time.Second, MaxBodyBytes: 100}
	outcome := prober.Probe(context.Background(), server.URL)
	if len(outcome.Body()) != 100 {
		t.Errorf("expected body capped at 100 bytes, got %d", len(outcome.Body()))
	}
}

func TestResponded_LowercasesAndMerges(t *testing.T) {
	outcome := Responded(200, "", map[string]string{"X-AzureFD-Verification": "1"})
	if _, ok := outcome.Headers()["x-azurefd-verification"]; !ok {
		t.Errorf("expected lowercase key, got %v", outcome.Headers())
	}

	if Unreachable().Responded() {
		t.Error("Unreachable should not be a response")
	}
}

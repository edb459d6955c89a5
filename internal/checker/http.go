package checker

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	consts "github.com/khanhnv2901/fdscan/internal/shared/constants"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ProbeOutcome is either Unreachable or a response with status, body and
// lowercase header names.
type ProbeOutcome struct {
	responded  bool
	statusCode int
	body       string
	headers    map[string]string
}

// Unreachable represents any transport-level failure, timeouts included.
func Unreachable() ProbeOutcome {
	return ProbeOutcome{}
}

// Responded builds an outcome from a received response. Header names are lowercased.
func Responded(statusCode int, body string, headers map[string]string) ProbeOutcome {
	lowered := make(map[string]string, len(headers))
	for name, value := range headers {
		key := strings.ToLower(name)
		if prev, ok := lowered[key]; ok {
			value = prev + ", " + value
		}
		lowered[key] = value
	}
	return ProbeOutcome{
		responded:  true,
		statusCode: statusCode,
		body:       body,
		headers:    lowered,
	}
}

func (o ProbeOutcome) Responded() bool {
	return o.responded
}

func (o ProbeOutcome) StatusCode() int {
	return o.statusCode
}

func (o ProbeOutcome) Body() string {
	return o.body
}

func (o ProbeOutcome) Headers() map[string]string {
	return o.headers
}

// Prober issues a single GET against a URL.
type Prober interface {
	Probe(ctx context.Context, rawURL string) ProbeOutcome
}

// HTTPProber is the net/http backed Prober.
type HTTPProber struct {
	Timeout time.Duration
	// SkipTLSVerify disables certificate validation for this prober only.
	SkipTLSVerify bool
	UserAgent     string
	MaxBodyBytes  int64
	Logger        *zap.Logger

	clientOnce sync.Once
	client     *http.Client
}

// Probe fetches rawURL and never returns an error: failures are Unreachable.
func (h *HTTPProber) Probe(ctx context.Context, rawURL string) ProbeOutcome {
	logger := h.logger()

	probeCtx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		logger.Debug("create probe request", zap.String("url", rawURL), zap.Error(err))
		return Unreachable()
	}
	ua := h.UserAgent
	if ua == "" {
		ua = consts.DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := h.httpClient().Do(req)
	if err != nil {
		logger.Debug("probe failed", zap.String("url", rawURL), zap.Error(err))
		return Unreachable()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody()))
	if err != nil {
		// partial body is still usable for fingerprinting
		logger.Debug("read probe body", zap.String("url", rawURL), zap.Error(err))
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[name] = strings.Join(values, ", ")
	}

	return Responded(resp.StatusCode, decodeBody(raw, resp.Header.Get("Content-Type")), headers)
}

func decodeBody(raw []byte, contentType string) string {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func (h *HTTPProber) httpClient() *http.Client {
	h.clientOnce.Do(func() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: h.SkipTLSVerify} // #nosec G402 -- takeover probes must reach endpoints with invalid certificates when asked to.
		h.client = &http.Client{
			Timeout:   h.timeout(),
			Transport: transport,
		}
	})
	return h.client
}

func (h *HTTPProber) timeout() time.Duration {
	if h.Timeout <= 0 {
		return consts.DefaultProbeTimeout
	}
	return h.Timeout
}

func (h *HTTPProber) maxBody() int64 {
	if h.MaxBodyBytes <= 0 {
		return consts.MaxProbeBodyBytes
	}
	return h.MaxBodyBytes
}

func (h *HTTPProber) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

package checker

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// ExtractHost reduces a target to the bare hostname used for DNS and probes.
// It accepts:
//   - example.com
//   - example.com.
//   - https://example.com:443/path
//   - example.com:8080
func ExtractHost(target string) string {
	host := strings.TrimSpace(target)
	if host == "" {
		return ""
	}

	if strings.Contains(host, "://") {
		if parsed, err := url.Parse(host); err == nil && parsed.Hostname() != "" {
			host = parsed.Hostname()
		} else {
			host = host[strings.Index(host, "://")+3:]
		}
	}

	// Remove path
	host = strings.SplitN(host, "/", 2)[0]
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return strings.TrimSuffix(host, ".")
}

// ReadTargets reads one hostname per line, trimming whitespace and skipping
// blank lines. Duplicates are kept.
func ReadTargets(r io.Reader) ([]string, error) {
	var targets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return targets, fmt.Errorf("read targets: %w", err)
	}
	return targets, nil
}

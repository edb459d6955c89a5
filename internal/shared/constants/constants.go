package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultFilePerm is the default permission used when writing report files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultProbeTimeout bounds each CNAME lookup and HTTP probe.
	DefaultProbeTimeout = 5 * time.Second
	// DefaultConcurrency is the number of hostnames classified in parallel.
	DefaultConcurrency = 10
	// MaxProbeBodyBytes caps how much of a response body is read for fingerprinting.
	MaxProbeBodyBytes = 1 << 20
	// DefaultUserAgent is sent with every probe request.
	DefaultUserAgent = "fdscan/1.0 (+takeover-risk-check)"
	// DNSPort is appended to nameservers given without a port.
	DNSPort = "53"
)

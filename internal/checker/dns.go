package checker

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	consts "github.com/khanhnv2901/fdscan/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/fdscan/internal/shared/errors"
	"github.com/miekg/dns"
	"go.uber.org/zap"
)

var resolvConfPath = "/etc/resolv.conf"

// Resolution is the outcome of a CNAME lookup: Absent or Present(target).
type Resolution struct {
	target  string
	present bool
}

// Absent covers no record, NXDOMAIN, timeouts and missing nameservers alike.
func Absent() Resolution {
	return Resolution{}
}

// Present wraps a CNAME target, stripping the trailing root dot.
func Present(target string) Resolution {
	target = strings.TrimSuffix(target, ".")
	if target == "" {
		return Absent()
	}
	return Resolution{target: target, present: true}
}

// Target returns the CNAME target and whether one was found.
func (r Resolution) Target() (string, bool) {
	return r.target, r.present
}

// Resolver looks up the CNAME target of a hostname.
type Resolver interface {
	ResolveCNAME(ctx context.Context, host string) Resolution
}

// DNSResolver queries CNAME records directly against nameservers.
type DNSResolver struct {
	Timeout     time.Duration
	Nameservers []string // ip or ip:port; empty means /etc/resolv.conf
	Net         string   // "udp" (default, truncated answers re-query over tcp) or "tcp"
	Logger      *zap.Logger

	loadOnce sync.Once
	servers  []string
	next     atomic.Uint64
}

// ResolveCNAME returns the first CNAME hop for host. Every failure is Absent.
func (d *DNSResolver) ResolveCNAME(ctx context.Context, host string) Resolution {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return Absent()
	}
	logger := d.logger()

	server, ok := d.pickServer()
	if !ok {
		logger.Debug("no nameservers available", zap.String("host", host))
		return Absent()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()

	client := &dns.Client{
		Net:     d.network(),
		Timeout: d.timeout(),
	}

	owner := dns.Fqdn(host)
	msg := new(dns.Msg)
	msg.SetQuestion(owner, dns.TypeCNAME)
	msg.RecursionDesired = true

	resp, _, err := client.ExchangeContext(lookupCtx, msg, server)
	if err == nil && resp != nil && resp.Truncated && client.Net == "udp" {
		// same query over TCP, not a retry of a failed lookup
		logger.Debug("truncated answer, re-querying over tcp", zap.String("host", host), zap.String("server", server))
		client.Net = "tcp"
		resp, _, err = client.ExchangeContext(lookupCtx, msg, server)
	}
	if err != nil {
		logger.Debug("cname lookup failed", zap.String("host", host), zap.String("server", server), zap.Error(err))
		return Absent()
	}
	if resp == nil || resp.Rcode != dns.RcodeSuccess {
		return Absent()
	}

	var fallback string
	for _, rr := range resp.Answer {
		cname, ok := rr.(*dns.CNAME)
		if !ok {
			continue
		}
		if strings.EqualFold(cname.Hdr.Name, owner) {
			return Present(cname.Target)
		}
		if fallback == "" {
			fallback = cname.Target
		}
	}
	if fallback != "" {
		return Present(fallback)
	}
	return Absent()
}

func (d *DNSResolver) pickServer() (string, bool) {
	d.loadOnce.Do(d.loadServers)
	if len(d.servers) == 0 {
		return "", false
	}
	idx := d.next.Add(1) - 1
	return d.servers[idx%uint64(len(d.servers))], true
}

func (d *DNSResolver) loadServers() {
	for _, ns := range d.Nameservers {
		if addr := normalizeNameserver(ns); addr != "" {
			d.servers = append(d.servers, addr)
		}
	}
	if len(d.servers) > 0 {
		return
	}

	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		d.logger().Warn("could not load system resolvers", zap.String("path", resolvConfPath), zap.Error(err))
		return
	}
	port := cfg.Port
	if port == "" {
		port = consts.DNSPort
	}
	for _, server := range cfg.Servers {
		d.servers = append(d.servers, net.JoinHostPort(server, port))
	}
	if len(d.servers) == 0 {
		d.logger().Warn("lookups will report no CNAME", zap.String("path", resolvConfPath), zap.Error(sharederrors.ErrNoNameservers))
	}
}

func normalizeNameserver(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(ns); err == nil {
		return ns
	}
	return net.JoinHostPort(strings.Trim(ns, "[]"), consts.DNSPort)
}

func (d *DNSResolver) timeout() time.Duration {
	if d.Timeout <= 0 {
		return consts.DefaultProbeTimeout
	}
	return d.Timeout
}

func (d *DNSResolver) network() string {
	if d.Net == "" {
		return "udp"
	}
	return d.Net
}

func (d *DNSResolver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Package dnscheck implements the DNS health-check driver, grounded on
// netcat_dnscheck.py's dns_check: for each configured DNS server, resolve
// one external and one internal hostname against it specifically (not the
// host's default resolver) and classify the outcome.
package dnscheck

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// HostnameExternal and HostnameInternal are the two lookups performed
// against every configured DNS server, unchanged from the original.
const (
	HostnameExternal = "google.com"
	HostnameInternal = "ntp.verifone.com"
)

// Status codes, transcribed from the original's aiodns error-code
// classification (ARES_ENOTFOUND -> "FAIL [R]", connection-refused/timeout
// -> "FAIL [C]", anything else -> "FAIL [U]").
const (
	StatusOK          = "OK [CR]"
	StatusFailResolve = "FAIL [R]"
	StatusFailConnect = "FAIL [C]"
	StatusFailUnknown = "FAIL [U]"
)

// QueryTimeout bounds a single hostname lookup against one DNS server.
var QueryTimeout = 10 * time.Second

// ResultPair holds the classified status of both lookups against one
// server, mirroring the original's dns_data["results"] sub-dict.
type ResultPair struct {
	External string `json:"external"`
	Internal string `json:"internal"`
}

// ServerResult is the outcome of checking one DNS server.
type ServerResult struct {
	Description string     `json:"description"`
	IPAddress   string     `json:"ip_address"`
	Results     ResultPair `json:"results"`
}

// Check queries ipAddress for both the external and internal hostnames and
// returns the classified status of each. It never returns an error: every
// failure mode is represented as a status string, matching the original's
// "a DNS check job never raises, it only records a result" design.
func Check(ctx context.Context, description, ipAddress string) ServerResult {
	resolver := newPinnedResolver(ipAddress)

	return ServerResult{
		Description: description,
		IPAddress:   ipAddress,
		Results: ResultPair{
			External: classify(lookup(ctx, resolver, HostnameExternal)),
			Internal: classify(lookup(ctx, resolver, HostnameInternal)),
		},
	}
}

// newPinnedResolver builds a *net.Resolver that queries only ipAddress on
// port 53, rather than the system's configured resolvers — the Go
// equivalent of aiodns.DNSResolver(nameservers=[ip_address]).
func newPinnedResolver(ipAddress string) *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: QueryTimeout}
			return d.DialContext(ctx, "udp", net.JoinHostPort(ipAddress, "53"))
		},
	}
}

func lookup(ctx context.Context, resolver *net.Resolver, hostname string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	_, err := resolver.LookupHost(ctx, hostname)
	return err
}

// classify maps a lookup error (or nil) to one of the four status codes.
func classify(err error) string {
	if err == nil {
		return StatusOK
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return StatusFailResolve
		}
		if dnsErr.IsTimeout || isConnectionError(dnsErr) {
			return StatusFailConnect
		}
	}
	if isConnectionError(err) {
		return StatusFailConnect
	}

	return StatusFailUnknown
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "i/o timeout")
}

// StatusDocument is the status-table record for a DNS check job, grounded
// on the original's dns_status_document shape ({snapshot_name,
// snapshot_timestamp, dns_data: [...]}).
type StatusDocument struct {
	SnapshotName      string         `json:"snapshot_name"`
	SnapshotTimestamp int64          `json:"snapshot_timestamp"`
	DNSData           []ServerResult `json:"dns_data"`
}

// SnapshotName is the fixed partition key the original always used for
// the DNS check job's status document.
const SnapshotName = "dns_status"

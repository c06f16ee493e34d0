// Package netx classifies transport-level failures so callers can tell an
// unreachable collaborator apart from one that answered with an error.
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsConnectivity reports whether err means the remote side could not be
// reached or did not answer in time: DNS failures, refused or reset
// connections, timeouts and cancelled transports.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Package httputil holds the shared HTTP plumbing for outbound calls: pooled
// clients in timeout tiers, bounded body reads, and the analyzer concurrency
// semaphore.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize bounds response body reads. Oracle and embedding backends
// return small JSON; anything larger is a misbehaving peer.
const MaxResponseSize = 10 * 1024 * 1024

// TimeoutTier selects a pooled client by how long the remote call is allowed
// to run end to end.
type TimeoutTier int

const (
	TierFast   TimeoutTier = iota // probes and health checks
	TierMedium                    // oracle classification calls
	TierSlow                      // embeddings and model pulls
)

var tierTimeouts = [...]time.Duration{
	TierFast:   5 * time.Second,
	TierMedium: 30 * time.Second,
	TierSlow:   90 * time.Second,
}

// One transport for every tier so connections are reused across the whole
// process regardless of which client made them.
var pooledTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

var (
	clients     [len(tierTimeouts)]*http.Client
	clientsOnce sync.Once
)

// Client returns the shared client for a tier. Never build a per-request
// http.Client; it defeats the connection pool.
func Client(tier TimeoutTier) *http.Client {
	clientsOnce.Do(func() {
		for t, d := range tierTimeouts {
			clients[t] = &http.Client{Timeout: d, Transport: pooledTransport}
		}
	})
	if tier < TierFast || int(tier) >= len(clients) {
		tier = TierMedium
	}
	return clients[tier]
}

// FastClient is the 5s-tier client for liveness probes.
func FastClient() *http.Client { return Client(TierFast) }

// MediumClient is the 30s-tier client for oracle calls.
func MediumClient() *http.Client { return Client(TierMedium) }

// SlowClient is the 90s-tier client for embedding and model operations.
func SlowClient() *http.Client { return Client(TierSlow) }

// ReadResponseBody reads at most maxSize bytes of a response body. Zero or
// negative maxSize falls back to MaxResponseSize.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadErrorBody reads an error response with a 1MB cap, enough for any
// backend's error payload.
func ReadErrorBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, 1024*1024))
}

// DrainAndClose consumes what remains of a body and closes it so the
// underlying connection can return to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}

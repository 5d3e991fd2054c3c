package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
)

// checkTimeout bounds a single endpoint check.
const checkTimeout = 5 * time.Second

// Endpoint is the observed state of one JSON-RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	ChainID     int64
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the check succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Check asks url for its chain id and head block, timing the round trips.
func Check(ctx context.Context, url string) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	ep := Endpoint{URL: url}
	c := chain.NewEVMClient(url)

	start := time.Now()
	id, err := c.ChainID(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	block, err := c.BlockNumber(ctx)
	ep.Latency = time.Since(start)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.ChainID = id.Int64()
	ep.BlockNumber = block
	return ep
}

// CheckAll checks every url in parallel. Results keep the order of urls.
func CheckAll(ctx context.Context, urls []string) []Endpoint {
	out := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			out[idx] = Check(ctx, url)
		}(i, u)
	}
	wg.Wait()
	return out
}

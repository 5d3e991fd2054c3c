// Package rpc chooses which of several configured JSON-RPC endpoints a
// session talks to.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Algorithm names a selection strategy.
type Algorithm string

const (
	// AlgorithmFastest picks the lowest-latency endpoint that is not stale.
	AlgorithmFastest Algorithm = "fastest"
	// AlgorithmFailover picks the first healthy endpoint in configured order.
	AlgorithmFailover Algorithm = "failover"
)

// staleBlockThreshold is how many blocks behind the best head an endpoint
// may be before it is skipped.
const staleBlockThreshold = 3

// ErrNoHealthyRPC is returned when no endpoint qualifies.
var ErrNoHealthyRPC = errors.New("no healthy rpc endpoint")

// ParseAlgorithm validates a strategy name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmFailover:
		return a, nil
	}
	return "", fmt.Errorf("unknown rpc strategy %q (want fastest or failover)", s)
}

// SplitURLs splits a comma-separated rpc_url value, dropping blanks.
func SplitURLs(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Pick selects an endpoint from health check results. When chainID is non-zero,
// endpoints reporting another chain are skipped.
func Pick(endpoints []Endpoint, algo Algorithm, chainID int64) (Endpoint, error) {
	var candidates []Endpoint
	var bestBlock uint64
	for _, e := range endpoints {
		if !e.Healthy() || (chainID != 0 && e.ChainID != chainID) {
			continue
		}
		candidates = append(candidates, e)
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range candidates {
		e := &candidates[i]
		if bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if algo == AlgorithmFailover {
			return *e, nil
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return Endpoint{}, ErrNoHealthyRPC
	}
	return *winner, nil
}

// Select returns the URL to use out of urls. A single URL is returned as
// is, without checking.
func Select(ctx context.Context, urls []string, algo Algorithm, chainID int64) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	ep, err := Pick(CheckAll(ctx, urls), algo, chainID)
	if err != nil {
		return "", err
	}
	return ep.URL, nil
}

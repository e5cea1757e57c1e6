// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds the total OpenAlex request rate for one client. All
// queries issued through a client share the same limiter, so the combined
// rate stays under the API limit no matter how many grant IDs are in
// flight. The underlying rate.Limiter is safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a token bucket limiter allowing perSecond sustained
// requests with the given burst size.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a request is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

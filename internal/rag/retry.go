// Copyright 2025 The ragpipe Authors
// SPDX-License-Identifier: Apache-2.0

package rag

import (
	"context"
	"log/slog"
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryPolicy bounds the exponential backoff applied to backend calls.
type RetryPolicy struct {
	// Initial is the first retry delay.
	Initial time.Duration

	// Max is the ceiling on a single retry delay.
	Max time.Duration

	// Multiplier is the backoff growth factor.
	Multiplier float64

	// Deadline is the total budget across all attempts. It is checked
	// between attempts, never mid-call; once exceeded, the last attempt's
	// error is surfaced.
	Deadline time.Duration
}

// DefaultRetryPolicy mirrors the backend's recommended retry parameters:
// 1s initial, doubling to a 10s ceiling, giving up after 120s total.
var DefaultRetryPolicy = RetryPolicy{
	Initial:    1 * time.Second,
	Max:        10 * time.Second,
	Multiplier: 2.0,
	Deadline:   120 * time.Second,
}

// call invokes fn under the policy, retrying transient backend errors with
// exponential backoff. The deadline bounds the pauses between attempts and
// never interrupts an in-flight call: fn runs on the caller's context, so a
// slow final attempt completes and its result stands. The final attempt's
// error is returned as-is; the wrapping into a remote service error is left
// to the caller so the operation name lands in one place.
func (p RetryPolicy) call(ctx context.Context, logger *slog.Logger, operation string, fn func(ctx context.Context) error) error {
	bo := gax.Backoff{
		Initial:    p.Initial,
		Max:        p.Max,
		Multiplier: p.Multiplier,
	}
	deadline := time.Now().Add(p.Deadline)

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}

		pause := bo.Pause()
		if time.Now().Add(pause).After(deadline) {
			logger.WarnContext(ctx, "Retry budget exhausted",
				slog.String("operation", operation),
				slog.Int("attempts", attempt),
				slog.String("error", lastErr.Error()),
			)
			return lastErr
		}

		logger.WarnContext(ctx, "Transient backend error, retrying",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.Duration("pause", pause),
			slog.String("error", lastErr.Error()),
		)

		// Sleep returns early only on caller cancellation; surface the last
		// operation error rather than a bare context error.
		if err := gax.Sleep(ctx, pause); err != nil {
			return lastErr
		}
	}
}

// isTransient reports whether err is worth retrying. Only explicitly
// transient gRPC codes qualify; permanent errors (InvalidArgument, NotFound,
// PermissionDenied) must fail fast instead of masquerading as retryable.
func isTransient(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}

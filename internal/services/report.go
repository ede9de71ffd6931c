package services

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// captureError forwards errors that are handled locally instead of being
// returned to the caller. Without a configured client this is a no-op.
func captureError(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

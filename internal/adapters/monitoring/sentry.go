package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global Sentry hub. An empty dsn leaves reporting disabled.
// POST: Returns a flush function to defer in main
func InitSentry(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          "fitstudio@" + release,
		TracesSampleRate: 0.1,
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureError reports err with extra context. No-op when Sentry is not initialised.
func CaptureError(ctx context.Context, err error, extras map[string]any) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub == nil || hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range extras {
			scope.SetExtra(k, v)
		}
		hub.CaptureException(err)
	})
}

// CaptureRequestError reports err with the request method, route and filtered headers.
func CaptureRequestError(r *http.Request, err error) {
	CaptureError(r.Context(), err, map[string]any{
		"method":  r.Method,
		"route":   RouteLabel(r.URL.Path),
		"headers": safeHeaders(r.Header),
	})
}

// CapturePanic reports a recovered panic value.
func CapturePanic(r *http.Request, recovered any) {
	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("http.route", RouteLabel(r.URL.Path))
		hub.Recover(recovered)
	})
}

func safeHeaders(h http.Header) map[string]any {
	safe := make(map[string]any, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Cookie") {
			safe[k] = "[FILTERED]"
		} else {
			safe[k] = v
		}
	}
	return safe
}

package model

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

type restStartedAt struct{}

// newRESTClient returns a resty client for a vendor API that logs every
// exchange at debug level.
func newRESTClient(name, baseURL string, logger zerolog.Logger) *resty.Client {
	client := resty.New().SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), restStartedAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		start, _ := r.Request.Context().Value(restStartedAt{}).(time.Time)
		event := logger.Debug().
			Str("client", name).
			Int("status", r.StatusCode()).
			Dur("latency", time.Since(start))
		if r.Request.RawRequest != nil {
			event = event.Str("method", r.Request.RawRequest.Method).Str("path", r.Request.RawRequest.URL.Path)
		}
		event.Msg("provider request")
		return nil
	})
	return client
}

// vendorError extracts a human-readable message from a failed response.
func vendorError(resp *resty.Response, message string) string {
	if message != "" {
		return message
	}
	if resp == nil {
		return "no response"
	}
	return resp.Status()
}

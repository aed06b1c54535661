package testutil

import (
	"net/http"
	"time"

	id "complia/pkg/domain"
	"complia/pkg/requestcontext"
)

// WithTenant adds a tenant scope to the request context. This simulates what
// the auth middleware does for tenant-scoped admin tokens. An invalid UUID is
// silently ignored.
func WithTenant(req *http.Request, tenantID string) *http.Request {
	parsed, err := id.ParseTenantID(tenantID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithTenantID(req.Context(), parsed))
}

// WithRequestID stamps a request ID into the request context, as the request
// context middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request clock, as the request context middleware
// would. Handlers then observe a deterministic "now".
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

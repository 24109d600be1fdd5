package middleware

import (
	"net/http"

	"github.com/eventdesk/server/internal/audit"
)

// pathKeys are the route wildcards copied into audit details.
var pathKeys = []string{"tag", "customer", "sub"}

// Audit records every request that reaches next as an audit entry named
// after the method and route pattern. It must run inside StaffAuth and,
// for the client address, honours the same trusted proxies as RateLimit.
func Audit(logger *audit.Logger, trustedProxyCIDRs []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			status := rw.status
			if status == 0 {
				status = http.StatusOK
			}
			entry := audit.Entry{
				Action:     r.Method + " " + r.Pattern,
				ResourceID: r.PathValue("id"),
				IPAddress:  clientKey(r, trustedProxyCIDRs),
				Status:     audit.StatusSuccess,
				HTTPStatus: status,
			}
			if status >= http.StatusBadRequest {
				entry.Status = audit.StatusFailure
			}
			if staff, ok := StaffFromContext(r.Context()); ok {
				entry.AccountID = staff.AccountID
				entry.Role = string(staff.Role)
			}
			details := map[string]string{}
			if requestID := GetRequestID(r.Context()); requestID != "" {
				details["request_id"] = requestID
			}
			for _, key := range pathKeys {
				if value := r.PathValue(key); value != "" {
					details[key] = value
				}
			}
			if len(details) > 0 {
				entry.Details = details
			}
			logger.Log(entry)
		})
	}
}

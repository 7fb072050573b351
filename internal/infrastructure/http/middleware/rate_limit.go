package middleware

import (
	"net"
	"net/http"

	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/response"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/ratelimit"
)

func NewRateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := callerAddr(r)

			if !limiter.Allow(caller) {
				monitoring.RecordRateLimited()
				response.WriteDomainError(w, domainErrors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middlewares

import (
	"crypto/subtle"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerTokenMiddleware admits requests carrying "Authorization: Bearer
// <token>". An empty token rejects every request.
func BearerTokenMiddleware(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.GetLogger()
			header := r.Header.Get("Authorization")
			if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				logger.Warn().Str("path", r.URL.Path).Msg(errors.ErrMissingBearerToken)
				errors.HandleHTTPError(w, errors.NewUnauthorizedError(errors.ErrMissingBearerToken))
				return
			}

			presented := strings.TrimSpace(header[len(bearerPrefix):])
			if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.Warn().Str("path", r.URL.Path).Msg(errors.ErrInvalidBearerToken)
				errors.HandleHTTPError(w, errors.NewUnauthorizedError(errors.ErrInvalidBearerToken))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

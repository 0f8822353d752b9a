// Package logger builds the zap logger and the request logging middleware.
package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/go-pis/httpx"
)

// New returns a production zap logger at level ("debug", "info", "warn", "error").
// dev switches to the human readable console encoder.
func New(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapcfg := zap.NewProductionConfig()
	if dev {
		zapcfg = zap.NewDevelopmentConfig()
	}
	zapcfg.Level = lvl
	return zapcfg.Build()
}

// RequestLog logs one line per request once the response has been written.
func RequestLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := httpx.NewStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", sw.Status),
				zap.Int("length", sw.Length),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

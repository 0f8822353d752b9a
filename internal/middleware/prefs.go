// Package middleware holds the HTTP middlewares shared by the server.
package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/go-pis/httpx"
	"github.com/diewo77/go-pis/i18n"
)

// Lang resolves the response language (query "lang" > cookie "lang" > Accept-Language)
// and stores it in the request context.
func Lang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = i18n.Normalize(c.Value)
		}
		if ql := r.URL.Query().Get("lang"); ql != "" {
			lang = i18n.Normalize(ql)
		}
		if lang == "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// Recover turns a panic into a 500 internal_error JSON response.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic in handler",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					lang := i18n.LangFrom(r.Context())
					httpx.JSONErrorDetail(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

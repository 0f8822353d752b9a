package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diewo77/go-pis/i18n"
)

func langEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(i18n.LangFrom(r.Context())))
	})
}

func TestLang(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		header string
		cookie string
		want   string
	}{
		{"default", "/", "", "", "pt"},
		{"accept-language", "/", "en-US,en;q=0.9", "", "en"},
		{"query wins", "/?lang=pt", "en-US", "", "pt"},
		{"query en", "/?lang=en", "", "pt", "en"},
		{"cookie over header", "/", "en", "pt", "pt"},
		{"unsupported query", "/?lang=es", "", "", "pt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Accept-Language", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "lang", Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			Lang(langEcho()).ServeHTTP(rr, r)
			require.Equal(t, tt.want, rr.Body.String())
			require.Equal(t, tt.want, rr.Header().Get("Content-Language"))
		})
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Lang, Recover(zap.NewNop()))

	r := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"error":"internal_error","detail":"Internal error"}`, rr.Body.String())
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b"}, order)
}

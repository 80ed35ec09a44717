package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Run("assigns a UUID when the client sends none", func(t *testing.T) {
		var captured string
		handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			captured = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.NotEmpty(t, captured)
		_, err := uuid.Parse(captured)
		assert.NoError(t, err)
		assert.Equal(t, captured, w.Header().Get(requestIDHeader))
	})

	t.Run("honors a client-supplied ID", func(t *testing.T) {
		var captured string
		handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			captured = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set(requestIDHeader, "client-id-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "client-id-1", captured)
		assert.Equal(t, "client-id-1", w.Header().Get(requestIDHeader))
	})
}

func TestRequestIDFromContext_Unset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}

func TestRequestLogger(t *testing.T) {
	t.Run("passes the response through", func(t *testing.T) {
		handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/brew", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "short and stout", w.Body.String())
	})

	t.Run("defaults the recorded status to 200", func(t *testing.T) {
		handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("implicit ok"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestChain(t *testing.T) {
	t.Run("first middleware runs outermost", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		handler := Chain(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
		}), mark("outer"), mark("inner"))

		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, []string{"outer", "inner", "handler"}, order)
	})

	t.Run("no middleware returns the handler unchanged", func(t *testing.T) {
		base := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})
		handler := Chain(base)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		assert.Equal(t, http.StatusAccepted, w.Code)
	})
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ktcalder/chatrelay/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_errorHandler(t *testing.T) {
	t.Run("recovers from a panicking handler", func(t *testing.T) {
		app := newTestApp(t, &store.MockMessageRepository{})

		h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status 500")
		assert.Equal(t, "close", rr.Header().Get("Connection"), "expected connection to be closed")

		var resp ApiError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "expected valid JSON body")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "expected status code in body")
	})

	t.Run("passes normal requests through", func(t *testing.T) {
		app := newTestApp(t, &store.MockMessageRepository{})

		h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code, "expected handler response to pass through")
	})
}

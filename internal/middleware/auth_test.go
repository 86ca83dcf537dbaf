package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/weeklyfit/internal/middleware"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTokenAuth_Check(t *testing.T) {
	hash, err := pkg.HashToken("valid-token")
	require.NoError(t, err)
	tokenAuth := middleware.NewTokenAuth(hash)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/health",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "WebhookWithoutToken",
			path:               "/webhook",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/weekly",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidToken",
			path:               "/weekly",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ValidTokenCached",
			path:               "/weekly/summary",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "InvalidToken",
			path:               "/weekly",
			method:             "PUT",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "Preflight",
			path:               "/weekly",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)
			if tc.token != "" {
				req.Header.Add(middleware.TokenHeader, tc.token)
			}

			rr := httptest.NewRecorder()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			tokenAuth.Check()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}
}

func TestTokenAuth_Disabled(t *testing.T) {
	tokenAuth := middleware.NewTokenAuth("")

	req := httptest.NewRequest("PUT", "/weekly", nil)
	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	tokenAuth.Check()(handler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

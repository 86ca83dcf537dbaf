package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorsMiddleware(t *testing.T) {
	testCases := []struct {
		name           string
		allowed        []string
		origin         string
		method         string
		expectCors     bool
		expectNext     bool
		expectedStatus int
	}{
		{
			name:           "AllowedOrigin",
			allowed:        []string{"https://weeklyfit.app"},
			origin:         "https://weeklyfit.app",
			expectCors:     true,
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "AllowedOriginTrailingSlashInConfig",
			allowed:        []string{"http://localhost:5173/"},
			origin:         "http://localhost:5173",
			expectCors:     true,
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NotAllowedOrigin",
			allowed:        []string{"https://weeklyfit.app"},
			origin:         "https://www.notallowed.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "NoOrigin",
			allowed:        []string{"https://weeklyfit.app"},
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wildcard",
			allowed:        []string{"*"},
			origin:         "https://anything.example",
			expectCors:     true,
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Preflight",
			allowed:        []string{"https://weeklyfit.app"},
			origin:         "https://weeklyfit.app",
			method:         http.MethodOptions,
			expectCors:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "PreflightNotAllowed",
			allowed:        []string{"https://weeklyfit.app"},
			origin:         "https://evil.example",
			method:         http.MethodOptions,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodGet
			}
			rr := httptest.NewRecorder()
			req, err := http.NewRequest(method, "/weekly", nil)
			require.NoError(t, err)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}

			nextCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})
			Cors(tc.allowed)(nextHandler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Unexpected status code")
			assert.Equal(t, tc.expectNext, nextCalled)
			if tc.expectCors {
				assert.Equal(t, tc.origin, rr.Header().Get("Access-Control-Allow-Origin"))
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), TokenHeader)
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

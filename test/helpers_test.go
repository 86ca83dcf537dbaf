//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/weeklyfit/internal/middleware"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) do(ctx context.Context, method, path string, body any, withToken bool) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", pkg.ContentType.JSON)
	}
	if withToken {
		req.Header.Set(middleware.TokenHeader, testToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

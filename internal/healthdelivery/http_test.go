package healthdelivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

func TestCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name           string
		ping           pingerFunc
		wantStatusCode int
		wantBody       string
	}{
		{
			name:           "Healthy",
			ping:           func(ctx context.Context) error { return nil },
			wantStatusCode: http.StatusOK,
			wantBody:       `{"status":"healthy","database":"connected","version":"2.0.0"}`,
		},
		{
			name:           "DatabaseDown",
			ping:           func(ctx context.Context) error { return errors.New("dial tcp: connection refused") },
			wantStatusCode: http.StatusServiceUnavailable,
			wantBody:       `{"status":"unhealthy","detail":"database unavailable"}`,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(tc.ping)

			server := gin.New()
			server.GET("/health", h.Check)

			req, err := http.NewRequest(http.MethodGet, "/health", nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
			require.JSONEq(t, tc.wantBody, recorder.Body.String())
		})
	}
}

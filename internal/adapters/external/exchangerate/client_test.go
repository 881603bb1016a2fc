package exchangerate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pravaha-app/expense_backend/internal/adapters/external/exchangerate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Convert(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","date":"2026-08-14","rates":{"INR":83.50,"EUR":0.92}}`))
	}))
	defer server.Close()

	client := exchangerate.NewClient(server.URL, server.Client())

	amount, err := client.Convert(context.Background(), decimal.NewFromInt(10), "USD", "INR", time.Now())

	require.NoError(t, err)
	assert.Equal(t, "/USD", requestedPath)
	assert.Equal(t, "835.00", amount.StringFixed(2))
}

func TestClient_Convert_RoundsToTwoPlaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","date":"2026-08-14","rates":{"EUR":0.9237}}`))
	}))
	defer server.Close()

	client := exchangerate.NewClient(server.URL, server.Client())

	amount, err := client.Convert(context.Background(), decimal.NewFromFloat(19.99), "USD", "EUR", time.Now())

	require.NoError(t, err)
	// 19.99 * 0.9237 = 18.464763
	assert.Equal(t, "18.46", amount.StringFixed(2))
}

func TestClient_Convert_IdentitySkipsNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := exchangerate.NewClient(server.URL, server.Client())

	amount, err := client.Convert(context.Background(), decimal.NewFromFloat(42.5), "USD", "USD", time.Now())

	require.NoError(t, err)
	assert.Equal(t, "42.50", amount.StringFixed(2))
	assert.Zero(t, calls)
}

func TestClient_Convert_MissingRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","date":"2026-08-14","rates":{"EUR":0.92}}`))
	}))
	defer server.Close()

	client := exchangerate.NewClient(server.URL, server.Client())

	_, err := client.Convert(context.Background(), decimal.NewFromInt(10), "USD", "XXX", time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate from USD to XXX")
}

func TestClient_Convert_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := exchangerate.NewClient(server.URL, server.Client())

	_, err := client.Convert(context.Background(), decimal.NewFromInt(10), "USD", "INR", time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_Convert_HonorsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"rates":{"INR":83.50}}`))
	}))
	defer server.Close()

	client := exchangerate.NewClient(server.URL, server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Convert(ctx, decimal.NewFromInt(10), "USD", "INR", time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

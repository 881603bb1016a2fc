package restcountries_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pravaha-app/expense_backend/internal/adapters/external/restcountries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CurrencyForCountry(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"currencies":{"INR":{"name":"Indian rupee","symbol":"₹"}}}]`))
	}))
	defer server.Close()

	client := restcountries.NewClient(server.URL, server.Client())

	code, err := client.CurrencyForCountry(context.Background(), "India")

	require.NoError(t, err)
	assert.Equal(t, "/name/India", requestedPath)
	assert.Equal(t, "INR", code)
}

func TestClient_CurrencyForCountry_UnknownCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := restcountries.NewClient(server.URL, server.Client())

	_, err := client.CurrencyForCountry(context.Background(), "Atlantis")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClient_CurrencyForCountry_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := restcountries.NewClient(server.URL, server.Client())

	_, err := client.CurrencyForCountry(context.Background(), "India")

	require.Error(t, err)
}

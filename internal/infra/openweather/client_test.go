package openweather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: "test_key", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestCurrentCelsius(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test_key", r.URL.Query().Get("appid"))
		assert.Equal(t, "London", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"cod": 200, "name": "London", "main": {"temp": 300.00, "humidity": 40}}`)
	})

	celsius, err := client.CurrentCelsius(context.Background(), "London")
	require.NoError(t, err)
	assert.Equal(t, 26.85, celsius)
}

func TestCurrentCelsius_CityNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod": "404", "message": "city not found"}`)
	})

	_, err := client.CurrentCelsius(context.Background(), "Atlantis")
	assert.True(t, errors.Is(err, ErrCityNotFound))
}

func TestCurrentCelsius_OtherErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unauthorized", body: `{"cod": 401, "message": "Invalid API key"}`},
		{name: "not json", body: `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			_, err := client.CurrentCelsius(context.Background(), "London")
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrCityNotFound))
		})
	}
}

func TestCurrentCelsius_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"cod": 200, "main": {"temp": 280}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CurrentCelsius(ctx, "London")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestKelvinToCelsius(t *testing.T) {
	tests := []struct {
		kelvin   float64
		expected float64
	}{
		{300.00, 26.85},
		{273.15, 0},
		{0, -273.15},
		{293.456, 20.31},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.kelvin), func(t *testing.T) {
			assert.Equal(t, tt.expected, KelvinToCelsius(tt.kelvin))
		})
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

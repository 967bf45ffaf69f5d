// Package openweather provides a client for the OpenWeatherMap current-weather API.
package openweather

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// ErrCityNotFound is returned when the API reports the city as unknown.
var ErrCityNotFound = errors.New("city not found")

// notFoundCode is the status sentinel the API sends, as a string, for unknown cities.
const notFoundCode = "404"

// kelvinOffset converts kelvin to degrees Celsius.
const kelvinOffset = 273.15

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Config represents OpenWeatherMap client configuration.
type Config struct {
	APIKey  string
	BaseURL string
}

// New creates a new OpenWeatherMap client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openweather API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5/weather"
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// CurrentCelsius returns the current temperature of city in degrees Celsius,
// rounded to two decimals.
// Reference: https://openweathermap.org/current
func (c *Client) CurrentCelsius(ctx context.Context, city string) (float64, error) {
	if city == "" {
		return 0, errors.New("city is required")
	}

	params := url.Values{}
	params.Set("appid", c.apiKey)
	params.Set("q", city)

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read response body")
	}

	return parseCelsius(body)
}

// parseCelsius extracts main.temp from a payload. The "cod" field is numeric on
// success and a string on errors, so it is compared by its string form.
func parseCelsius(body []byte) (float64, error) {
	if !gjson.ValidBytes(body) {
		return 0, errors.New("invalid weather payload")
	}

	cod := gjson.GetBytes(body, "cod")
	if cod.String() == notFoundCode {
		return 0, ErrCityNotFound
	}

	temp := gjson.GetBytes(body, "main.temp")
	if !temp.Exists() {
		msg := gjson.GetBytes(body, "message").String()
		return 0, errors.Newf("weather payload has no temperature (cod=%s message=%q)", cod.String(), msg)
	}

	celsius := KelvinToCelsius(temp.Float())
	zlog.Debug().Msgf("openweather: temp=%.2fK celsius=%v", temp.Float(), celsius)
	return celsius, nil
}

// KelvinToCelsius converts kelvin to degrees Celsius rounded to two decimals.
func KelvinToCelsius(kelvin float64) float64 {
	return math.Round((kelvin-kelvinOffset)*100) / 100
}

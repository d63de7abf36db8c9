// Package weather looks up current conditions for a city by chaining a
// geocoding call and a forecast call against Open-Meteo-style endpoints.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Errors surfaced to the user.
var (
	// ErrCityNotFound means the geocoder returned no results for the city.
	ErrCityNotFound = errors.New("weather: city not found")
	// ErrDataUnavailable means the forecast response lacked current weather.
	ErrDataUnavailable = errors.New("weather: data unavailable")
)

// Report is the rendered weather result for one city.
type Report struct {
	City        string
	Country     string
	Latitude    float64
	Longitude   float64
	Temperature float64
	WindSpeed   float64
	Description string
}

// Client calls the geocoding and forecast endpoints.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
}

// NewClient builds a weather client with a bounded request timeout.
func NewClient(geocodeURL, forecastURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
	}
}

// geocodeResponse maps the geocoding payload.
type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// forecastResponse maps the forecast payload.
type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Report resolves a city name to coordinates and fetches current weather.
func (c *Client) Report(ctx context.Context, city string) (Report, error) {
	geocodeURL := fmt.Sprintf("%s?name=%s&count=1", c.geocodeURL, url.QueryEscape(city))
	var geo geocodeResponse
	if err := c.getJSON(ctx, geocodeURL, &geo); err != nil {
		return Report{}, err
	}
	if len(geo.Results) == 0 {
		return Report{}, ErrCityNotFound
	}
	place := geo.Results[0]

	forecastURL := fmt.Sprintf("%s?latitude=%g&longitude=%g&current_weather=true",
		c.forecastURL, place.Latitude, place.Longitude)
	var forecast forecastResponse
	if err := c.getJSON(ctx, forecastURL, &forecast); err != nil {
		return Report{}, err
	}
	if forecast.CurrentWeather == nil {
		return Report{}, ErrDataUnavailable
	}

	return Report{
		City:        place.Name,
		Country:     place.Country,
		Latitude:    place.Latitude,
		Longitude:   place.Longitude,
		Temperature: forecast.CurrentWeather.Temperature,
		WindSpeed:   forecast.CurrentWeather.WindSpeed,
		Description: describeWeatherCode(forecast.CurrentWeather.WeatherCode),
	}, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if errReq != nil {
		return fmt.Errorf("weather: build request: %w", errReq)
	}
	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return fmt.Errorf("weather: request failed: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: unexpected status %d: %w", resp.StatusCode, ErrDataUnavailable)
	}
	if errDecode := json.NewDecoder(resp.Body).Decode(out); errDecode != nil {
		return fmt.Errorf("weather: decode response: %w", ErrDataUnavailable)
	}
	return nil
}

// describeWeatherCode maps WMO weather codes to short descriptions.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code <= 3:
		return "Partly cloudy"
	case code <= 48:
		return "Fog"
	case code <= 57:
		return "Drizzle"
	case code <= 67:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Rain showers"
	case code <= 86:
		return "Snow showers"
	default:
		return "Thunderstorm"
	}
}

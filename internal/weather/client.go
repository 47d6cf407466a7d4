// Package weather looks up current conditions for a location so the
// advisory prompt can account for spray windows and disease pressure.
package weather

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Conditions holds the current weather snapshot for a location
type Conditions struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
	Precipitation float64 `json:"precipitation"`
}

// Summary renders the snapshot as a one-line prompt directive
func (c *Conditions) Summary() string {
	return fmt.Sprintf("%.1f C, %.0f%% humidity, wind %.1f km/h, precipitation %.1f mm",
		c.Temperature, c.Humidity, c.WindSpeed, c.Precipitation)
}

// Provider fetches current conditions for a free-text location
type Provider interface {
	Current(ctx context.Context, location string) (*Conditions, error)
}

// Client is an HTTP weather provider against an open-meteo style API
type Client struct {
	http *resty.Client
}

// NewClient creates a new weather client
func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
	}
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		Humidity      float64 `json:"relative_humidity_2m"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		Precipitation float64 `json:"precipitation"`
	} `json:"current"`
}

// Current resolves the location to coordinates, then fetches current
// conditions. Any failure is surfaced to the caller, which treats weather
// as optional context.
func (c *Client) Current(ctx context.Context, location string) (*Conditions, error) {
	var geo geocodeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("name", location).
		SetQueryParam("count", "1").
		SetResult(&geo).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocode request failed: status %d", resp.StatusCode())
	}
	if len(geo.Results) == 0 {
		return nil, fmt.Errorf("unknown location: %s", location)
	}

	var forecast forecastResponse
	resp, err = c.http.R().
		SetContext(ctx).
		SetQueryParam("latitude", fmt.Sprintf("%f", geo.Results[0].Latitude)).
		SetQueryParam("longitude", fmt.Sprintf("%f", geo.Results[0].Longitude)).
		SetQueryParam("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation").
		SetResult(&forecast).
		Get("/forecast")
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("forecast request failed: status %d", resp.StatusCode())
	}

	return &Conditions{
		Temperature:   forecast.Current.Temperature,
		Humidity:      forecast.Current.Humidity,
		WindSpeed:     forecast.Current.WindSpeed,
		Precipitation: forecast.Current.Precipitation,
	}, nil
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// WeatherClient queries OpenWeatherMap's current-weather endpoint.
type WeatherClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// WeatherReport is the subset of the response the command formats.
type WeatherReport struct {
	City        string
	Country     string
	Description string
	TempC       float64
	FeelsLikeC  float64
	Humidity    int
	WindSpeed   float64
}

func NewWeatherClient(apiKey string) *WeatherClient {
	return &WeatherClient{
		client:  newClient(),
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
	}
}

// Current returns the weather for a city. A missing API key degrades this
// one command, not the process.
func (c *WeatherClient) Current(ctx context.Context, city string) (WeatherReport, error) {
	if c.apiKey == "" {
		return WeatherReport{}, ErrNotConfigured
	}

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	if err := getJSON(ctx, c.client, c.baseURL+"?"+q.Encode(), &payload); err != nil {
		return WeatherReport{}, fmt.Errorf("weather lookup: %w", err)
	}

	report := WeatherReport{
		City:       payload.Name,
		Country:    payload.Sys.Country,
		TempC:      payload.Main.Temp,
		FeelsLikeC: payload.Main.FeelsLike,
		Humidity:   payload.Main.Humidity,
		WindSpeed:  payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		report.Description = payload.Weather[0].Description
	}
	return report, nil
}

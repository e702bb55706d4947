package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// WikiClient queries the Wikipedia REST summary endpoint.
type WikiClient struct {
	client  *http.Client
	baseURL string
}

// WikiSummary is one article summary.
type WikiSummary struct {
	Title   string
	Extract string
	URL     string
}

func NewWikiClient() *WikiClient {
	return &WikiClient{
		client:  newClient(),
		baseURL: "https://en.wikipedia.org/api/rest_v1/page/summary",
	}
}

func (c *WikiClient) Summary(ctx context.Context, topic string) (WikiSummary, error) {
	var payload struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
		Content struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	slug := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	if err := getJSON(ctx, c.client, c.baseURL+"/"+slug, &payload); err != nil {
		return WikiSummary{}, fmt.Errorf("wiki lookup: %w", err)
	}
	if payload.Extract == "" {
		return WikiSummary{}, ErrNoResult
	}
	return WikiSummary{
		Title:   payload.Title,
		Extract: payload.Extract,
		URL:     payload.Content.Desktop.Page,
	}, nil
}

// UrbanClient queries Urban Dictionary's public define endpoint.
type UrbanClient struct {
	client  *http.Client
	baseURL string
}

// UrbanDefinition is one dictionary entry.
type UrbanDefinition struct {
	Word       string
	Definition string
	Example    string
}

func NewUrbanClient() *UrbanClient {
	return &UrbanClient{
		client:  newClient(),
		baseURL: "https://api.urbandictionary.com/v0/define",
	}
}

func (c *UrbanClient) Define(ctx context.Context, term string) (UrbanDefinition, error) {
	var payload struct {
		List []struct {
			Word       string `json:"word"`
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"list"`
	}
	if err := getJSON(ctx, c.client, c.baseURL+"?term="+url.QueryEscape(term), &payload); err != nil {
		return UrbanDefinition{}, fmt.Errorf("urban lookup: %w", err)
	}
	if len(payload.List) == 0 {
		return UrbanDefinition{}, ErrNoResult
	}
	first := payload.List[0]
	clean := func(s string) string {
		return strings.NewReplacer("[", "", "]", "").Replace(s)
	}
	return UrbanDefinition{
		Word:       first.Word,
		Definition: clean(first.Definition),
		Example:    clean(first.Example),
	}, nil
}

// TimeClient queries worldtimeapi.org for the current time in a zone.
type TimeClient struct {
	client  *http.Client
	baseURL string
}

// ZoneTime is the current time in one timezone.
type ZoneTime struct {
	Timezone string
	DateTime string
	UTCOff   string
}

func NewTimeClient() *TimeClient {
	return &TimeClient{
		client:  newClient(),
		baseURL: "https://worldtimeapi.org/api/timezone",
	}
}

func (c *TimeClient) Now(ctx context.Context, zone string) (ZoneTime, error) {
	var payload struct {
		Timezone  string `json:"timezone"`
		DateTime  string `json:"datetime"`
		UTCOffset string `json:"utc_offset"`
	}
	if err := getJSON(ctx, c.client, c.baseURL+"/"+url.PathEscape(zone), &payload); err != nil {
		return ZoneTime{}, fmt.Errorf("time lookup: %w", err)
	}
	return ZoneTime{
		Timezone: payload.Timezone,
		DateTime: payload.DateTime,
		UTCOff:   payload.UTCOffset,
	}, nil
}

// ShortenClient wraps the TinyURL creation endpoint (plain-text response).
type ShortenClient struct {
	client  *http.Client
	baseURL string
}

func NewShortenClient() *ShortenClient {
	return &ShortenClient{
		client:  newClient(),
		baseURL: "https://tinyurl.com/api-create.php",
	}
}

func (c *ShortenClient) Shorten(ctx context.Context, longURL string) (string, error) {
	body, err := getBytes(ctx, c.client, c.baseURL+"?url="+url.QueryEscape(longURL))
	if err != nil {
		return "", fmt.Errorf("shorten url: %w", err)
	}
	short := strings.TrimSpace(string(body))
	if short == "" || !strings.HasPrefix(short, "http") {
		return "", ErrNoResult
	}
	return short, nil
}

// QRClient renders QR codes through api.qrserver.com.
type QRClient struct {
	client  *http.Client
	baseURL string
}

func NewQRClient() *QRClient {
	return &QRClient{
		client:  newClient(),
		baseURL: "https://api.qrserver.com/v1/create-qr-code/",
	}
}

// Encode returns a PNG image encoding the given text.
func (c *QRClient) Encode(ctx context.Context, text string) ([]byte, error) {
	q := url.Values{}
	q.Set("size", "512x512")
	q.Set("data", text)
	png, err := getBytes(ctx, c.client, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

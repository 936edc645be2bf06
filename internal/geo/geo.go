package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Фиксированные фолбэки: обе службы best-effort, их отказ никому не мешает
const (
	FallbackIP       = "unknown"
	FallbackPosition = "unknown"
)

const lookupTimeout = 3 * time.Second

// Client ходит во внешние службы определения адреса и позиции.
// Любая ошибка или таймаут превращаются в фиксированный фолбэк.
type Client struct {
	http        *http.Client
	ipEndpoint  string
	geoEndpoint string
}

func NewClient() *Client {
	return &Client{
		http:        &http.Client{Timeout: lookupTimeout},
		ipEndpoint:  "https://api.ipify.org?format=json",
		geoEndpoint: "http://ip-api.com/json/",
	}
}

// Address возвращает внешний IP клиента либо фолбэк
func (c *Client) Address(ctx context.Context) string {
	var out struct {
		IP string `json:"ip"`
	}
	if err := c.fetch(ctx, c.ipEndpoint, &out); err != nil || out.IP == "" {
		return FallbackIP
	}
	return out.IP
}

// Position возвращает строку «город, страна» для ip либо фолбэк.
// Пустой ip означает «определить по адресу запрашивающего».
func (c *Client) Position(ctx context.Context, ip string) string {
	var out struct {
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := c.fetch(ctx, c.geoEndpoint+ip, &out); err != nil || out.Country == "" {
		return FallbackPosition
	}
	if out.City == "" {
		return out.Country
	}
	return out.City + ", " + out.Country
}

func (c *Client) fetch(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

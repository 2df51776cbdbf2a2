// Package geoip реализует клиент сервиса определения города по IP-адресу.
// Сервис необязательный: любая ошибка превращается в пустой город
// и никогда не блокирует вызывающую операцию.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type lookupResponse struct {
	Status string `json:"status"`
	City   string `json:"city"`
}

// NewClient создаёт клиент с базовым адресом сервиса (например, ip-api.com).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 3 * time.Second},
	}
}

// City возвращает город для IP-адреса либо ошибку. Вызывающий код
// трактует ошибку как отсутствие города.
func (c *Client) City(ctx context.Context, ip string) (string, error) {
	const op = "geoip.City"
	if ip == "" {
		return "", fmt.Errorf("%s: empty ip", op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if body.Status != "" && body.Status != "success" {
		return "", fmt.Errorf("%s: lookup failed", op)
	}
	return body.City, nil
}

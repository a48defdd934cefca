// Package slack posts recommendations to an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dishadvisor"
)

type Client struct {
	webhookURL string
	httpClient dishadvisor.HTTPClient
}

func NewClient(webhookURL string, httpClient dishadvisor.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	if c.webhookURL == "" {
		return errors.New("slack webhook URL is not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
		"mrkdwn":  true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(body) > 0 {
			return fmt.Errorf("failed to post message: %s: %s", resp.Status, strings.TrimSpace(string(body)))
		}
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostRecommendation formats rec and posts it to channel.
func (c *Client) PostRecommendation(ctx context.Context, channel string, rec dishadvisor.Recommendation) error {
	return c.PostMessage(ctx, channel, Format(rec))
}

// Format renders a recommendation as Slack mrkdwn.
func Format(rec dishadvisor.Recommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s in %s*", rec.Cuisine, rec.City)
	if rec.CityDefault {
		b.WriteString(" _(default city)_")
	}
	b.WriteString("\n")

	if t, ok := rec.Weather["temperature_c"].(float64); ok {
		conditions, _ := rec.Weather["conditions"].(string)
		fmt.Fprintf(&b, "Weather: %.1f°C, %s", t, conditions)
		if estimated, _ := rec.Weather["estimated"].(bool); estimated {
			b.WriteString(" (estimated)")
		}
		b.WriteString("\n")
	}

	if len(rec.Suggestions) == 0 {
		b.WriteString("No dish suggestions this time.\n")
	}
	for i, s := range rec.Suggestions {
		fmt.Fprintf(&b, "%d. *%s*: %s\n", i+1, s.Dish, strings.Join(s.Restaurants, ", "))
	}

	for _, w := range rec.Warnings {
		fmt.Fprintf(&b, ":warning: %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

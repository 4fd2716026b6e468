package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateGame(ctx context.Context, seed *int64, volatility string) (map[string]any, error) {
	body := map[string]any{}
	if seed != nil {
		body["seed"] = *seed
	}
	if volatility != "" {
		body["volatility"] = volatility
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", body, &out, "")
	return out, err
}

func (c *Client) GetGame(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), nil, &out, "")
	return out, err
}

func (c *Client) Advance(ctx context.Context, gameID, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/advance", nil, &out, idem)
	return out, err
}

func (c *Client) Warnings(ctx context.Context, gameID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID)+"/warnings", nil, &out, "")
	return out, err
}

func (c *Client) History(ctx context.Context, gameID string, limit int) (map[string]any, error) {
	path := "/v1/games/" + url.PathEscape(gameID) + "/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out, err
}

func (c *Client) StartMeeting(ctx context.Context, gameID, companyID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/ic", map[string]any{
		"company_id": companyID,
	}, &out, "")
	return out, err
}

func (c *Client) MeetingState(ctx context.Context, sessionID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/ic/"+url.PathEscape(sessionID), nil, &out, "")
	return out, err
}

func (c *Client) MeetingEnter(ctx context.Context, sessionID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ic/"+url.PathEscape(sessionID)+"/enter", nil, &out, "")
	return out, err
}

func (c *Client) MeetingPitch(ctx context.Context, sessionID, text string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ic/"+url.PathEscape(sessionID)+"/pitch", map[string]any{
		"text": text,
	}, &out, "")
	return out, err
}

func (c *Client) MeetingRespond(ctx context.Context, sessionID, text string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ic/"+url.PathEscape(sessionID)+"/response", map[string]any{
		"text": text,
	}, &out, "")
	return out, err
}

func (c *Client) MeetingDraft(ctx context.Context, sessionID, text string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ic/"+url.PathEscape(sessionID)+"/draft", map[string]any{
		"text": text,
	}, &out, "")
	return out, err
}

func (c *Client) MeetingSkip(ctx context.Context, sessionID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ic/"+url.PathEscape(sessionID)+"/skip", nil, &out, "")
	return out, err
}

func (c *Client) MeetingFinalize(ctx context.Context, sessionID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/ic/"+url.PathEscape(sessionID)+"/finalize", nil, &out, "")
	return out, err
}

func (c *Client) MeetingCancel(ctx context.Context, sessionID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, "/v1/ic/"+url.PathEscape(sessionID), nil, &out, "")
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

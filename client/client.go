// client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"movesight/internal/errors"
	"movesight/internal/moved"
	"movesight/internal/session"
	"movesight/shared/types"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// Detect runs detection on pre-classified lines. A nil minLines uses the
// server default.
func (c *Client) Detect(ctx context.Context, removed, added []moved.Record, minLines *int) (*session.Session, error) {
	body := types.DetectRequest{Removed: removed, Added: added, MinLinesCount: minLines}
	var result session.Session
	if err := c.do(ctx, http.MethodPost, "/api/detect", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DetectDiff uploads a unified diff.
func (c *Client) DetectDiff(ctx context.Context, diff []byte, source string, minLines *int) (*session.Session, error) {
	body := types.DiffRequest{Diff: string(diff), Source: source, MinLinesCount: minLines}
	var result session.Session
	if err := c.do(ctx, http.MethodPost, "/api/detect/diff", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*session.Session, error) {
	var result session.Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]types.SessionSummary, error) {
	var result []types.SessionSummary
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError returns the server's *errors.Error when the body carries one.
func decodeError(resp *http.Response) error {
	var e errors.Error
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Message == "" {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if e.Code == 0 {
		e.Code = resp.StatusCode
	}
	return &e
}

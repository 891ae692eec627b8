package store

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

// Client talks to the assistant server's REST API. It satisfies the file
// store the editor engine loads documents through.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the server at base, e.g.
// "http://localhost:8000".
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

type fileContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type fileList struct {
	Files []FileInfo `json:"files"`
	Total int        `json:"total"`
}

func (c *Client) List(ctx context.Context) ([]string, error) {
	var fl fileList
	if err := c.do(ctx, http.MethodGet, "/api/files", nil, &fl); err != nil {
		return nil, err
	}
	names := make([]string, len(fl.Files))
	for i, f := range fl.Files {
		names[i] = f.Filename
	}
	return names, nil
}

func (c *Client) Load(ctx context.Context, name string) (string, error) {
	var fc fileContent
	if err := c.do(ctx, http.MethodGet, "/api/files/"+url.PathEscape(name), nil, &fc); err != nil {
		return "", err
	}
	return fc.Content, nil
}

func (c *Client) Save(ctx context.Context, name, content string) error {
	return c.do(ctx, http.MethodPost, "/api/files/"+url.PathEscape(name), fileContent{Filename: name, Content: content}, nil)
}

// Settings fetches the server's current settings.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var resp struct {
		Settings Settings `json:"settings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &resp); err != nil {
		return Settings{}, err
	}
	return resp.Settings, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

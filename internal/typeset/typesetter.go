package typeset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Typesetter renders the math markup inside an HTML document. Implementations
// should honor ctx, but the coordinator does not rely on it.
type Typesetter interface {
	Typeset(ctx context.Context, html string) (string, error)
}

// ErrUnavailable is returned when no typesetting service is configured.
var ErrUnavailable = errors.New("typesetter unavailable")

// Unavailable always fails, which drives the coordinator straight to the
// degraded state.
type Unavailable struct{}

func (Unavailable) Typeset(context.Context, string) (string, error) { return "", ErrUnavailable }

// Func adapts a plain function.
type Func func(ctx context.Context, html string) (string, error)

func (f Func) Typeset(ctx context.Context, html string) (string, error) { return f(ctx, html) }

// HTTPTypesetter calls a MathJax rendering service:
//
//	POST {URL}  {"html": "...", "input": "tex", "output": "chtml"}  ->  {"html": "..."}
type HTTPTypesetter struct {
	HTTP *http.Client
	URL  string
}

func NewHTTPTypesetter(url string) *HTTPTypesetter {
	return &HTTPTypesetter{
		HTTP: &http.Client{Timeout: 30 * time.Second},
		URL:  url,
	}
}

type typesetRequest struct {
	HTML   string `json:"html"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

type typesetResponse struct {
	HTML  string `json:"html"`
	Error string `json:"error,omitempty"`
}

func (t *HTTPTypesetter) Typeset(ctx context.Context, html string) (string, error) {
	if t.URL == "" {
		return "", ErrUnavailable
	}
	body, _ := json.Marshal(typesetRequest{HTML: html, Input: "tex", Output: "chtml"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	hc := t.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("typeset: service returned %s", resp.Status)
	}
	var out typesetResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("typeset: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("typeset: %s", out.Error)
	}
	if out.HTML == "" {
		return "", errors.New("typeset: empty response")
	}
	return out.HTML, nil
}

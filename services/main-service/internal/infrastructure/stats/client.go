package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/main-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/main-service/internal/pkg/context"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

// Client talks to the stats service over its JSON API.
type Client struct {
	baseURL string
	client  *http.Client
	lg      zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, lg zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		lg:      lg.With().Str("component", "stats_client").Logger(),
	}
}

type hitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Hit posts one visit record. The stats service answers 201.
func (c *Client) Hit(ctx context.Context, h domain.Hit) error {
	body, err := json.Marshal(hitRequest{
		App:       h.App,
		URI:       h.URI,
		IP:        h.IP,
		Timestamp: h.Timestamp.UTC().Format(domain.TimeLayout),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats hit: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Stats fetches hit counts for uris in [start, end].
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(domain.TimeLayout))
	q.Set("end", end.UTC().Format(domain.TimeLayout))
	for _, u := range uris {
		q.Add("uris", u)
	}
	q.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("stats query: unexpected status %d", resp.StatusCode)
	}

	var raw []viewStats
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("stats query: decode: %w", err)
	}
	out := make([]domain.ViewStats, 0, len(raw))
	for _, v := range raw {
		out = append(out, domain.ViewStats{App: v.App, URI: v.URI, Hits: v.Hits})
	}
	return out, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if rid := appCtx.GetRequestID(req.Context()); rid != "" {
		req.Header.Set(requestIDHeader, rid)
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.lg.Debug().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("stats call failed")
		return nil, err
	}
	c.lg.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("stats call")
	return resp, nil
}
